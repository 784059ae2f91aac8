package plan

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Source defines how plans are loaded into a catalog.
type Source interface {
	Load(ctx context.Context) (map[Tier]Plan, error)
}

// inMemSource implements Source using an in-memory plan map.
type inMemSource struct {
	mu    sync.RWMutex
	plans map[Tier]Plan
}

// NewInMemSource returns an in-memory Source with a deep copy of the given plans.
func NewInMemSource(plans map[Tier]Plan) Source {
	return &inMemSource{plans: clonePlans(plans)}
}

func (s *inMemSource) Load(ctx context.Context) (map[Tier]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePlans(s.plans), nil
}

// yamlSource loads the plan table from a YAML file.
// The file maps tier names to plan definitions:
//
//	free:
//	  tier: free
//	  name: Free
//	  trial_days: 7
//	  limits:
//	    recipe_generation: 10
//	    ...
type yamlSource struct {
	path string
}

// NewYAMLSource returns a Source backed by a YAML file at the given path.
func NewYAMLSource(path string) Source {
	return &yamlSource{path: path}
}

func (s *yamlSource) Load(ctx context.Context) (map[Tier]Plan, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	var plans map[Tier]Plan
	if err := yaml.Unmarshal(data, &plans); err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog,
			fmt.Errorf("parse %s: %w", s.path, err))
	}
	return plans, nil
}

// NewCatalogFromSource loads plans via the source and validates them.
func NewCatalogFromSource(ctx context.Context, src Source) (*Catalog, error) {
	plans, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return NewCatalog(plans)
}

func clonePlans(plans map[Tier]Plan) map[Tier]Plan {
	out := make(map[Tier]Plan, len(plans))
	for tier, p := range plans {
		p.Limits = maps.Clone(p.Limits)
		out[tier] = p
	}
	return out
}
