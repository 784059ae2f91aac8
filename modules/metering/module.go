// Package metering wires the entitlement engine together and exposes its
// HTTP boundary: the usage-summary projection, per-feature checks, and the
// billing webhook intake.
package metering

import (
	"context"
	"log/slog"

	"github.com/platefulapp/plateful/pkg/entitlement"
	"github.com/platefulapp/plateful/pkg/logger"
	"github.com/platefulapp/plateful/pkg/mongo"
	"github.com/platefulapp/plateful/pkg/plan"
	"github.com/platefulapp/plateful/pkg/redis"
	"github.com/platefulapp/plateful/pkg/subscription"
	"github.com/platefulapp/plateful/pkg/throttle"
	"github.com/platefulapp/plateful/pkg/usage"
)

// Module bundles the wired engine components.
type Module struct {
	Subscriptions *subscription.Service
	Gate          *entitlement.Gate
	Tracker       *entitlement.Tracker
	Usage         usage.Store
	Throttle      throttle.Store
	Catalog       *plan.Catalog

	log    *slog.Logger
	health []func(context.Context) error
}

// Healthchecks returns readiness probes for the backing stores.
func (m *Module) Healthchecks() []func(context.Context) error {
	return m.health
}

// New connects the backing stores and assembles the engine.
// Plan-table problems surface here, at startup, never as runtime denials.
func New(ctx context.Context, cfg Config) (*Module, error) {
	log := logger.New(logger.WithProduction("metering"))
	if cfg.Environment == "development" {
		log = logger.New(logger.WithDevelopment("metering"))
	}

	catalog, err := loadCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}

	mongoClient, err := mongo.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	db := mongoClient.Database(cfg.Mongo.Database)

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	usageStore := usage.NewMongoStore(db)
	throttleStore := throttle.NewRedisStore(redisClient)

	subOpts := []subscription.ServiceOption{
		subscription.WithPlanMirror(usageStore),
		subscription.WithLogger(log),
	}
	if cfg.Paddle.APIKey != "" {
		provider, err := subscription.NewPaddleProvider(cfg.Paddle)
		if err != nil {
			return nil, err
		}
		subOpts = append(subOpts, subscription.WithProvider(provider))
	}
	if cfg.PremiumMonthlyPriceID != "" {
		subOpts = append(subOpts,
			subscription.WithPremiumPrice(subscription.BillingIntervalMonth, cfg.PremiumMonthlyPriceID))
	}
	if cfg.PremiumYearlyPriceID != "" {
		subOpts = append(subOpts,
			subscription.WithPremiumPrice(subscription.BillingIntervalYear, cfg.PremiumYearlyPriceID))
	}

	subs := subscription.NewService(subscription.NewMongoStore(db), catalog, subOpts...)

	return &Module{
		Subscriptions: subs,
		Gate:          entitlement.NewGate(subs, usageStore, throttleStore, catalog, entitlement.WithLogger(log)),
		Tracker:       entitlement.NewTracker(usageStore, throttleStore, entitlement.WithTrackerLogger(log)),
		Usage:         usageStore,
		Throttle:      throttleStore,
		Catalog:       catalog,
		log:           log,
		health: []func(context.Context) error{
			mongo.Healthcheck(mongoClient),
			redis.Healthcheck(redisClient),
		},
	}, nil
}

func loadCatalog(ctx context.Context, cfg Config) (*plan.Catalog, error) {
	if cfg.PlanCatalogPath == "" {
		return plan.DefaultCatalog(), nil
	}
	return plan.NewCatalogFromSource(ctx, plan.NewYAMLSource(cfg.PlanCatalogPath))
}
