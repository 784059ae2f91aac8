// Package plan defines the plan limit table: the static mapping from each
// commercial tier to the numeric budget of every metered feature.
//
// The catalog is pure data with a lookup. Budgets of Unlimited (-1) are
// represented distinctly from any finite number so that comparisons and
// percentage calculations can treat them specially.
//
// Basic usage:
//
//	catalog := plan.DefaultCatalog()
//
//	limit, err := catalog.Limit(plan.TierFree, plan.FeatureRecipeGeneration)
//	if err != nil {
//	    // unknown feature: a configuration error, fatal at startup
//	}
//
// Plans can also be loaded from a YAML file:
//
//	catalog, err := plan.NewCatalogFromSource(ctx, plan.NewYAMLSource("plans.yml"))
package plan
