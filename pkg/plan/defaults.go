package plan

// DefaultTrialDays is the trial window granted on lazy subscription creation.
const DefaultTrialDays = 7

// DefaultPlans returns the built-in plan limit table.
// Free-tier budgets are ceilings; premium is unbounded across the board.
func DefaultPlans() map[Tier]Plan {
	return map[Tier]Plan{
		TierFree: {
			Tier:      TierFree,
			Name:      "Free",
			TrialDays: DefaultTrialDays,
			Limits: map[Feature]int64{
				FeatureRecipeGeneration:   10,
				FeaturePhotoAnalysis:      10,
				FeatureChatMessage:        30,
				FeatureRecipeSave:         20,
				FeatureFridgeItem:         25,
				FeatureHabit:              5,
				FeatureRoutine:            3,
				FeatureMealPlanDays:       7,
				FeatureWorkoutHistoryDays: 30,
			},
		},
		TierPremium: {
			Tier: TierPremium,
			Name: "Premium",
			Limits: map[Feature]int64{
				FeatureRecipeGeneration:   Unlimited,
				FeaturePhotoAnalysis:      Unlimited,
				FeatureChatMessage:        Unlimited,
				FeatureRecipeSave:         Unlimited,
				FeatureFridgeItem:         Unlimited,
				FeatureHabit:              Unlimited,
				FeatureRoutine:            Unlimited,
				FeatureMealPlanDays:       Unlimited,
				FeatureWorkoutHistoryDays: Unlimited,
			},
		},
	}
}

// DefaultCatalog returns a catalog built from DefaultPlans.
// Panics on validation failure since the built-in table is static.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultPlans())
	if err != nil {
		panic(err)
	}
	return c
}
