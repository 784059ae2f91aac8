package plan

// Tier is the commercial tier a user subscribes to.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// Valid reports whether the tier is one of the known tiers.
func (t Tier) Valid() bool {
	return t == TierFree || t == TierPremium
}

// Feature represents a metered product capability.
type Feature string

const (
	// Monthly-metered features.
	FeatureRecipeGeneration Feature = "recipe_generation"
	FeaturePhotoAnalysis    Feature = "photo_analysis"
	FeatureChatMessage      Feature = "chat_message"

	// Owned-resource features, counted absolutely.
	FeatureRecipeSave Feature = "recipe_save"
	FeatureFridgeItem Feature = "fridge_item"
	FeatureHabit      Feature = "habit"
	FeatureRoutine    Feature = "routine"

	// Display-only budgets consumed by downstream views.
	FeatureMealPlanDays       Feature = "meal_plan_days"
	FeatureWorkoutHistoryDays Feature = "workout_history_days"
)

// AllFeatures lists every feature a catalog must budget for.
// Catalog validation rejects plans missing any of these entries.
var AllFeatures = []Feature{
	FeatureRecipeGeneration,
	FeaturePhotoAnalysis,
	FeatureChatMessage,
	FeatureRecipeSave,
	FeatureFridgeItem,
	FeatureHabit,
	FeatureRoutine,
	FeatureMealPlanDays,
	FeatureWorkoutHistoryDays,
}

const (
	// Unlimited indicates no limit for a feature (-1 chosen to stay distinct
	// from every valid finite budget).
	Unlimited int64 = -1
)

// UsageInfo contains the current usage and limit for a feature.
type UsageInfo struct {
	Current    int64 `json:"current"`
	Limit      int64 `json:"limit"`
	Percentage int   `json:"percentage"`
}
