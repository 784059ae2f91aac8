package usage

import (
	"time"

	"github.com/google/uuid"

	"github.com/platefulapp/plateful/pkg/plan"
)

// Limits is the per-user usage record: three monthly quota counters that
// reset on calendar-month rollover, and four absolute counters tracking
// currently owned resources. No counter is ever negative.
type Limits struct {
	UserID uuid.UUID
	Plan   plan.Tier // mirrors Subscription.Plan, synced on plan change

	// Monthly quota counters, zeroed lazily on the first access after the
	// calendar month changes.
	RecipesGeneratedThisMonth int64
	PhotoAnalysesThisMonth    int64
	ChatMessagesThisMonth     int64

	// Absolute counters for currently owned resources, mutated only by
	// create/delete events. Not cumulative lifetime creates.
	TotalSavedRecipes int64
	TotalFridgeItems  int64
	TotalHabits       int64
	TotalRoutines     int64

	LastResetAt time.Time // last monthly-counter rollover
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Count returns the counter gating the given feature. The second return is
// false for features this record does not meter (display-only budgets).
func (l *Limits) Count(feature plan.Feature) (int64, bool) {
	switch feature {
	case plan.FeatureRecipeGeneration:
		return l.RecipesGeneratedThisMonth, true
	case plan.FeaturePhotoAnalysis:
		return l.PhotoAnalysesThisMonth, true
	case plan.FeatureChatMessage:
		return l.ChatMessagesThisMonth, true
	case plan.FeatureRecipeSave:
		return l.TotalSavedRecipes, true
	case plan.FeatureFridgeItem:
		return l.TotalFridgeItems, true
	case plan.FeatureHabit:
		return l.TotalHabits, true
	case plan.FeatureRoutine:
		return l.TotalRoutines, true
	default:
		return 0, false
	}
}

// SameCalendarMonth reports whether two instants fall in the same calendar
// month. Comparison happens in UTC, the engine's single reference timezone.
func SameCalendarMonth(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month()
}
