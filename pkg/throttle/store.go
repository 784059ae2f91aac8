package throttle

import (
	"context"

	"github.com/google/uuid"
)

// Store owns the per-user, per-feature daily counters.
//
// Rollover is lazy and read-scoped: a counter recorded on a day other than
// today reads as zero, and nothing is rewritten until an increment actually
// occurs. Read-only checks never write.
type Store interface {
	// UsageToday returns the number of uses recorded today.
	UsageToday(ctx context.Context, userID uuid.UUID, feature Feature) (int64, error)

	// Increment records one use for today and returns the new count.
	Increment(ctx context.Context, userID uuid.UUID, feature Feature) (int64, error)
}
