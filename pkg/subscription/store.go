package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for subscription persistence.
// Each user has exactly one subscription, so UserID serves as the primary key.
type Store interface {
	// Get retrieves a subscription by user ID.
	// Returns ErrNotFound if no subscription exists.
	Get(ctx context.Context, userID uuid.UUID) (*Subscription, error)

	// Save creates or updates a subscription.
	// The implementation should use UserID to determine if it's an update.
	Save(ctx context.Context, sub *Subscription) error

	// Delete removes a subscription. Only used on account deletion.
	Delete(ctx context.Context, userID uuid.UUID) error
}
