package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/platefulapp/plateful/pkg/plan"
)

// SubscriptionsCollection is the default collection name.
const SubscriptionsCollection = "subscriptions"

// MongoStore is the document-store-authoritative Store implementation.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a Store backed by the given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(SubscriptionsCollection)}
}

// subscriptionDoc is the persisted shape. All timestamps are absolute UTC
// instants; calendar comparisons happen in application code, never in queries.
type subscriptionDoc struct {
	UserID             string     `bson:"_id"`
	Plan               string     `bson:"plan"`
	Status             string     `bson:"status"`
	BillingInterval    string     `bson:"billing_interval,omitempty"`
	CurrentPeriodStart time.Time  `bson:"current_period_start"`
	CurrentPeriodEnd   time.Time  `bson:"current_period_end"`
	CancelAtPeriodEnd  bool       `bson:"cancel_at_period_end"`
	TrialEndsAt        *time.Time `bson:"trial_ends_at,omitempty"`
	ProviderCustomerID string     `bson:"provider_customer_id,omitempty"`
	ProviderSubID      string     `bson:"provider_sub_id,omitempty"`
	CreatedAt          time.Time  `bson:"created_at"`
	UpdatedAt          time.Time  `bson:"updated_at"`
}

func (s *MongoStore) Get(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	var doc subscriptionDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": userID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return docToSubscription(doc)
}

func (s *MongoStore) Save(ctx context.Context, sub *Subscription) error {
	doc := subscriptionToDoc(sub)
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": doc.UserID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": userID.String()}); err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

func subscriptionToDoc(sub *Subscription) subscriptionDoc {
	return subscriptionDoc{
		UserID:             sub.UserID.String(),
		Plan:               string(sub.Plan),
		Status:             string(sub.Status),
		BillingInterval:    string(sub.BillingInterval),
		CurrentPeriodStart: sub.CurrentPeriodStart.UTC(),
		CurrentPeriodEnd:   sub.CurrentPeriodEnd.UTC(),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		TrialEndsAt:        sub.TrialEndsAt,
		ProviderCustomerID: sub.ProviderCustomerID,
		ProviderSubID:      sub.ProviderSubID,
		CreatedAt:          sub.CreatedAt.UTC(),
		UpdatedAt:          sub.UpdatedAt.UTC(),
	}
}

func docToSubscription(doc subscriptionDoc) (*Subscription, error) {
	userID, err := uuid.Parse(doc.UserID)
	if err != nil {
		return nil, fmt.Errorf("corrupt subscription document: %w", err)
	}
	return &Subscription{
		UserID:             userID,
		Plan:               plan.Tier(doc.Plan),
		Status:             Status(doc.Status),
		BillingInterval:    BillingInterval(doc.BillingInterval),
		CurrentPeriodStart: doc.CurrentPeriodStart,
		CurrentPeriodEnd:   doc.CurrentPeriodEnd,
		CancelAtPeriodEnd:  doc.CancelAtPeriodEnd,
		TrialEndsAt:        doc.TrialEndsAt,
		ProviderCustomerID: doc.ProviderCustomerID,
		ProviderSubID:      doc.ProviderSubID,
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
	}, nil
}
