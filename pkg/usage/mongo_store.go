package usage

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

// UsageCollection is the default collection name.
const UsageCollection = "usage_limits"

const (
	fieldRecipesGenerated = "recipes_generated_this_month"
	fieldPhotoAnalyses    = "photo_analyses_this_month"
	fieldChatMessages     = "chat_messages_this_month"
	fieldSavedRecipes     = "total_saved_recipes"
	fieldFridgeItems      = "total_fridge_items"
	fieldHabits           = "total_habits"
	fieldRoutines         = "total_routines"
)

var counterFields = map[Counter]string{
	CounterSavedRecipes: fieldSavedRecipes,
	CounterFridgeItems:  fieldFridgeItems,
	CounterHabits:       fieldHabits,
	CounterRoutines:     fieldRoutines,
}

// MongoStore is the document-store-authoritative Store implementation.
// Counter mutations are single-round-trip atomic updates; the monthly reset
// is a conditional update filtered on the stale month, so two concurrent
// readers cannot both perform it.
type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoStore creates a Store backed by the given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		coll: db.Collection(UsageCollection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

type usageDoc struct {
	UserID                    string    `bson:"_id"`
	Plan                      string    `bson:"plan"`
	RecipesGeneratedThisMonth int64     `bson:"recipes_generated_this_month"`
	PhotoAnalysesThisMonth    int64     `bson:"photo_analyses_this_month"`
	ChatMessagesThisMonth     int64     `bson:"chat_messages_this_month"`
	TotalSavedRecipes         int64     `bson:"total_saved_recipes"`
	TotalFridgeItems          int64     `bson:"total_fridge_items"`
	TotalHabits               int64     `bson:"total_habits"`
	TotalRoutines             int64     `bson:"total_routines"`
	LastResetAt               time.Time `bson:"last_reset_at"`
	CreatedAt                 time.Time `bson:"created_at"`
	UpdatedAt                 time.Time `bson:"updated_at"`
}

func (s *MongoStore) GetOrCreate(ctx context.Context, userID uuid.UUID, tier plan.Tier) (*Limits, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}

	now := s.now()

	var doc usageDoc
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": userID.String()},
		bson.M{"$setOnInsert": usageDoc{
			UserID:      userID.String(),
			Plan:        string(tier),
			LastResetAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage record: %w", err)
	}

	if !SameCalendarMonth(doc.LastResetAt, now) {
		if err := s.rollover(ctx, userID, now); err != nil {
			return nil, err
		}
		if err := s.coll.FindOne(ctx, bson.M{"_id": userID.String()}).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to reload usage record: %w", err)
		}
	}

	return docToLimits(doc)
}

// rollover zeroes the monthly counters exactly once per calendar month.
// The filter re-checks staleness so that of two racing callers only the
// first write matches; the loser's update is a no-op.
func (s *MongoStore) rollover(ctx context.Context, userID uuid.UUID, now time.Time) error {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	_, err := s.coll.UpdateOne(ctx,
		bson.M{
			"_id":           userID.String(),
			"last_reset_at": bson.M{"$lt": monthStart},
		},
		bson.M{"$set": bson.M{
			fieldRecipesGenerated: int64(0),
			fieldPhotoAnalyses:    int64(0),
			fieldChatMessages:     int64(0),
			"last_reset_at":       now,
			"updated_at":          now,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to roll over monthly counters: %w", err)
	}
	return nil
}

func (s *MongoStore) Increment(ctx context.Context, userID uuid.UUID, d Delta) error {
	if userID == uuid.Nil {
		return ErrInvalidUserID
	}
	if d.IsZero() {
		return nil
	}

	inc := bson.M{}
	for field, n := range deltaFields(d) {
		inc[field] = n
	}

	// Upsert so a tracker call can be the record's first touch. The plan
	// field starts at the free tier, the same default every subscription
	// begins on; the plan mirror corrects it on the next plan change.
	now := s.now()
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID.String()},
		bson.M{
			"$inc": inc,
			"$set": bson.M{"updated_at": now},
			"$setOnInsert": bson.M{
				"plan":          string(plan.TierFree),
				"last_reset_at": now,
				"created_at":    now,
			},
		},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to increment usage counters: %w", err)
	}
	return nil
}

func (s *MongoStore) Decrement(ctx context.Context, userID uuid.UUID, d Delta) error {
	if userID == uuid.Nil {
		return ErrInvalidUserID
	}
	if d.IsZero() {
		return nil
	}

	// Floor at zero server-side: an aggregation-pipeline update computes
	// max(0, current-n) in the same round trip as the write.
	set := bson.D{{Key: "updated_at", Value: s.now()}}
	for field, n := range deltaFields(d) {
		set = append(set, bson.E{Key: field, Value: bson.D{
			{Key: "$max", Value: bson.A{
				int64(0),
				bson.D{{Key: "$subtract", Value: bson.A{"$" + field, n}}},
			}},
		}})
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID.String()},
		mongo.Pipeline{bson.D{{Key: "$set", Value: set}}},
	)
	if err != nil {
		return fmt.Errorf("failed to decrement usage counters: %w", err)
	}
	if res.MatchedCount == 0 {
		// Decrementing a record that was never written floors every counter
		// at zero, which is exactly a fresh record.
		return s.ensure(ctx, userID)
	}
	return nil
}

// ensure creates the zeroed record if it does not exist yet.
func (s *MongoStore) ensure(ctx context.Context, userID uuid.UUID) error {
	now := s.now()
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID.String()},
		bson.M{"$setOnInsert": usageDoc{
			UserID:      userID.String(),
			Plan:        string(plan.TierFree),
			LastResetAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to create usage record: %w", err)
	}
	return nil
}

func (s *MongoStore) SetAbsolute(ctx context.Context, userID uuid.UUID, counter Counter, value int64) error {
	field, ok := counterFields[counter]
	if !ok {
		return errors.Join(ErrUnknownCounter, fmt.Errorf("counter %q", counter))
	}
	if value < 0 {
		return ErrNegativeValue
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID.String()},
		bson.M{"$set": bson.M{field: value, "updated_at": s.now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set absolute counter: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) UpdatePlan(ctx context.Context, userID uuid.UUID, tier plan.Tier) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID.String()},
		bson.M{"$set": bson.M{"plan": string(tier), "updated_at": s.now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update mirrored plan: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": userID.String()}); err != nil {
		return fmt.Errorf("failed to delete usage record: %w", err)
	}
	return nil
}

func deltaFields(d Delta) map[string]int64 {
	fields := make(map[string]int64, 7)
	for field, n := range map[string]int64{
		fieldRecipesGenerated: d.RecipesGenerated,
		fieldPhotoAnalyses:    d.PhotoAnalyses,
		fieldChatMessages:     d.ChatMessages,
		fieldSavedRecipes:     d.SavedRecipes,
		fieldFridgeItems:      d.FridgeItems,
		fieldHabits:           d.Habits,
		fieldRoutines:         d.Routines,
	} {
		if n != 0 {
			fields[field] = n
		}
	}
	return fields
}

func docToLimits(doc usageDoc) (*Limits, error) {
	userID, err := uuid.Parse(doc.UserID)
	if err != nil {
		return nil, fmt.Errorf("corrupt usage document: %w", err)
	}
	return &Limits{
		UserID:                    userID,
		Plan:                      plan.Tier(doc.Plan),
		RecipesGeneratedThisMonth: doc.RecipesGeneratedThisMonth,
		PhotoAnalysesThisMonth:    doc.PhotoAnalysesThisMonth,
		ChatMessagesThisMonth:     doc.ChatMessagesThisMonth,
		TotalSavedRecipes:         doc.TotalSavedRecipes,
		TotalFridgeItems:          doc.TotalFridgeItems,
		TotalHabits:               doc.TotalHabits,
		TotalRoutines:             doc.TotalRoutines,
		LastResetAt:               doc.LastResetAt,
		CreatedAt:                 doc.CreatedAt,
		UpdatedAt:                 doc.UpdatedAt,
	}, nil
}
