package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/platefulapp/plateful/pkg/plan"
	"github.com/platefulapp/plateful/pkg/subscription"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreateCheckoutLink(ctx context.Context, req subscription.CheckoutRequest) (*subscription.CheckoutLink, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.CheckoutLink), args.Error(1)
}

func (m *mockProvider) GetCustomerPortalLink(ctx context.Context, sub *subscription.Subscription) (*subscription.PortalLink, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.PortalLink), args.Error(1)
}

func (m *mockProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*subscription.WebhookEvent, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.WebhookEvent), args.Error(1)
}

type mockMirror struct {
	mock.Mock
}

func (m *mockMirror) UpdatePlan(ctx context.Context, userID uuid.UUID, tier plan.Tier) error {
	args := m.Called(ctx, userID, tier)
	return args.Error(0)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestService_GetOrCreate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("lazily initializes a free trial record", func(t *testing.T) {
		t.Parallel()

		svc := subscription.NewService(subscription.NewMemoryStore(), plan.DefaultCatalog(),
			subscription.WithClock(fixedClock(now)))

		userID := uuid.New()
		sub, err := svc.GetOrCreate(context.Background(), userID)
		require.NoError(t, err)

		assert.Equal(t, plan.TierFree, sub.Plan)
		assert.Equal(t, subscription.StatusTrialing, sub.Status)
		assert.Equal(t, now, sub.CurrentPeriodStart)
		assert.Equal(t, now.AddDate(0, 1, 0), sub.CurrentPeriodEnd)
		require.NotNil(t, sub.TrialEndsAt)
		assert.Equal(t, now.AddDate(0, 0, 7), *sub.TrialEndsAt)
		assert.False(t, sub.CancelAtPeriodEnd)
		assert.True(t, sub.IsInTrialAt(now))
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		svc := subscription.NewService(subscription.NewMemoryStore(), plan.DefaultCatalog(),
			subscription.WithClock(fixedClock(now)))

		userID := uuid.New()
		first, err := svc.GetOrCreate(context.Background(), userID)
		require.NoError(t, err)
		second, err := svc.GetOrCreate(context.Background(), userID)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("rejects the nil user", func(t *testing.T) {
		t.Parallel()

		svc := subscription.NewService(subscription.NewMemoryStore(), plan.DefaultCatalog())
		_, err := svc.GetOrCreate(context.Background(), uuid.Nil)
		assert.ErrorIs(t, err, subscription.ErrInvalidUserID)
	})
}

func TestService_Update(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("applies partial fields only", func(t *testing.T) {
		t.Parallel()

		svc := subscription.NewService(subscription.NewMemoryStore(), plan.DefaultCatalog(),
			subscription.WithClock(fixedClock(now)))

		userID := uuid.New()
		_, err := svc.GetOrCreate(context.Background(), userID)
		require.NoError(t, err)

		active := subscription.StatusActive
		updated, err := svc.Update(context.Background(), userID, subscription.UpdateParams{
			Status:        &active,
			ClearTrialEnd: true,
		})
		require.NoError(t, err)

		assert.Equal(t, subscription.StatusActive, updated.Status)
		assert.Nil(t, updated.TrialEndsAt)
		// Untouched fields keep their values.
		assert.Equal(t, plan.TierFree, updated.Plan)
		assert.Equal(t, now.AddDate(0, 1, 0), updated.CurrentPeriodEnd)
	})

	t.Run("syncs the plan mirror on plan change", func(t *testing.T) {
		t.Parallel()

		mirror := &mockMirror{}
		svc := subscription.NewService(subscription.NewMemoryStore(), plan.DefaultCatalog(),
			subscription.WithPlanMirror(mirror))

		userID := uuid.New()
		_, err := svc.GetOrCreate(context.Background(), userID)
		require.NoError(t, err)

		mirror.On("UpdatePlan", mock.Anything, userID, plan.TierPremium).Return(nil)

		premium := plan.TierPremium
		_, err = svc.Update(context.Background(), userID, subscription.UpdateParams{Plan: &premium})
		require.NoError(t, err)

		mirror.AssertExpectations(t)
	})

	t.Run("does not touch the mirror when the plan is unchanged", func(t *testing.T) {
		t.Parallel()

		mirror := &mockMirror{}
		svc := subscription.NewService(subscription.NewMemoryStore(), plan.DefaultCatalog(),
			subscription.WithPlanMirror(mirror))

		userID := uuid.New()
		_, err := svc.GetOrCreate(context.Background(), userID)
		require.NoError(t, err)

		active := subscription.StatusActive
		_, err = svc.Update(context.Background(), userID, subscription.UpdateParams{Status: &active})
		require.NoError(t, err)

		mirror.AssertNotCalled(t, "UpdatePlan", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("absent record propagates not found", func(t *testing.T) {
		t.Parallel()

		svc := subscription.NewService(subscription.NewMemoryStore(), plan.DefaultCatalog())

		active := subscription.StatusActive
		_, err := svc.Update(context.Background(), uuid.New(), subscription.UpdateParams{Status: &active})
		assert.ErrorIs(t, err, subscription.ErrNotFound)
	})
}

func TestService_CancelReactivate(t *testing.T) {
	t.Parallel()

	svc := subscription.NewService(subscription.NewMemoryStore(), plan.DefaultCatalog())
	userID := uuid.New()

	sub, err := svc.Cancel(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, sub.CancelAtPeriodEnd)

	// Cancellation is deferred: nothing else changes.
	assert.Equal(t, subscription.StatusTrialing, sub.Status)
	assert.Equal(t, plan.TierFree, sub.Plan)

	sub, err = svc.Reactivate(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, sub.CancelAtPeriodEnd)
}

func TestService_HandleWebhook(t *testing.T) {
	t.Parallel()

	newService := func(provider subscription.BillingProvider, mirror subscription.PlanMirror) *subscription.Service {
		opts := []subscription.ServiceOption{
			subscription.WithProvider(provider),
			subscription.WithPremiumPrice(subscription.BillingIntervalMonth, "pri_monthly"),
		}
		if mirror != nil {
			opts = append(opts, subscription.WithPlanMirror(mirror))
		}
		return subscription.NewService(subscription.NewMemoryStore(), plan.DefaultCatalog(), opts...)
	}

	t.Run("subscription created upgrades the plan", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		periodEnd := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

		provider := &mockProvider{}
		provider.On("ParseWebhook", mock.Anything, mock.Anything, mock.Anything).Return(&subscription.WebhookEvent{
			Type:           subscription.EventSubscriptionCreated,
			CustomerID:     userID.String(),
			SubscriptionID: "sub_123",
			Status:         "active",
			PriceID:        "pri_monthly",
			PeriodEnd:      &periodEnd,
		}, nil)

		mirror := &mockMirror{}
		mirror.On("UpdatePlan", mock.Anything, userID, plan.TierPremium).Return(nil)

		svc := newService(provider, mirror)
		require.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))

		sub, err := svc.GetOrCreate(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, plan.TierPremium, sub.Plan)
		assert.Equal(t, subscription.StatusActive, sub.Status)
		assert.Equal(t, subscription.BillingIntervalMonth, sub.BillingInterval)
		assert.Equal(t, "sub_123", sub.ProviderSubID)
		assert.Equal(t, periodEnd, sub.CurrentPeriodEnd)
		assert.Nil(t, sub.TrialEndsAt)
		assert.True(t, sub.IsPremium())
		mirror.AssertExpectations(t)
	})

	t.Run("subscription canceled downgrades at period expiry", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()

		provider := &mockProvider{}
		provider.On("ParseWebhook", mock.Anything, mock.Anything, mock.Anything).Return(&subscription.WebhookEvent{
			Type:       subscription.EventSubscriptionCanceled,
			CustomerID: userID.String(),
		}, nil)

		mirror := &mockMirror{}
		mirror.On("UpdatePlan", mock.Anything, userID, mock.Anything).Return(nil)

		svc := newService(provider, mirror)

		// Seed an active premium subscription first.
		premium := plan.TierPremium
		active := subscription.StatusActive
		_, err := svc.GetOrCreate(context.Background(), userID)
		require.NoError(t, err)
		_, err = svc.Update(context.Background(), userID, subscription.UpdateParams{Plan: &premium, Status: &active})
		require.NoError(t, err)

		require.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))

		sub, err := svc.GetOrCreate(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, plan.TierFree, sub.Plan)
		assert.Equal(t, subscription.StatusCanceled, sub.Status)
		assert.False(t, sub.IsPremium())
	})

	t.Run("payment failed marks past due", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()

		provider := &mockProvider{}
		provider.On("ParseWebhook", mock.Anything, mock.Anything, mock.Anything).Return(&subscription.WebhookEvent{
			Type:       subscription.EventPaymentFailed,
			CustomerID: userID.String(),
		}, nil)

		svc := newService(provider, nil)
		_, err := svc.GetOrCreate(context.Background(), userID)
		require.NoError(t, err)

		require.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))

		sub, err := svc.GetOrCreate(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusPastDue, sub.Status)
		assert.False(t, sub.IsPremium())
	})

	t.Run("unknown price is rejected", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()

		provider := &mockProvider{}
		provider.On("ParseWebhook", mock.Anything, mock.Anything, mock.Anything).Return(&subscription.WebhookEvent{
			Type:       subscription.EventSubscriptionCreated,
			CustomerID: userID.String(),
			Status:     "active",
			PriceID:    "pri_unknown",
		}, nil)

		svc := newService(provider, nil)
		err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
		assert.ErrorIs(t, err, subscription.ErrUnknownPrice)
	})

	t.Run("invalid customer ID is rejected", func(t *testing.T) {
		t.Parallel()

		provider := &mockProvider{}
		provider.On("ParseWebhook", mock.Anything, mock.Anything, mock.Anything).Return(&subscription.WebhookEvent{
			Type:       subscription.EventSubscriptionCreated,
			CustomerID: "not-a-uuid",
		}, nil)

		svc := newService(provider, nil)
		assert.Error(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))
	})

	t.Run("without a provider", func(t *testing.T) {
		t.Parallel()

		svc := subscription.NewService(subscription.NewMemoryStore(), plan.DefaultCatalog())
		err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
		assert.ErrorIs(t, err, subscription.ErrNoProvider)
	})
}

func TestService_CreateCheckoutLink(t *testing.T) {
	t.Parallel()

	t.Run("delegates to the provider with the mapped price", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()

		provider := &mockProvider{}
		provider.On("CreateCheckoutLink", mock.Anything, mock.MatchedBy(func(req subscription.CheckoutRequest) bool {
			return req.PriceID == "pri_monthly" && req.CustomerID == userID.String()
		})).Return(&subscription.CheckoutLink{URL: "https://pay.example/checkout"}, nil)

		svc := subscription.NewService(subscription.NewMemoryStore(), plan.DefaultCatalog(),
			subscription.WithProvider(provider),
			subscription.WithPremiumPrice(subscription.BillingIntervalMonth, "pri_monthly"))

		link, err := svc.CreateCheckoutLink(context.Background(), userID, subscription.BillingIntervalMonth, subscription.CheckoutOptions{})
		require.NoError(t, err)
		assert.Equal(t, "https://pay.example/checkout", link.URL)
		provider.AssertExpectations(t)
	})

	t.Run("unmapped interval", func(t *testing.T) {
		t.Parallel()

		svc := subscription.NewService(subscription.NewMemoryStore(), plan.DefaultCatalog(),
			subscription.WithProvider(&mockProvider{}))

		_, err := svc.CreateCheckoutLink(context.Background(), uuid.New(), subscription.BillingIntervalYear, subscription.CheckoutOptions{})
		assert.ErrorIs(t, err, subscription.ErrPriceNotMapped)
	})
}
