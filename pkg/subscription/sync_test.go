package subscription_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clientflow/clientflow/pkg/subscription"
)

func TestSelectSubscription(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, subscription.SelectSubscription(nil))
	})

	t.Run("first access-granting wins", func(t *testing.T) {
		t.Parallel()
		subs := []subscription.ProviderSubscription{
			{ID: "sub_old", Status: "canceled", Created: 300},
			{ID: "sub_trial", Status: "trialing", Created: 100},
			{ID: "sub_active", Status: "active", Created: 200},
		}
		got := subscription.SelectSubscription(subs)
		require.NotNil(t, got)
		assert.Equal(t, "sub_trial", got.ID)
	})

	t.Run("newest when none grants access", func(t *testing.T) {
		t.Parallel()
		subs := []subscription.ProviderSubscription{
			{ID: "sub_a", Status: "canceled", Created: 100},
			{ID: "sub_b", Status: "past_due", Created: 300},
			{ID: "sub_c", Status: "incomplete_expired", Created: 200},
		}
		got := subscription.SelectSubscription(subs)
		require.NotNil(t, got)
		assert.Equal(t, "sub_b", got.ID)
	})
}

func TestSyncer_Sync(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("requires user", func(t *testing.T) {
		t.Parallel()
		s := subscription.NewSyncer(&mockProvider{}, newTestReconciler(subscription.NewMemoryStore()))
		_, err := s.Sync(ctx, "")
		assert.ErrorIs(t, err, subscription.ErrUnauthenticated)
	})

	t.Run("no customer", func(t *testing.T) {
		t.Parallel()
		p := &mockProvider{}
		p.On("FindCustomer", mock.Anything, "u1").Return("", subscription.ErrCustomerNotFound)
		store := subscription.NewMemoryStore()

		_, err := subscription.NewSyncer(p, newTestReconciler(store)).Sync(ctx, "u1")
		assert.ErrorIs(t, err, subscription.ErrCustomerNotFound)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("writes selected subscription", func(t *testing.T) {
		t.Parallel()
		p := &mockProvider{}
		p.On("FindCustomer", mock.Anything, "u1").Return("cus_1", nil)
		p.On("ListSubscriptions", mock.Anything, "cus_1").Return([]subscription.ProviderSubscription{
			{ID: "sub_old", CustomerID: "cus_1", Status: "canceled", Created: 100},
			{ID: "sub_1", CustomerID: "cus_1", Status: "trialing", Created: 50, CurrentPeriodEnd: 1767225600},
		}, nil)
		store := subscription.NewMemoryStore()

		snap, err := subscription.NewSyncer(p, newTestReconciler(store)).Sync(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusActive, snap.Status)
		require.NotNil(t, snap.CurrentPeriodEnd)
		assert.Equal(t, "2026-01-01T00:00:00Z", *snap.CurrentPeriodEnd)

		rec, err := store.GetByUserID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "cus_1", rec.CustomerID)
		assert.Equal(t, "sub_1", rec.SubscriptionID)
		assert.Equal(t, subscription.StatusActive, rec.Status)
	})

	t.Run("no subscriptions writes inactive", func(t *testing.T) {
		t.Parallel()
		p := &mockProvider{}
		p.On("FindCustomer", mock.Anything, "u1").Return("cus_1", nil)
		p.On("ListSubscriptions", mock.Anything, "cus_1").Return([]subscription.ProviderSubscription{}, nil)
		store := subscription.NewMemoryStore()

		snap, err := subscription.NewSyncer(p, newTestReconciler(store)).Sync(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusInactive, snap.Status)
		assert.Nil(t, snap.CurrentPeriodEnd)

		rec, err := store.GetByUserID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusInactive, rec.Status)
		assert.Equal(t, "cus_1", rec.CustomerID)
		assert.Nil(t, rec.CurrentPeriodEnd)
		assert.False(t, subscription.CanAccess(rec, fixedNow))
		assert.False(t, snap.CanAccess(fixedNow))
	})

	t.Run("list failure", func(t *testing.T) {
		t.Parallel()
		p := &mockProvider{}
		p.On("FindCustomer", mock.Anything, "u1").Return("cus_1", nil)
		p.On("ListSubscriptions", mock.Anything, "cus_1").Return(nil, subscription.ErrProvider)

		_, err := subscription.NewSyncer(p, newTestReconciler(subscription.NewMemoryStore())).Sync(ctx, "u1")
		assert.ErrorIs(t, err, subscription.ErrProvider)
	})

	t.Run("sync twice is stable", func(t *testing.T) {
		t.Parallel()
		p := &mockProvider{}
		p.On("FindCustomer", mock.Anything, "u1").Return("cus_1", nil)
		p.On("ListSubscriptions", mock.Anything, "cus_1").Return([]subscription.ProviderSubscription{
			{ID: "sub_1", CustomerID: "cus_1", Status: "active", CurrentPeriodEnd: 1767225600},
		}, nil)
		store := subscription.NewMemoryStore()
		s := subscription.NewSyncer(p, newTestReconciler(store))

		first, err := s.Sync(ctx, "u1")
		require.NoError(t, err)
		second, err := s.Sync(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, store.Len())
	})
}
