package subscription_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clientflow/clientflow/pkg/subscription"
)

func TestCanAccess(t *testing.T) {
	t.Parallel()

	now := fixedNow
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		rec  *subscription.Record
		want bool
	}{
		{"nil record", nil, false},
		{"active without end", &subscription.Record{Status: subscription.StatusActive}, true},
		{"active future end", &subscription.Record{Status: subscription.StatusActive, CurrentPeriodEnd: &future}, true},
		{"active end equals now", &subscription.Record{Status: subscription.StatusActive, CurrentPeriodEnd: &now}, true},
		{"active past end", &subscription.Record{Status: subscription.StatusActive, CurrentPeriodEnd: &past}, false},
		{"trialing", &subscription.Record{Status: subscription.StatusTrialing}, true},
		{"upper case", &subscription.Record{Status: subscription.Status("ACTIVE")}, true},
		{"past due", &subscription.Record{Status: subscription.StatusPastDue, CurrentPeriodEnd: &future}, false},
		{"canceled", &subscription.Record{Status: subscription.StatusCanceled}, false},
		{"inactive", &subscription.Record{Status: subscription.StatusInactive}, false},
		{"unknown status", &subscription.Record{Status: subscription.Status("paused")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, subscription.CanAccess(tt.rec, now))
		})
	}
}

func TestSnapshot_CanAccess(t *testing.T) {
	t.Parallel()

	str := func(s string) *string { return &s }

	assert.True(t, subscription.Snapshot{Status: subscription.StatusActive}.CanAccess(fixedNow))
	assert.True(t, subscription.Snapshot{Status: subscription.StatusActive, CurrentPeriodEnd: str("2025-07-01T00:00:00Z")}.CanAccess(fixedNow))
	assert.False(t, subscription.Snapshot{Status: subscription.StatusActive, CurrentPeriodEnd: str("2025-05-01T00:00:00Z")}.CanAccess(fixedNow))
	assert.True(t, subscription.Snapshot{Status: subscription.StatusActive, CurrentPeriodEnd: str("not a date")}.CanAccess(fixedNow))
	assert.False(t, subscription.Snapshot{Status: subscription.StatusCanceled}.CanAccess(fixedNow))
}

func TestRecord_Snapshot(t *testing.T) {
	t.Parallel()

	end := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	rec := subscription.Record{Status: subscription.StatusActive, CurrentPeriodEnd: &end}
	snap := rec.Snapshot()

	require.NotNil(t, snap.CurrentPeriodEnd)
	assert.Equal(t, "2025-07-01T00:00:00Z", *snap.CurrentPeriodEnd)
	assert.Equal(t, subscription.CanAccess(&rec, fixedNow), snap.CanAccess(fixedNow))
}

func TestGate_Check(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no record denies", func(t *testing.T) {
		t.Parallel()
		g := subscription.NewGate(newTestReconciler(subscription.NewMemoryStore()), subscription.WithClock(fixedClock))
		ok, rec, err := g.Check(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, rec)
	})

	t.Run("active allows", func(t *testing.T) {
		t.Parallel()
		store := subscription.NewMemoryStore()
		require.NoError(t, store.Upsert(ctx, subscription.Record{UserID: "u1", Status: subscription.StatusActive}))
		g := subscription.NewGate(newTestReconciler(store), subscription.WithClock(fixedClock))

		ok, rec, err := g.Check(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, ok)
		require.NotNil(t, rec)
	})

	t.Run("store failure is not access", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		store.On("GetByUserID", mock.Anything, "u1").Return(nil, errors.New("db down"))
		g := subscription.NewGate(newTestReconciler(store))

		ok, _, err := g.Check(ctx, "u1")
		assert.False(t, ok)
		assert.ErrorIs(t, err, subscription.ErrStore)
	})

	t.Run("requires user", func(t *testing.T) {
		t.Parallel()
		g := subscription.NewGate(newTestReconciler(subscription.NewMemoryStore()))
		_, _, err := g.Check(ctx, "")
		assert.ErrorIs(t, err, subscription.ErrUnauthenticated)
	})
}
