package subscription_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientflow/clientflow/pkg/subscription"
)

func TestNormalizeStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want subscription.Status
	}{
		{"active", subscription.StatusActive},
		{"trialing", subscription.StatusActive},
		{"TRIALING", subscription.StatusActive},
		{" Active ", subscription.StatusActive},
		{"past_due", subscription.StatusPastDue},
		{"canceled", subscription.StatusCanceled},
		{"unpaid", subscription.StatusUnpaid},
		{"incomplete_expired", subscription.StatusIncompleteExpired},
		{"paused", subscription.Status("paused")},
		{"", subscription.StatusIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, subscription.NormalizeStatus(tt.raw))
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("converts period end to UTC time", func(t *testing.T) {
		t.Parallel()

		p := subscription.Normalize(subscription.ProviderSubscription{
			ID:               "sub_1",
			Status:           "trialing",
			CurrentPeriodEnd: 1735689600,
		})

		assert.Equal(t, "sub_1", p.SubscriptionID)
		assert.Equal(t, subscription.StatusActive, p.Status)
		require.NotNil(t, p.CurrentPeriodEnd)
		assert.True(t, p.CurrentPeriodEnd.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, time.UTC, p.CurrentPeriodEnd.Location())
	})

	t.Run("zero period end means none", func(t *testing.T) {
		t.Parallel()

		p := subscription.Normalize(subscription.ProviderSubscription{ID: "sub_1", Status: "canceled"})
		assert.Nil(t, p.CurrentPeriodEnd)
		assert.Equal(t, subscription.StatusCanceled, p.Status)
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		sub := subscription.ProviderSubscription{ID: "sub_1", Status: "past_due", CurrentPeriodEnd: 1700000000}
		assert.Equal(t, subscription.Normalize(sub), subscription.Normalize(sub))
	})
}

func TestSnapshotOf(t *testing.T) {
	t.Parallel()

	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := subscription.SnapshotOf(subscription.Payload{Status: subscription.StatusActive, CurrentPeriodEnd: &end})
	require.NotNil(t, s.CurrentPeriodEnd)
	assert.Equal(t, "2025-01-01T00:00:00Z", *s.CurrentPeriodEnd)

	s = subscription.SnapshotOf(subscription.Payload{Status: subscription.StatusInactive})
	assert.Nil(t, s.CurrentPeriodEnd)
	assert.Equal(t, subscription.StatusInactive, s.Status)
}
