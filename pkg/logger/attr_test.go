package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientflow/clientflow/pkg/logger"
)

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestIDAttrs(t *testing.T) {
	tests := []struct {
		attr func(string) slog.Attr
		key  string
	}{
		{logger.UserID, "user_id"},
		{logger.CustomerID, "customer_id"},
		{logger.SubscriptionID, "subscription_id"},
		{logger.EventID, "event_id"},
		{logger.EventType, "event_type"},
		{logger.RequestID, "request_id"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			attr := tt.attr("abc")
			assert.Equal(t, tt.key, attr.Key)
			assert.Equal(t, "abc", attr.Value.String())

			assert.True(t, tt.attr("").Equal(slog.Attr{}), "empty value must be dropped")
		})
	}
}

func TestOutcome(t *testing.T) {
	attr := logger.Outcome("applied")
	assert.Equal(t, "outcome", attr.Key)
	assert.Equal(t, "applied", attr.Value.String())
}

func TestDuration(t *testing.T) {
	attr := logger.Duration(2 * time.Second)
	assert.Equal(t, "duration", attr.Key)
	assert.Equal(t, 2*time.Second, attr.Value.Duration())
}
