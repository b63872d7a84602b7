package subscription_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/clientflow/clientflow/pkg/subscription"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) ParseEvent(payload []byte, signature string) (subscription.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(subscription.Event), args.Error(1)
}

func (m *mockProvider) GetSubscription(ctx context.Context, id string) (subscription.ProviderSubscription, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(subscription.ProviderSubscription), args.Error(1)
}

func (m *mockProvider) FindCustomer(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) CreateCustomer(ctx context.Context, id subscription.Identity) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) ListSubscriptions(ctx context.Context, customerID string) ([]subscription.ProviderSubscription, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.ProviderSubscription), args.Error(1)
}

func (m *mockProvider) CreateCheckoutSession(ctx context.Context, req subscription.CheckoutSessionRequest) (*subscription.Link, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Link), args.Error(1)
}

func (m *mockProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*subscription.Link, error) {
	args := m.Called(ctx, customerID, returnURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Link), args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetByUserID(ctx context.Context, userID string) (*subscription.Record, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Record), args.Error(1)
}

func (m *mockStore) GetByCustomerID(ctx context.Context, customerID string) (*subscription.Record, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Record), args.Error(1)
}

func (m *mockStore) Upsert(ctx context.Context, rec subscription.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

type mockEventLog struct {
	mock.Mock
}

func (m *mockEventLog) Seen(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *mockEventLog) MarkProcessed(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}
