package subscription

// Event is a verified provider event. The concrete type is one of
// SubscriptionChanged, SubscriptionDeleted, SubscriptionReferenced or Unhandled.
type Event interface {
	Header() EventHeader
	isEvent()
}

// EventHeader is common to every event variant.
type EventHeader struct {
	ID   string // Provider event ID
	Type string // Provider event type, e.g. "customer.subscription.updated"
}

// SubscriptionChanged is emitted when a subscription is created or updated.
// The event carries the full subscription object.
type SubscriptionChanged struct {
	EventHeader
	Subscription ProviderSubscription
}

// SubscriptionDeleted is emitted when a subscription ends.
type SubscriptionDeleted struct {
	EventHeader
	Subscription ProviderSubscription
}

// SubscriptionReferenced is emitted by checkout and invoice events that only
// reference a subscription by ID. The subscription must be fetched before use.
type SubscriptionReferenced struct {
	EventHeader
	SubscriptionID string
	Metadata       map[string]string // Metadata of the referencing object
}

// Unhandled is any event type the reconciliation flow does not act on.
type Unhandled struct {
	EventHeader
}

func (e SubscriptionChanged) Header() EventHeader    { return e.EventHeader }
func (e SubscriptionDeleted) Header() EventHeader    { return e.EventHeader }
func (e SubscriptionReferenced) Header() EventHeader { return e.EventHeader }
func (e Unhandled) Header() EventHeader              { return e.EventHeader }

func (SubscriptionChanged) isEvent()    {}
func (SubscriptionDeleted) isEvent()    {}
func (SubscriptionReferenced) isEvent() {}
func (Unhandled) isEvent()              {}
