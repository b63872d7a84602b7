package subscription

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) GetByUserID(ctx context.Context, userID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[userID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return cloneRecord(rec), nil
}

func (s *MemoryStore) GetByCustomerID(ctx context.Context, customerID string) (*Record, error) {
	if customerID == "" {
		return nil, ErrRecordNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.CustomerID == customerID {
			return cloneRecord(rec), nil
		}
	}
	return nil, ErrRecordNotFound
}

func (s *MemoryStore) Upsert(ctx context.Context, rec Record) error {
	if rec.UserID == "" {
		return ErrMissingUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.records[rec.UserID]; ok {
		if rec.CustomerID == "" {
			rec.CustomerID = prev.CustomerID
		}
		if rec.SubscriptionID == "" {
			rec.SubscriptionID = prev.SubscriptionID
		}
	}
	s.records[rec.UserID] = *cloneRecord(rec)
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cloneRecord(rec Record) *Record {
	if rec.CurrentPeriodEnd != nil {
		t := *rec.CurrentPeriodEnd
		rec.CurrentPeriodEnd = &t
	}
	return &rec
}

// MemoryEventLog is an in-process EventLog.
type MemoryEventLog struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryEventLog creates an empty MemoryEventLog.
func NewMemoryEventLog() *MemoryEventLog {
	return &MemoryEventLog{seen: make(map[string]struct{})}
}

func (l *MemoryEventLog) Seen(ctx context.Context, eventID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[eventID]
	return ok, nil
}

func (l *MemoryEventLog) MarkProcessed(ctx context.Context, eventID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[eventID] = struct{}{}
	return nil
}
