package progression

import (
	"context"
	"sync"
	"time"
)

// TrustStore is the pluggable backend for per-user progression state:
// the trust scalar, the achieved-milestone set, external events, and the
// message counter. Implementations must make UpdateTrust atomic per user
// so concurrent turns never lose an update.
type TrustStore interface {
	// Trust returns the user's current trust value (0 for new users).
	Trust(ctx context.Context, userID string) (float64, error)

	// UpdateTrust applies fn to the current trust value atomically and
	// persists the result, returning the value before and after.
	UpdateTrust(ctx context.Context, userID string, fn func(current float64) float64) (old, updated float64, err error)

	// MarkAchieved records a milestone achievement once. Returns false if
	// the milestone was already achieved (idempotent).
	MarkAchieved(ctx context.Context, userID, milestoneID string, at time.Time) (bool, error)

	// Achieved returns the user's achieved milestones with timestamps.
	Achieved(ctx context.Context, userID string) (map[string]time.Time, error)

	// RecordExternalEvent stores a named external event for event-based
	// milestone evaluation.
	RecordExternalEvent(ctx context.Context, userID, name string, at time.Time) error

	// HasExternalEventSince reports whether a matching event was recorded
	// at or after since.
	HasExternalEventSince(ctx context.Context, userID, name string, since time.Time) (bool, error)

	// IncrMessageCount bumps and returns the user's processed-message count.
	IncrMessageCount(ctx context.Context, userID string) (int, error)

	// MessageCount returns the user's processed-message count.
	MessageCount(ctx context.Context, userID string) (int, error)
}

// InMemoryTrustStore is a thread-safe in-memory TrustStore for development
// and tests. Data is lost on restart.
type InMemoryTrustStore struct {
	mu       sync.Mutex
	trust    map[string]float64
	achieved map[string]map[string]time.Time
	events   map[string][]externalEvent // userID -> events
	messages map[string]int
}

type externalEvent struct {
	name string
	at   time.Time
}

// NewInMemoryTrustStore creates a new in-memory store.
func NewInMemoryTrustStore() *InMemoryTrustStore {
	return &InMemoryTrustStore{
		trust:    make(map[string]float64),
		achieved: make(map[string]map[string]time.Time),
		events:   make(map[string][]externalEvent),
		messages: make(map[string]int),
	}
}

func (s *InMemoryTrustStore) Trust(ctx context.Context, userID string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trust[userID], nil
}

func (s *InMemoryTrustStore) UpdateTrust(ctx context.Context, userID string, fn func(current float64) float64) (float64, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.trust[userID]
	updated := fn(old)
	s.trust[userID] = updated
	return old, updated, nil
}

func (s *InMemoryTrustStore) MarkAchieved(ctx context.Context, userID, milestoneID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.achieved[userID] == nil {
		s.achieved[userID] = make(map[string]time.Time)
	}
	if _, exists := s.achieved[userID][milestoneID]; exists {
		return false, nil
	}
	s.achieved[userID][milestoneID] = at
	return true, nil
}

func (s *InMemoryTrustStore) Achieved(ctx context.Context, userID string) (map[string]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[string]time.Time, len(s.achieved[userID]))
	for id, at := range s.achieved[userID] {
		result[id] = at
	}
	return result, nil
}

func (s *InMemoryTrustStore) RecordExternalEvent(ctx context.Context, userID, name string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[userID] = append(s.events[userID], externalEvent{name: name, at: at})
	return nil
}

func (s *InMemoryTrustStore) HasExternalEventSince(ctx context.Context, userID, name string, since time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events[userID] {
		if e.name == name && !e.at.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryTrustStore) IncrMessageCount(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[userID]++
	return s.messages[userID], nil
}

func (s *InMemoryTrustStore) MessageCount(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages[userID], nil
}
