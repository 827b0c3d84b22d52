package companionsdk

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// ──────────────────────────────────────────────
// Activity log — append-only event trail
// ──────────────────────────────────────────────

// Activity event types written by this library. The log is the audit
// trail: records are created, never updated or deleted.
const (
	EventCrisis            = "crisis_event"
	EventCrisisEscalation  = "crisis_escalation"
	EventTrustGained       = "trust_gained"
	EventTrustLost         = "trust_lost"
	EventMilestoneAchieved = "milestone_achieved"
)

// ActivityEvent is one append-only log record. ID is storage-assigned.
type ActivityEvent struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Type      string         `json:"type"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ActivityStore is the pluggable append-only backend for the event trail.
// Implementations must never expose update or delete.
type ActivityStore interface {
	Append(ctx context.Context, event *ActivityEvent) error
	ListByUser(ctx context.Context, userID string, since time.Time) ([]ActivityEvent, error)
	ListSince(ctx context.Context, since time.Time) ([]ActivityEvent, error)
}

// InMemoryActivityStore is a thread-safe in-memory ActivityStore for
// development and tests. Data is lost on restart.
type InMemoryActivityStore struct {
	mu     sync.RWMutex
	events []ActivityEvent
	nextID int
}

// NewInMemoryActivityStore creates a new in-memory store.
func NewInMemoryActivityStore() *InMemoryActivityStore {
	return &InMemoryActivityStore{}
}

func (s *InMemoryActivityStore) Append(ctx context.Context, event *ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	if event.ID == "" {
		event.ID = strconv.Itoa(s.nextID)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	s.events = append(s.events, *event)
	return nil
}

func (s *InMemoryActivityStore) ListByUser(ctx context.Context, userID string, since time.Time) ([]ActivityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []ActivityEvent
	for _, e := range s.events {
		if e.UserID == userID && !e.Timestamp.Before(since) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (s *InMemoryActivityStore) ListSince(ctx context.Context, since time.Time) ([]ActivityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []ActivityEvent
	for _, e := range s.events {
		if !e.Timestamp.Before(since) {
			result = append(result, e)
		}
	}
	return result, nil
}
