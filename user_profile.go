package companionsdk

import (
	"context"
	"sync"
	"time"
)

// ──────────────────────────────────────────────
// User profiles
// ──────────────────────────────────────────────

// UserProfile holds the per-user metadata this library reads and updates.
type UserProfile struct {
	UserID           string     `json:"user_id"`
	Email            string     `json:"email,omitempty"`
	Name             string     `json:"name,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	LastCrisisAlert  *time.Time `json:"last_crisis_alert,omitempty"`
	CrisisAlertCount int        `json:"crisis_alert_count"`
}

// ProfileStore is the pluggable backend for user profiles.
// Get returns (nil, nil) when the user does not exist; a missing user is
// a no-op condition for every caller in this library, not an error.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*UserProfile, error)
	Create(ctx context.Context, profile *UserProfile) error
	RecordCrisisAlert(ctx context.Context, userID string, at time.Time) error
}

// InMemoryProfileStore is a thread-safe in-memory ProfileStore.
// Data is lost on restart.
type InMemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*UserProfile
}

// NewInMemoryProfileStore creates a new in-memory store.
func NewInMemoryProfileStore() *InMemoryProfileStore {
	return &InMemoryProfileStore{profiles: make(map[string]*UserProfile)}
}

func (s *InMemoryProfileStore) Get(ctx context.Context, userID string) (*UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (s *InMemoryProfileStore) Create(ctx context.Context, profile *UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	clone := *profile
	s.profiles[profile.UserID] = &clone
	return nil
}

func (s *InMemoryProfileStore) RecordCrisisAlert(ctx context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil
	}
	p.LastCrisisAlert = &at
	p.CrisisAlertCount++
	return nil
}
