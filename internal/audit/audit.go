// Package audit keeps an ordered trail of admin actions per submission. It
// supplements the record's viewedBy set with who did what, when, in what
// order.
package audit

import (
	"context"
	"sync"
	"time"
)

// Action names for the trail.
const (
	ActionCreated       = "created"
	ActionViewed        = "viewed"
	ActionFieldsUpdated = "fields_updated"
	ActionStatusChanged = "status_changed"
	ActionDeleted       = "deleted"
)

// Event is emitted from the submission service to capture key actions. Keep
// it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp    time.Time `json:"timestamp"`
	SubmissionID string    `json:"submissionId"`
	Actor        string    `json:"actor"`
	Action       string    `json:"action"`
	Notes        string    `json:"notes,omitempty"`
}

// Store is append-only per submission.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubmission(ctx context.Context, submissionID string) ([]Event, error)
}

// InMemoryStore keeps the trail in process. Suits the single-writer model;
// swap the Store for external retention when needed.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.SubmissionID] = append(s.events[event.SubmissionID], event)
	return nil
}

func (s *InMemoryStore) ListBySubmission(_ context.Context, submissionID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[submissionID]...), nil
}

// Publisher captures structured audit events. It is append-only and uses the
// store layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.store.Append(ctx, event)
}

func (p *Publisher) List(ctx context.Context, submissionID string) ([]Event, error) {
	return p.store.ListBySubmission(ctx, submissionID)
}
