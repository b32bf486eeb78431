// Package store is the single authoritative lifecycle manager for
// submissions: an in-memory index mirrored to a persistence backend on every
// mutation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"janseva/internal/persistence"
	"janseva/internal/submission"
	"janseva/pkg/platform/sentinel"
)

// DefaultCollectionWindow is how long a submission is expected to remain
// collectable. Recorded on the record at creation; not enforced anywhere.
const DefaultCollectionWindow = 30 * 24 * time.Hour

// PersistMetrics counts snapshot write failures. Optional.
type PersistMetrics interface {
	IncPersistFailure()
}

// Store holds the submission index. All read-modify-write sequences run under
// one mutex and every record carries a version counter, so two concurrent
// admin mutations on the same id can never silently drop each other's writes.
type Store struct {
	mu      sync.RWMutex
	subs    map[string]*submission.Submission
	backend persistence.Backend

	logger          *slog.Logger
	now             func() time.Time
	strict          bool
	allowRegression bool
	metrics         PersistMetrics
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithStrictTransitions enforces the transition table inside UpdateStatus.
// allowRegression additionally permits backward moves for admin correction.
func WithStrictTransitions(allowRegression bool) Option {
	return func(s *Store) {
		s.strict = true
		s.allowRegression = allowRegression
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithPersistMetrics(m PersistMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New constructs a Store, replaying the backend's last snapshot into the
// index. An empty backend yields an empty store.
func New(ctx context.Context, backend persistence.Backend, opts ...Option) (*Store, error) {
	s := &Store{
		subs:    make(map[string]*submission.Submission),
		backend: backend,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := backend.Load(ctx)
	if errors.Is(err, persistence.ErrEmpty) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &s.subs); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

// Create registers a new submission in the initial state. The caller is
// responsible for having validated userDetails first.
func (s *Store) Create(ctx context.Context, serviceID int, serviceName string, userDetails map[string]string) (*submission.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	details := make(map[string]string, len(userDetails))
	for k, v := range userDetails {
		details[k] = v
	}

	sub := &submission.Submission{
		ID:          uuid.NewString(),
		ServiceID:   serviceID,
		ServiceName: serviceName,
		UserDetails: details,
		Status:      submission.StatusSubmitted,
		StatusHistory: []submission.StatusChange{
			{Status: submission.StatusSubmitted, ChangedAt: now},
		},
		ViewedBy:        []string{},
		Version:         1,
		CreatedAt:       now,
		SubmittedAt:     now,
		ModifiedAt:      now,
		StatusChangedAt: now,
		ExpiresAt:       now.Add(DefaultCollectionWindow),
	}
	s.subs[sub.ID] = sub
	s.persistLocked(ctx)
	return sub.Clone(), nil
}

// Get returns a copy of the submission without recording a viewer.
func (s *Store) Get(_ context.Context, id string) (*submission.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return sub.Clone(), nil
}

// View returns the submission and idempotently records viewerID. Viewing
// never changes status; the snapshot is only rewritten when the viewer set
// actually grew.
func (s *Store) View(ctx context.Context, id, viewerID string) (*submission.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if viewerID != "" && !sub.HasViewer(viewerID) {
		sub.ViewedBy = append(sub.ViewedBy, viewerID)
		sub.Version++
		s.persistLocked(ctx)
	}
	return sub.Clone(), nil
}

// UpdateFields merges updates into UserDetails without touching status or
// history. Used for draft edits. Empty keys and reserved "_" keys are
// skipped; reserved keys are system-owned.
func (s *Store) UpdateFields(ctx context.Context, id string, updates map[string]string, actorID string) (*submission.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	s.applyFieldsLocked(sub, updates, actorID)
	s.persistLocked(ctx)
	return sub.Clone(), nil
}

// UpdateStatus appends a history entry and moves the record to newStatus.
// In strict mode an off-table move returns sentinel.ErrInvalidState.
func (s *Store) UpdateStatus(ctx context.Context, id string, newStatus submission.Status, actorID, notes string) (*submission.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := s.applyStatusLocked(sub, newStatus, actorID, notes); err != nil {
		return nil, err
	}
	s.persistLocked(ctx)
	return sub.Clone(), nil
}

// UpdateDetailsAndStatus applies a field merge and a status change under one
// lock acquisition, so the caller observes the pair atomically.
func (s *Store) UpdateDetailsAndStatus(ctx context.Context, id string, updates map[string]string, actorID string, newStatus submission.Status, notes string) (*submission.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := s.applyStatusLocked(sub, newStatus, actorID, notes); err != nil {
		return nil, err
	}
	s.applyFieldsLocked(sub, updates, actorID)
	s.persistLocked(ctx)
	return sub.Clone(), nil
}

// ListAll returns submissions sorted by SubmittedAt descending. When
// includeFinal is false, records in the expired triple (ready_for_collection,
// collected, rejected) are filtered out.
func (s *Store) ListAll(_ context.Context, includeFinal bool) []*submission.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(includeFinal, func(*submission.Submission) bool { return true })
}

// ListByService is ListAll restricted to one service.
func (s *Store) ListByService(_ context.Context, serviceID int, includeFinal bool) []*submission.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(includeFinal, func(sub *submission.Submission) bool {
		return sub.ServiceID == serviceID
	})
}

// Delete removes the record entirely. Returns false for unknown ids.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[id]; !ok {
		return false
	}
	delete(s.subs, id)
	s.persistLocked(ctx)
	return true
}

// Stats aggregates over the current contents.
func (s *Store) Stats(_ context.Context) submission.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := submission.Stats{ByStatus: make(map[submission.Status]int, len(submission.AllStatuses))}
	for _, status := range submission.AllStatuses {
		stats.ByStatus[status] = 0
	}
	for _, sub := range s.subs {
		stats.Total++
		stats.ByStatus[sub.Status]++
		if !sub.IsExpired {
			stats.Active++
		}
		if sub.Status == submission.StatusCompleted {
			stats.Completed++
		}
	}
	return stats
}

func (s *Store) applyFieldsLocked(sub *submission.Submission, updates map[string]string, actorID string) {
	for k, v := range updates {
		if k == "" || k[0] == '_' {
			continue
		}
		sub.UserDetails[k] = v
	}
	sub.ModifiedAt = s.now()
	sub.Version++
	s.recordViewerLocked(sub, actorID)
}

func (s *Store) applyStatusLocked(sub *submission.Submission, newStatus submission.Status, actorID, notes string) error {
	if s.strict && !submission.CanTransition(sub.Status, newStatus, s.allowRegression) {
		return fmt.Errorf("%w: %s -> %s", sentinel.ErrInvalidState, sub.Status, newStatus)
	}
	now := s.now()
	sub.StatusHistory = append(sub.StatusHistory, submission.StatusChange{
		Status:    newStatus,
		ChangedAt: now,
		ChangedBy: actorID,
		Notes:     notes,
	})
	sub.Status = newStatus
	sub.IsExpired = newStatus.Expired()
	sub.StatusChangedAt = now
	sub.ModifiedAt = now
	if notes != "" {
		sub.AdminNotes = notes
	}
	sub.Version++
	s.recordViewerLocked(sub, actorID)
	return nil
}

func (s *Store) recordViewerLocked(sub *submission.Submission, actorID string) {
	if actorID != "" && !sub.HasViewer(actorID) {
		sub.ViewedBy = append(sub.ViewedBy, actorID)
	}
}

func (s *Store) listLocked(includeFinal bool, match func(*submission.Submission) bool) []*submission.Submission {
	out := make([]*submission.Submission, 0, len(s.subs))
	for _, sub := range s.subs {
		if !match(sub) {
			continue
		}
		if !includeFinal && sub.IsExpired {
			continue
		}
		out = append(out, sub.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

// persistLocked rewrites the full snapshot. A failed write is logged and
// counted but does not roll back the in-memory change; durability here is
// at-least-once, and the next successful mutation re-writes everything.
func (s *Store) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.subs)
	if err == nil {
		err = s.backend.Save(ctx, data)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "snapshot persist failed, in-memory state stands", "error", err.Error())
		if s.metrics != nil {
			s.metrics.IncPersistFailure()
		}
	}
}
