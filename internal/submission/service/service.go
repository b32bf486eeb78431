// Package service orchestrates the submission lifecycle: intake gated by the
// validation engine, admin mutations with notification and audit side
// effects, and the read surfaces the HTTP layer exposes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"janseva/internal/audit"
	"janseva/internal/notify"
	"janseva/internal/submission"
	"janseva/internal/submission/metrics"
	"janseva/internal/validation"
	dErrors "janseva/pkg/domain-errors"
	"janseva/pkg/platform/sentinel"
)

// SubmissionStore is the lifecycle surface the service drives.
type SubmissionStore interface {
	Create(ctx context.Context, serviceID int, serviceName string, userDetails map[string]string) (*submission.Submission, error)
	Get(ctx context.Context, id string) (*submission.Submission, error)
	View(ctx context.Context, id, viewerID string) (*submission.Submission, error)
	UpdateFields(ctx context.Context, id string, updates map[string]string, actorID string) (*submission.Submission, error)
	UpdateStatus(ctx context.Context, id string, newStatus submission.Status, actorID, notes string) (*submission.Submission, error)
	UpdateDetailsAndStatus(ctx context.Context, id string, updates map[string]string, actorID string, newStatus submission.Status, notes string) (*submission.Submission, error)
	ListAll(ctx context.Context, includeFinal bool) []*submission.Submission
	ListByService(ctx context.Context, serviceID int, includeFinal bool) []*submission.Submission
	Delete(ctx context.Context, id string) bool
	Stats(ctx context.Context) submission.Stats
}

// Validator gates intake. The enrichment decorator satisfies this alongside
// the plain rule engine.
type Validator interface {
	Validate(ctx context.Context, fields []validation.Field, formData map[string]string, lang string, serviceID int) validation.Result
}

// AuditPublisher records the per-submission actor trail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
	List(ctx context.Context, submissionID string) ([]audit.Event, error)
}

// Service wires the lifecycle store to its collaborators.
type Service struct {
	store      SubmissionStore
	validator  Validator
	dispatcher notify.Dispatcher
	auditPub   AuditPublisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithDispatcher(dispatcher notify.Dispatcher) Option {
	return func(s *Service) { s.dispatcher = dispatcher }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPub = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New constructs a Service.
func New(store SubmissionStore, validator Validator, opts ...Option) *Service {
	s := &Service{
		store:     store,
		validator: validator,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record is a read result: the submission plus whether it is locked in a
// terminal state, so callers can distinguish final records from ordinary
// reads.
type Record struct {
	Submission *submission.Submission
	Finalized  bool
}

// Intake validates the form and, when clean of errors, creates the record in
// the initial state. A failed validation is not an error: the issues come
// back as data for per-field rendering and the returned submission is nil.
func (s *Service) Intake(ctx context.Context, serviceID int, serviceName string, fields []validation.Field, formData map[string]string, lang string) (*submission.Submission, validation.Result, error) {
	start := s.now()

	if err := rejectReservedKeys(formData); err != nil {
		return nil, validation.Result{}, err
	}

	result := s.validator.Validate(ctx, fields, formData, lang, serviceID)
	if !result.IsValid {
		if s.metrics != nil {
			s.metrics.IncValidationFailed()
		}
		return nil, result, nil
	}

	sub, err := s.store.Create(ctx, serviceID, serviceName, formData)
	if err != nil {
		return nil, result, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create submission")
	}

	s.notifyStatus(sub, "", "")
	s.logAudit(ctx, sub.ID, "", audit.ActionCreated, "")
	if s.metrics != nil {
		s.metrics.IncSubmissionCreated()
		s.metrics.ObserveIntake(start)
	}
	s.logger.InfoContext(ctx, "submission created",
		"submission_id", sub.ID,
		"service_id", serviceID,
	)
	return sub, result, nil
}

// Get reads without touching viewer tracking.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return Record{}, translateStoreErr(err)
	}
	return Record{Submission: sub, Finalized: sub.Status.IsTerminal()}, nil
}

// View reads and idempotently records the viewer.
func (s *Service) View(ctx context.Context, id, viewerID string) (Record, error) {
	sub, err := s.store.View(ctx, id, viewerID)
	if err != nil {
		return Record{}, translateStoreErr(err)
	}
	if viewerID != "" {
		s.logAudit(ctx, id, viewerID, audit.ActionViewed, "")
	}
	return Record{Submission: sub, Finalized: sub.Status.IsTerminal()}, nil
}

// SaveFields merges draft edits without moving the lifecycle.
func (s *Service) SaveFields(ctx context.Context, id string, updates map[string]string, actorID string) (*submission.Submission, error) {
	if err := rejectReservedKeys(updates); err != nil {
		return nil, err
	}
	sub, err := s.store.UpdateFields(ctx, id, updates, actorID)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	s.logAudit(ctx, id, actorID, audit.ActionFieldsUpdated, "")
	return sub, nil
}

// ChangeStatus moves the record and emits the citizen notification for the
// new status.
func (s *Service) ChangeStatus(ctx context.Context, id string, newStatus submission.Status, actorID, notes string) (*submission.Submission, error) {
	sub, err := s.store.UpdateStatus(ctx, id, newStatus, actorID, notes)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	s.afterStatusChange(ctx, sub, actorID, notes)
	return sub, nil
}

// SaveAndAdvance applies field edits and a status change as one operation,
// the default "apply & notify" admin action.
func (s *Service) SaveAndAdvance(ctx context.Context, id string, updates map[string]string, actorID string, newStatus submission.Status, notes string) (*submission.Submission, error) {
	if err := rejectReservedKeys(updates); err != nil {
		return nil, err
	}
	sub, err := s.store.UpdateDetailsAndStatus(ctx, id, updates, actorID, newStatus, notes)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	s.afterStatusChange(ctx, sub, actorID, notes)
	return sub, nil
}

// Delete removes the record permanently. The only removal path; nothing is
// destroyed automatically.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	if !s.store.Delete(ctx, id) {
		return dErrors.New(dErrors.CodeNotFound, "submission not found")
	}
	s.logAudit(ctx, id, actorID, audit.ActionDeleted, "")
	s.logger.InfoContext(ctx, "submission deleted", "submission_id", id, "actor", actorID)
	return nil
}

// List returns submissions, optionally restricted to a service.
func (s *Service) List(ctx context.Context, serviceID *int, includeFinal bool) []*submission.Submission {
	if serviceID != nil {
		return s.store.ListByService(ctx, *serviceID, includeFinal)
	}
	return s.store.ListAll(ctx, includeFinal)
}

// Stats aggregates over the store's current contents.
func (s *Service) Stats(ctx context.Context) submission.Stats {
	return s.store.Stats(ctx)
}

// AuditTrail returns the ordered actor trail for a submission.
func (s *Service) AuditTrail(ctx context.Context, id string) ([]audit.Event, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, translateStoreErr(err)
	}
	if s.auditPub == nil {
		return []audit.Event{}, nil
	}
	return s.auditPub.List(ctx, id)
}

func (s *Service) afterStatusChange(ctx context.Context, sub *submission.Submission, actorID, notes string) {
	s.notifyStatus(sub, actorID, notes)
	s.logAudit(ctx, sub.ID, actorID, audit.ActionStatusChanged, notes)
	if s.metrics != nil {
		s.metrics.IncStatusChange(string(sub.Status))
	}
	s.logger.InfoContext(ctx, "submission status changed",
		"submission_id", sub.ID,
		"status", sub.Status,
		"actor", actorID,
	)
}

func (s *Service) notifyStatus(sub *submission.Submission, actorID, notes string) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Dispatch(notify.NewEvent(sub, actorID, notes, s.now()))
}

func (s *Service) logAudit(ctx context.Context, submissionID, actorID, action, notes string) {
	if s.auditPub == nil {
		return
	}
	event := audit.Event{
		Timestamp:    s.now(),
		SubmissionID: submissionID,
		Actor:        actorID,
		Action:       action,
		Notes:        notes,
	}
	if err := s.auditPub.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "submission_id", submissionID, "error", err.Error())
	}
}

// rejectReservedKeys refuses caller-supplied keys in the system-reserved "_"
// namespace.
func rejectReservedKeys(data map[string]string) error {
	for k := range data {
		if strings.HasPrefix(k, "_") {
			return dErrors.New(dErrors.CodeBadRequest, "field ids starting with _ are reserved: "+k)
		}
	}
	return nil
}

func translateStoreErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "submission not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvalidTransition, "status change not allowed")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "submission store failure")
	}
}
