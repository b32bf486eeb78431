package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"janseva/internal/audit"
	"janseva/internal/platform/middleware"
	"janseva/internal/submission"
	"janseva/internal/submission/service"
	"janseva/internal/validation"
	dErrors "janseva/pkg/domain-errors"
	"janseva/pkg/platform/httputil"
)

// Service defines the interface for submission operations.
type Service interface {
	Intake(ctx context.Context, serviceID int, serviceName string, fields []validation.Field, formData map[string]string, lang string) (*submission.Submission, validation.Result, error)
	Get(ctx context.Context, id string) (service.Record, error)
	View(ctx context.Context, id, viewerID string) (service.Record, error)
	SaveFields(ctx context.Context, id string, updates map[string]string, actorID string) (*submission.Submission, error)
	ChangeStatus(ctx context.Context, id string, newStatus submission.Status, actorID, notes string) (*submission.Submission, error)
	SaveAndAdvance(ctx context.Context, id string, updates map[string]string, actorID string, newStatus submission.Status, notes string) (*submission.Submission, error)
	Delete(ctx context.Context, id, actorID string) error
	List(ctx context.Context, serviceID *int, includeFinal bool) []*submission.Submission
	Stats(ctx context.Context) submission.Stats
	AuditTrail(ctx context.Context, id string) ([]audit.Event, error)
}

// Validator runs the field checks without touching the store. It backs
// the stateless validate endpoint.
type Validator interface {
	Validate(ctx context.Context, fields []validation.Field, formData map[string]string, lang string, serviceID int) validation.Result
}

// Handler wires submission endpoints to the submission service.
type Handler struct {
	service   Service
	validator Validator
	logger    *slog.Logger
}

// New constructs a submission handler with its dependencies.
func New(service Service, validator Validator, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		validator: validator,
		logger:    logger,
	}
}

// Register mounts the citizen-facing endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/submissions", h.HandleIntake)
	r.Get("/submissions/{id}", h.HandleGet)
	r.Patch("/submissions/{id}/fields", h.HandleUpdateFields)
	r.Post("/validate", h.HandleValidate)
}

// RegisterAdmin mounts the operator endpoints on the router. The
// caller is expected to guard the group with admin authentication.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/submissions", h.HandleList)
	r.Post("/submissions/{id}/status", h.HandleChangeStatus)
	r.Post("/submissions/{id}/apply", h.HandleApply)
	r.Delete("/submissions/{id}", h.HandleDelete)
	r.Get("/submissions/{id}/audit", h.HandleAuditTrail)
	r.Get("/stats", h.HandleStats)
}

// HandleIntake handles POST /submissions requests.
func (h *Handler) HandleIntake(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[IntakeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sub, result, err := h.service.Intake(ctx, req.ServiceID, req.ServiceName,
		toFields(req.Fields, req.FormData), req.FormData, req.Lang)
	if err != nil {
		h.logger.ErrorContext(ctx, "intake failed",
			"request_id", requestID,
			"service_id", req.ServiceID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if !result.IsValid {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, IntakeResponse{Validation: result})
		return
	}

	h.logger.InfoContext(ctx, "submission accepted",
		"request_id", requestID,
		"submission_id", sub.ID,
		"service_id", req.ServiceID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	resp := FromSubmission(sub)
	httputil.WriteJSON(w, http.StatusCreated, IntakeResponse{Submission: &resp, Validation: result})
}

// HandleGet handles GET /submissions/{id} requests. A non-empty
// X-Actor-ID header records the caller as a viewer.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	viewerID := r.Header.Get("X-Actor-ID")
	var (
		rec service.Record
		err error
	)
	if viewerID != "" {
		rec, err = h.service.View(ctx, id, viewerID)
	} else {
		rec, err = h.service.Get(ctx, id)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(rec))
}

// HandleUpdateFields handles PATCH /submissions/{id}/fields requests.
func (h *Handler) HandleUpdateFields(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	id := chi.URLParam(r, "id")

	req, ok := httputil.DecodeAndPrepare[UpdateFieldsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sub, err := h.service.SaveFields(ctx, id, req.Updates, actorFrom(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSubmission(sub))
}

// HandleValidate handles POST /validate requests. It runs the checks
// and reports the issues without creating a submission.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result := h.validator.Validate(ctx, toFields(req.Fields, req.FormData), req.FormData, req.Lang, req.ServiceID)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleList handles GET /submissions requests. Query parameters:
// serviceId filters by service, includeFinal adds collected, rejected,
// and expired records.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var serviceID *int
	if raw := r.URL.Query().Get("serviceId"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "serviceId must be a number"))
			return
		}
		serviceID = &n
	}
	includeFinal := r.URL.Query().Get("includeFinal") == "true"

	subs := h.service.List(ctx, serviceID, includeFinal)
	httputil.WriteJSON(w, http.StatusOK, FromList(subs))
}

// HandleChangeStatus handles POST /submissions/{id}/status requests.
func (h *Handler) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	id := chi.URLParam(r, "id")

	req, ok := httputil.DecodeAndPrepare[StatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sub, err := h.service.ChangeStatus(ctx, id, req.ParsedStatus(), actorFrom(r), req.Notes)
	if err != nil {
		h.logger.WarnContext(ctx, "status change refused",
			"request_id", requestID,
			"submission_id", id,
			"target_status", req.Status,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSubmission(sub))
}

// HandleApply handles POST /submissions/{id}/apply requests, saving
// field edits and advancing the status in one step.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	id := chi.URLParam(r, "id")

	req, ok := httputil.DecodeAndPrepare[ApplyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sub, err := h.service.SaveAndAdvance(ctx, id, req.Updates, actorFrom(r), req.ParsedStatus(), req.Notes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSubmission(sub))
}

// HandleDelete handles DELETE /submissions/{id} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(ctx, id, actorFrom(r)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAuditTrail handles GET /submissions/{id}/audit requests.
func (h *Handler) HandleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	events, err := h.service.AuditTrail(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"submissionId": id,
		"events":       events,
	})
}

// HandleStats handles GET /stats requests.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Stats(r.Context()))
}

// actorFrom resolves the acting identity: the authenticated subject
// when present, otherwise the X-Actor-ID header.
func actorFrom(r *http.Request) string {
	if actor := middleware.GetActorID(r.Context()); actor != "" {
		return actor
	}
	return r.Header.Get("X-Actor-ID")
}
