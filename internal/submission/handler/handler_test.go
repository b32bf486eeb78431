package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"janseva/internal/audit"
	"janseva/internal/persistence"
	"janseva/internal/submission"
	"janseva/internal/submission/service"
	"janseva/internal/submission/store"
	"janseva/internal/validation"
	"janseva/internal/validation/enrich"
	"janseva/pkg/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	st, err := store.New(context.Background(), persistence.NewMemory())
	require.NoError(t, err)

	validator := enrich.New(nil)
	svc := service.New(st, validator,
		service.WithAuditPublisher(audit.NewPublisher(audit.NewInMemoryStore())),
	)
	h := New(svc, validator, testLogger())

	r := chi.NewRouter()
	h.Register(r)
	h.RegisterAdmin(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func intakeBody(dob string) map[string]any {
	return map[string]any{
		"serviceId":   18,
		"serviceName": "Driving Licence",
		"formData": map[string]string{
			"date_of_birth": dob,
			"phone_number":  "9876543210",
		},
	}
}

func adultDOB() string {
	return time.Now().AddDate(-30, 0, -1).Format("2006-01-02")
}

func createSubmission(t *testing.T, r http.Handler) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/submissions", intakeBody(adultDOB()), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp IntakeResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.Submission)
	return resp.Submission.ID
}

func TestHandleIntake(t *testing.T) {
	t.Run("valid form creates submission", func(t *testing.T) {
		r := newTestRouter(t)

		w := doJSON(t, r, http.MethodPost, "/submissions", intakeBody(adultDOB()), nil)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp IntakeResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotNil(t, resp.Submission)
		assert.Equal(t, submission.StatusSubmitted, resp.Submission.Status)
		assert.False(t, resp.Submission.Finalized)
		assert.True(t, resp.Validation.IsValid)
	})

	t.Run("underage applicant gets issue payload", func(t *testing.T) {
		r := newTestRouter(t)

		underage := time.Now().AddDate(-15, 0, -1).Format("2006-01-02")
		w := doJSON(t, r, http.MethodPost, "/submissions", intakeBody(underage), nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp IntakeResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Nil(t, resp.Submission)
		require.Len(t, resp.Validation.Issues, 1)
		assert.Equal(t, validation.CodeAgeTooYoung, resp.Validation.Issues[0].Code)
	})

	t.Run("missing service name is rejected", func(t *testing.T) {
		r := newTestRouter(t)

		w := doJSON(t, r, http.MethodPost, "/submissions", map[string]any{
			"serviceId": 18,
			"formData":  map[string]string{"name": "Asha"},
		}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		r := newTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/submissions", bytes.NewBufferString("{nope"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleGet(t *testing.T) {
	t.Run("unknown id is 404", func(t *testing.T) {
		r := newTestRouter(t)

		w := doJSON(t, r, http.MethodGet, "/submissions/absent", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("actor header records the viewer", func(t *testing.T) {
		r := newTestRouter(t)
		id := createSubmission(t, r)

		w := doJSON(t, r, http.MethodGet, "/submissions/"+id, nil, map[string]string{"X-Actor-ID": "clerk-7"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp SubmissionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Contains(t, resp.ViewedBy, "clerk-7")
	})

	t.Run("anonymous read leaves viewers untouched", func(t *testing.T) {
		r := newTestRouter(t)
		id := createSubmission(t, r)

		w := doJSON(t, r, http.MethodGet, "/submissions/"+id, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp SubmissionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Empty(t, resp.ViewedBy)
	})
}

func TestHandleUpdateFields(t *testing.T) {
	r := newTestRouter(t)
	id := createSubmission(t, r)

	w := doJSON(t, r, http.MethodPatch, "/submissions/"+id+"/fields", map[string]any{
		"updates": map[string]string{"phone_number": "9123456780"},
	}, map[string]string{"X-Actor-ID": "clerk-7"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp SubmissionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "9123456780", resp.UserDetails["phone_number"])

	t.Run("reserved keys are rejected", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPatch, "/submissions/"+id+"/fields", map[string]any{
			"updates": map[string]string{"_location": "centre-3"},
		}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleChangeStatus(t *testing.T) {
	r := newTestRouter(t)
	id := createSubmission(t, r)

	t.Run("unknown status name", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/submissions/"+id+"/status", map[string]any{
			"status": "teleported",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("valid change", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/submissions/"+id+"/status", map[string]any{
			"status": "under_review",
			"notes":  "assigned to desk 4",
		}, map[string]string{"X-Actor-ID": "admin-1"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp SubmissionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, submission.StatusUnderReview, resp.Status)
		assert.Equal(t, "admin-1", resp.StatusHistory[len(resp.StatusHistory)-1].ChangedBy)
	})

	t.Run("authenticated subject outranks actor header", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{"status": "processing"}))
		req := httptest.NewRequest(http.MethodPost, "/submissions/"+id+"/status", &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Actor-ID", "spoofed")
		req = testutil.WithActor(req, "admin-2")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp SubmissionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "admin-2", resp.StatusHistory[len(resp.StatusHistory)-1].ChangedBy)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/submissions/absent/status", map[string]any{
			"status": "under_review",
		}, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleApply(t *testing.T) {
	r := newTestRouter(t)
	id := createSubmission(t, r)

	w := doJSON(t, r, http.MethodPost, "/submissions/"+id+"/apply", map[string]any{
		"updates": map[string]string{"remarks": "documents verified"},
		"status":  "processing",
	}, map[string]string{"X-Actor-ID": "admin-1"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp SubmissionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, submission.StatusProcessing, resp.Status)
	assert.Equal(t, "documents verified", resp.UserDetails["remarks"])
}

func TestHandleDelete(t *testing.T) {
	r := newTestRouter(t)
	id := createSubmission(t, r)

	w := doJSON(t, r, http.MethodDelete, "/submissions/"+id, nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/submissions/"+id, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleList(t *testing.T) {
	r := newTestRouter(t)
	createSubmission(t, r)
	createSubmission(t, r)

	t.Run("all submissions", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/submissions", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp ListResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, 2, resp.Count)
	})

	t.Run("service filter", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/submissions?serviceId=99", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp ListResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Zero(t, resp.Count)
	})

	t.Run("bad service filter", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/submissions?serviceId=many", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleValidate(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/validate", map[string]any{
		"serviceId": 18,
		"formData": map[string]string{
			"phone_number": "12345",
		},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result validation.Result
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.False(t, result.IsValid)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, validation.CodeInvalidPhone, result.Issues[0].Code)
}

func TestHandleStats(t *testing.T) {
	r := newTestRouter(t)
	createSubmission(t, r)

	w := doJSON(t, r, http.MethodGet, "/stats", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats submission.Stats
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Active)
}

func TestHandleAuditTrail(t *testing.T) {
	r := newTestRouter(t)
	id := createSubmission(t, r)

	w := doJSON(t, r, http.MethodGet, "/submissions/"+id+"/audit", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		SubmissionID string        `json:"submissionId"`
		Events       []audit.Event `json:"events"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, id, resp.SubmissionID)
	require.NotEmpty(t, resp.Events)
	assert.Equal(t, audit.ActionCreated, resp.Events[0].Action)
}
