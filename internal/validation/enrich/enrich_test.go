package enrich

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"janseva/internal/validation"
)

type stubSupplier struct {
	issues []validation.Issue
	err    error
	delay  time.Duration
}

func (s *stubSupplier) Suggest(ctx context.Context, _ []validation.Field, _ map[string]string, _ string, _ int) ([]validation.Issue, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return s.issues, s.err
}

func phoneFields() []validation.Field {
	return []validation.Field{{ID: "phone_number", Label: "Mobile Number", Kind: validation.KindPhone}}
}

func TestSupplierAddsIssues(t *testing.T) {
	supplier := &stubSupplier{issues: []validation.Issue{{
		FieldID:  "phone_number",
		Code:     "SUSPICIOUS_VALUE",
		Severity: validation.SeverityWarning,
	}}}
	v := New(supplier)

	result := v.Validate(context.Background(), phoneFields(), map[string]string{"phone_number": "9876543210"}, "en", 0)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "SUSPICIOUS_VALUE", result.Issues[0].Code)
	assert.True(t, result.IsValid, "supplier warnings do not block")
}

func TestSupplierCannotDowngradeErrors(t *testing.T) {
	// Supplier reports the same (field, code) pair at warning severity.
	supplier := &stubSupplier{issues: []validation.Issue{{
		FieldID:  "phone_number",
		Code:     validation.CodeInvalidPhone,
		Severity: validation.SeverityWarning,
	}}}
	v := New(supplier)

	result := v.Validate(context.Background(), phoneFields(), map[string]string{"phone_number": "123"}, "en", 0)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, validation.SeverityError, result.Issues[0].Severity)
	assert.False(t, result.IsValid)
}

func TestSupplierFailureFallsBack(t *testing.T) {
	v := New(&stubSupplier{err: errors.New("model unavailable")})

	result := v.Validate(context.Background(), phoneFields(), map[string]string{"phone_number": "9876543210"}, "en", 0)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Issues)
}

func TestSupplierTimeoutFallsBack(t *testing.T) {
	v := New(&stubSupplier{delay: time.Second, issues: []validation.Issue{{FieldID: "x", Code: "LATE"}}},
		WithTimeout(10*time.Millisecond))

	start := time.Now()
	result := v.Validate(context.Background(), phoneFields(), map[string]string{"phone_number": "9876543210"}, "en", 0)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Empty(t, result.Issues)
}

func TestCallerCancellationAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := New(&stubSupplier{delay: time.Second})
	result := v.Validate(ctx, phoneFields(), map[string]string{"phone_number": "9876543210"}, "en", 0)
	assert.True(t, result.IsValid)
}

func TestNilSupplierIsRuleOnly(t *testing.T) {
	v := New(nil)
	result := v.Validate(context.Background(), phoneFields(), map[string]string{"phone_number": "123"}, "en", 0)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, validation.CodeInvalidPhone, result.Issues[0].Code)
}

func TestHTTPSupplier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"issues":[{"fieldId":"phone_number","code":"SUSPICIOUS_VALUE","severity":"warning"}]}`))
	}))
	defer srv.Close()

	supplier := NewHTTPSupplier(srv.URL, srv.Client())
	issues, err := supplier.Suggest(context.Background(), phoneFields(), map[string]string{}, "en", 0)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "SUSPICIOUS_VALUE", issues[0].Code)
}

func TestHTTPSupplierNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	supplier := NewHTTPSupplier(srv.URL, srv.Client())
	_, err := supplier.Suggest(context.Background(), nil, nil, "en", 0)
	require.Error(t, err)
}
