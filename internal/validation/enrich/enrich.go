// Package enrich decorates the rule engine with a best-effort secondary
// issue supplier, typically an AI reviewer behind the network. The supplier
// can add findings but can never hide or downgrade anything the rule engine
// found; any supplier failure or timeout silently yields the rule-only
// result.
package enrich

import (
	"context"
	"log/slog"
	"time"

	"janseva/internal/validation"
)

// IssueSupplier produces additional issues for a form. Implementations must
// honor ctx cancellation; the decorator also guards with its own timeout.
type IssueSupplier interface {
	Suggest(ctx context.Context, fields []validation.Field, formData map[string]string, lang string, serviceID int) ([]validation.Issue, error)
}

// DefaultTimeout bounds the supplier call. The rule-engine path itself never
// blocks and needs no cancellation support.
const DefaultTimeout = 6 * time.Second

type Validator struct {
	supplier IssueSupplier
	timeout  time.Duration
	logger   *slog.Logger
}

type Option func(*Validator)

func WithTimeout(d time.Duration) Option {
	return func(v *Validator) { v.timeout = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) { v.logger = logger }
}

// New wraps the pure validator with a supplier. A nil supplier degenerates
// to the rule-only engine.
func New(supplier IssueSupplier, opts ...Option) *Validator {
	v := &Validator{
		supplier: supplier,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs the rule engine synchronously, then merges supplier findings
// under the per-field dedup rule. Rule-engine issues are listed first, so an
// error it found always survives a colliding supplier warning.
func (v *Validator) Validate(ctx context.Context, fields []validation.Field, formData map[string]string, lang string, serviceID int) validation.Result {
	base := validation.Validate(fields, formData, lang, serviceID)
	if v.supplier == nil {
		return base
	}

	extra, err := v.suggest(ctx, fields, formData, lang, serviceID)
	if err != nil {
		v.logger.DebugContext(ctx, "enrichment pass skipped", "error", err.Error())
		return base
	}

	merged := validation.Dedupe(append(base.Issues, extra...))
	return validation.Result{IsValid: !validation.HasError(merged), Issues: merged}
}

// suggest isolates the supplier behind the timeout. The goroutine guards
// against suppliers that ignore ctx; its result is dropped once the deadline
// passes.
func (v *Validator) suggest(ctx context.Context, fields []validation.Field, formData map[string]string, lang string, serviceID int) ([]validation.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	type outcome struct {
		issues []validation.Issue
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		issues, err := v.supplier.Suggest(ctx, fields, formData, lang, serviceID)
		done <- outcome{issues, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-done:
		return out.issues, out.err
	}
}
