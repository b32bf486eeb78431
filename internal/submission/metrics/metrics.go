package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the submission module: intake volume,
// validation outcomes, status movement, and snapshot persistence health.
type Metrics struct {
	SubmissionsCreated prometheus.Counter
	ValidationFailed   prometheus.Counter
	StatusChanges      *prometheus.CounterVec
	PersistFailures    prometheus.Counter
	IntakeDuration     prometheus.Histogram
}

// New registers all submission module metrics with the given registerer.
// Pass prometheus.DefaultRegisterer in main; tests use a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SubmissionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "janseva_submissions_created_total",
			Help: "Total number of submissions accepted at intake",
		}),
		ValidationFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "janseva_validation_failed_total",
			Help: "Total number of intakes refused by the validation engine",
		}),
		StatusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "janseva_status_changes_total",
			Help: "Total status changes by target status",
		}, []string{"status"}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "janseva_snapshot_persist_failures_total",
			Help: "Total snapshot writes that failed after an in-memory mutation",
		}),
		IntakeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "janseva_intake_duration_seconds",
			Help:    "Duration of intake (validate + create) operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncSubmissionCreated records a successful intake.
func (m *Metrics) IncSubmissionCreated() {
	m.SubmissionsCreated.Inc()
}

// IncValidationFailed records an intake refused with error issues.
func (m *Metrics) IncValidationFailed() {
	m.ValidationFailed.Inc()
}

// IncStatusChange records a move to the given status.
func (m *Metrics) IncStatusChange(status string) {
	m.StatusChanges.WithLabelValues(status).Inc()
}

// IncPersistFailure records a failed snapshot write. Satisfies the store's
// PersistMetrics interface.
func (m *Metrics) IncPersistFailure() {
	m.PersistFailures.Inc()
}

// ObserveIntake records the duration of an intake operation. Call with
// time.Now() at the start of the operation.
func (m *Metrics) ObserveIntake(start time.Time) {
	m.IntakeDuration.Observe(time.Since(start).Seconds())
}
