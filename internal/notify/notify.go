// Package notify turns submission status changes into citizen-facing
// notification events and hands them to a dispatcher. Dispatch is best
// effort: losing a notification never fails the mutation that caused it.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"janseva/internal/submission"
)

// Severity drives how the consuming channel renders the notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Template is the static per-status notification content.
type Template struct {
	Title    string
	Message  string
	Severity Severity
}

// templates has exactly one entry per lifecycle status.
var templates = map[submission.Status]Template{
	submission.StatusSubmitted: {
		Title:    "Application received",
		Message:  "Your application has been received and assigned a reference number.",
		Severity: SeveritySuccess,
	},
	submission.StatusUnderReview: {
		Title:    "Application under review",
		Message:  "An officer is reviewing your application and documents.",
		Severity: SeverityInfo,
	},
	submission.StatusProcessing: {
		Title:    "Application in processing",
		Message:  "Your application has been verified and is being processed.",
		Severity: SeverityInfo,
	},
	submission.StatusCompleted: {
		Title:    "Processing complete",
		Message:  "Processing is complete. Your document is being prepared.",
		Severity: SeveritySuccess,
	},
	submission.StatusReadyForCollection: {
		Title:    "Ready for collection",
		Message:  "Your document is ready. Please collect it from the service centre.",
		Severity: SeveritySuccess,
	},
	submission.StatusCollected: {
		Title:    "Document collected",
		Message:  "Your document has been collected. This application is now closed.",
		Severity: SeveritySuccess,
	},
	submission.StatusRejected: {
		Title:    "Application rejected",
		Message:  "Your application could not be approved. See the officer's notes for the reason.",
		Severity: SeverityError,
	},
}

// TemplateFor returns the static content for a status.
func TemplateFor(status submission.Status) (Template, bool) {
	tmpl, ok := templates[status]
	return tmpl, ok
}

// Event is one status-change notification on its way to the dispatcher.
type Event struct {
	ID           string            `json:"id"`
	SubmissionID string            `json:"submissionId"`
	ServiceName  string            `json:"serviceName"`
	Status       submission.Status `json:"status"`
	Title        string            `json:"title"`
	Message      string            `json:"message"`
	Severity     Severity          `json:"severity"`
	Actor        string            `json:"actor,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	OccurredAt   time.Time         `json:"occurredAt"`
}

// NewEvent builds the notification for a submission's current status.
func NewEvent(sub *submission.Submission, actor, notes string, at time.Time) Event {
	tmpl := templates[sub.Status]
	return Event{
		ID:           uuid.NewString(),
		SubmissionID: sub.ID,
		ServiceName:  sub.ServiceName,
		Status:       sub.Status,
		Title:        tmpl.Title,
		Message:      tmpl.Message,
		Severity:     tmpl.Severity,
		Actor:        actor,
		Notes:        notes,
		OccurredAt:   at,
	}
}

// Dispatcher accepts events for delivery. Implementations must not block the
// caller's critical path.
type Dispatcher interface {
	Dispatch(event Event)
}

// Sink delivers events to an external channel (message bus, log, ...).
type Sink interface {
	Publish(ctx context.Context, event Event) error
}
