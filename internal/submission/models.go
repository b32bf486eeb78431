// Package submission defines the lifecycle model for citizen service
// applications: one record per application, a seven-state status machine, an
// append-only history, and viewer tracking for the admin audit trail.
package submission

import (
	"time"

	dErrors "janseva/pkg/domain-errors"
)

// Status is the current lifecycle stage of a submission.
type Status string

const (
	StatusSubmitted          Status = "submitted"
	StatusUnderReview        Status = "under_review"
	StatusProcessing         Status = "processing"
	StatusCompleted          Status = "completed"
	StatusReadyForCollection Status = "ready_for_collection"
	StatusCollected          Status = "collected"
	StatusRejected           Status = "rejected"
)

// AllStatuses lists every lifecycle stage in forward order, rejected last.
var AllStatuses = []Status{
	StatusSubmitted,
	StatusUnderReview,
	StatusProcessing,
	StatusCompleted,
	StatusReadyForCollection,
	StatusCollected,
	StatusRejected,
}

// forwardRank orders the happy path. Rejected sits outside it.
var forwardRank = map[Status]int{
	StatusSubmitted:          0,
	StatusUnderReview:        1,
	StatusProcessing:         2,
	StatusCompleted:          3,
	StatusReadyForCollection: 4,
	StatusCollected:          5,
}

// ParseStatus validates a wire value against the known statuses.
func ParseStatus(s string) (Status, error) {
	for _, known := range AllStatuses {
		if Status(s) == known {
			return known, nil
		}
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "unknown status: "+s)
}

// IsTerminal reports whether no further transition is expected.
func (s Status) IsTerminal() bool {
	return s == StatusCollected || s == StatusRejected
}

// Expired reports the derived isExpired flag: the record has run its course
// from the citizen's perspective (awaiting collection, collected, or
// rejected).
func (s Status) Expired() bool {
	return s == StatusReadyForCollection || s.IsTerminal()
}

// CanTransition decides whether from → to is allowed under the strict
// transition table. Rejection is reachable from any non-terminal state;
// otherwise only single forward steps are allowed, plus backward steps along
// the forward path when regression is enabled for admin correction.
func CanTransition(from, to Status, allowRegression bool) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StatusRejected {
		return true
	}
	fromRank, ok := forwardRank[from]
	if !ok {
		return false
	}
	toRank, ok := forwardRank[to]
	if !ok {
		return false
	}
	if toRank == fromRank+1 {
		return true
	}
	return allowRegression && toRank < fromRank
}

// StatusChange is one entry in a submission's append-only history.
type StatusChange struct {
	Status    Status    `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
	ChangedBy string    `json:"changedBy,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// Submission is one citizen's application instance. Keys in UserDetails that
// start with "_" are reserved for system-assigned metadata and are written
// only by the store.
type Submission struct {
	ID          string            `json:"id"`
	ServiceID   int               `json:"serviceId"`
	ServiceName string            `json:"serviceName"`
	UserDetails map[string]string `json:"userDetails"`

	Status        Status         `json:"status"`
	IsExpired     bool           `json:"isExpired"`
	StatusHistory []StatusChange `json:"statusHistory"`
	ViewedBy      []string       `json:"viewedBy"`
	AdminNotes    string         `json:"adminNotes,omitempty"`

	// Version increases on every mutation so concurrent admin writes can be
	// detected instead of silently lost.
	Version uint64 `json:"version"`

	CreatedAt       time.Time `json:"createdAt"`
	SubmittedAt     time.Time `json:"submittedAt"`
	ModifiedAt      time.Time `json:"modifiedAt"`
	StatusChangedAt time.Time `json:"statusChangedAt"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

// Clone returns a deep copy so callers can never mutate store state through
// a returned record.
func (s *Submission) Clone() *Submission {
	out := *s
	out.UserDetails = make(map[string]string, len(s.UserDetails))
	for k, v := range s.UserDetails {
		out.UserDetails[k] = v
	}
	out.StatusHistory = append([]StatusChange(nil), s.StatusHistory...)
	out.ViewedBy = append([]string(nil), s.ViewedBy...)
	return &out
}

// HasViewer reports whether the actor already appears in ViewedBy.
func (s *Submission) HasViewer(actorID string) bool {
	for _, v := range s.ViewedBy {
		if v == actorID {
			return true
		}
	}
	return false
}

// Stats is the aggregate shape consumed by the analytics collector.
type Stats struct {
	Total     int            `json:"total"`
	Active    int            `json:"active"`
	Completed int            `json:"completed"`
	ByStatus  map[Status]int `json:"byStatus"`
}
