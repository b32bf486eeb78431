package handler

import (
	"janseva/internal/submission"
	"janseva/internal/submission/service"
	"janseva/internal/validation"
)

// SubmissionResponse is the HTTP representation of a submission. The
// finalized flag distinguishes records read after reaching a terminal
// status.
type SubmissionResponse struct {
	*submission.Submission
	Finalized bool `json:"finalized"`
}

// FromRecord converts a service read result to an HTTP response.
func FromRecord(rec service.Record) SubmissionResponse {
	return SubmissionResponse{Submission: rec.Submission, Finalized: rec.Finalized}
}

// FromSubmission converts a freshly mutated submission to an HTTP
// response, deriving the finalized flag from its status.
func FromSubmission(sub *submission.Submission) SubmissionResponse {
	return SubmissionResponse{Submission: sub, Finalized: sub.Status.IsTerminal()}
}

// ListResponse is the HTTP response for GET /submissions.
type ListResponse struct {
	Submissions []SubmissionResponse `json:"submissions"`
	Count       int                  `json:"count"`
}

// FromList converts a slice of submissions to an HTTP response.
func FromList(subs []*submission.Submission) ListResponse {
	out := make([]SubmissionResponse, 0, len(subs))
	for _, sub := range subs {
		out = append(out, FromSubmission(sub))
	}
	return ListResponse{Submissions: out, Count: len(out)}
}

// IntakeResponse is the HTTP response for POST /submissions. On a
// validation failure the submission is nil and issues carry the
// reasons.
type IntakeResponse struct {
	Submission *SubmissionResponse `json:"submission,omitempty"`
	Validation validation.Result   `json:"validation"`
}
