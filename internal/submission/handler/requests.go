package handler

import (
	"strings"

	"janseva/internal/submission"
	"janseva/internal/validation"
	dErrors "janseva/pkg/domain-errors"
)

// FieldSpec describes one form field as submitted by the client. Kind
// is optional; when empty the field id decides the format checks.
type FieldSpec struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Kind     string `json:"kind,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

func (f FieldSpec) toField() validation.Field {
	kind := validation.FieldKind(f.Kind)
	if kind == "" {
		kind = validation.ClassifyFieldID(f.ID)
	}
	return validation.Field{
		ID:       f.ID,
		Label:    f.Label,
		Kind:     kind,
		Optional: f.Optional,
	}
}

func toFields(specs []FieldSpec, formData map[string]string) []validation.Field {
	if len(specs) > 0 {
		fields := make([]validation.Field, 0, len(specs))
		for _, s := range specs {
			fields = append(fields, s.toField())
		}
		return fields
	}
	// No declared fields. Classify every submitted key so format
	// checks still apply.
	fields := make([]validation.Field, 0, len(formData))
	for id := range formData {
		fields = append(fields, validation.Field{
			ID:    id,
			Label: id,
			Kind:  validation.ClassifyFieldID(id),
		})
	}
	return fields
}

// IntakeRequest is the HTTP request body for POST /submissions.
type IntakeRequest struct {
	ServiceID   int               `json:"serviceId"`
	ServiceName string            `json:"serviceName"`
	Fields      []FieldSpec       `json:"fields,omitempty"`
	FormData    map[string]string `json:"formData"`
	Lang        string            `json:"lang,omitempty"`
}

// Validate validates and normalizes the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *IntakeRequest) Validate() error {
	r.ServiceName = strings.TrimSpace(r.ServiceName)
	if r.ServiceName == "" {
		return dErrors.New(dErrors.CodeBadRequest, "serviceName is required")
	}
	if r.ServiceID < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "serviceId must not be negative")
	}
	if len(r.FormData) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "formData is required")
	}
	r.Lang = normalizeLang(r.Lang)
	return nil
}

// ValidateRequest is the HTTP request body for POST /validate. It runs
// the checks without creating anything.
type ValidateRequest struct {
	ServiceID int               `json:"serviceId"`
	Fields    []FieldSpec       `json:"fields,omitempty"`
	FormData  map[string]string `json:"formData"`
	Lang      string            `json:"lang,omitempty"`
}

func (r *ValidateRequest) Validate() error {
	if len(r.FormData) == 0 && len(r.Fields) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "formData or fields is required")
	}
	if r.ServiceID < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "serviceId must not be negative")
	}
	r.Lang = normalizeLang(r.Lang)
	return nil
}

// UpdateFieldsRequest is the HTTP request body for PATCH /submissions/{id}/fields.
type UpdateFieldsRequest struct {
	Updates map[string]string `json:"updates"`
}

func (r *UpdateFieldsRequest) Validate() error {
	if len(r.Updates) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "updates is required")
	}
	return nil
}

// StatusRequest is the HTTP request body for POST /submissions/{id}/status.
type StatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`

	parsedStatus submission.Status
}

func (r *StatusRequest) Validate() error {
	status, err := submission.ParseStatus(strings.TrimSpace(r.Status))
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, err.Error())
	}
	r.parsedStatus = status
	return nil
}

// ParsedStatus returns the validated status.
func (r *StatusRequest) ParsedStatus() submission.Status {
	return r.parsedStatus
}

// ApplyRequest is the HTTP request body for POST /submissions/{id}/apply.
// It saves field edits and advances the status in one step.
type ApplyRequest struct {
	Updates map[string]string `json:"updates"`
	Status  string            `json:"status"`
	Notes   string            `json:"notes,omitempty"`

	parsedStatus submission.Status
}

func (r *ApplyRequest) Validate() error {
	status, err := submission.ParseStatus(strings.TrimSpace(r.Status))
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, err.Error())
	}
	r.parsedStatus = status
	return nil
}

// ParsedStatus returns the validated status.
func (r *ApplyRequest) ParsedStatus() submission.Status {
	return r.parsedStatus
}

func normalizeLang(lang string) string {
	if strings.EqualFold(lang, "hi") {
		return "hi"
	}
	return "en"
}
