// Package validation is the pure rule engine gating submission intake and
// edits. It does no I/O and keeps no state; every call re-derives its issues
// from the field definitions and form data it is handed.
package validation

// Severity of a detected issue. Only errors block intake.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes. Stable identifiers for per-field UI rendering; the localized
// text lives in messages.go.
const (
	CodeMissingRequired   = "MISSING_REQUIRED"
	CodeInvalidPhone      = "INVALID_PHONE"
	CodeInvalidPhoneStart = "INVALID_PHONE_START"
	CodeInvalidNationalID = "INVALID_NATIONAL_ID"
	CodeInvalidTaxID      = "INVALID_TAX_ID"
	CodeInvalidPostalCode = "INVALID_POSTAL_CODE"
	CodeInvalidEmail      = "INVALID_EMAIL"
	CodeAgeFutureDOB      = "AGE_FUTURE_DOB"
	CodeAgeTooYoung       = "AGE_TOO_YOUNG"
	CodeAgeFieldMismatch  = "AGE_FIELD_MISMATCH"

	CodeFutureEventDate      = "FUTURE_EVENT_DATE"
	CodeInvalidAccountNumber = "INVALID_ACCOUNT_NUMBER"
	CodeInvalidGSTNumber     = "INVALID_GST_NUMBER"
	CodeNonpositiveAmount    = "NONPOSITIVE_AMOUNT"
)

// Issue is a single detected problem with submitted form data. Ephemeral:
// produced fresh on every validation call, never persisted.
type Issue struct {
	FieldID    string   `json:"fieldId"`
	FieldLabel string   `json:"fieldLabel"`
	Severity   Severity `json:"severity"`
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	MessageEn  string   `json:"messageEn"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Result is the engine's verdict: valid means no error-severity issue.
type Result struct {
	IsValid bool    `json:"isValid"`
	Issues  []Issue `json:"issues"`
}

// HasError reports whether any issue carries error severity.
func HasError(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Dedupe keys issues by (fieldId, code). When two issues collide, the
// error-severity one always wins over the warning, so a best-effort secondary
// pass can add findings but never downgrade the rule engine's. Input order is
// preserved for the surviving issues.
func Dedupe(issues []Issue) []Issue {
	type key struct {
		fieldID string
		code    string
	}
	index := make(map[key]int, len(issues))
	out := make([]Issue, 0, len(issues))
	for _, issue := range issues {
		k := key{issue.FieldID, issue.Code}
		if at, seen := index[k]; seen {
			if out[at].Severity != SeverityError && issue.Severity == SeverityError {
				out[at] = issue
			}
			continue
		}
		index[k] = len(out)
		out = append(out, issue)
	}
	return out
}
