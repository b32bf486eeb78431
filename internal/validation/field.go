package validation

import "strings"

// FieldKind is the declarative semantic tag attached to a field definition.
// The engine switches on the tag; substring classification is only a fallback
// for dynamic schemas that never declared one.
type FieldKind string

const (
	KindFree        FieldKind = "free"
	KindPhone       FieldKind = "phone"
	KindNationalID  FieldKind = "national_id"
	KindTaxID       FieldKind = "tax_id"
	KindPostalCode  FieldKind = "postal_code"
	KindEmail       FieldKind = "email"
	KindDateOfBirth FieldKind = "date_of_birth"
	KindFile        FieldKind = "file"
)

// Field describes one entry of a service's form schema.
type Field struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind,omitempty"`
	Optional bool      `json:"optional,omitempty"`
}

// kindKeywords maps untagged field ids to kinds. Evaluated in order, first
// match wins; the priority matters because ids like "emergency_phone_email"
// must classify as phone.
var kindKeywords = []struct {
	kind     FieldKind
	keywords []string
}{
	{KindPhone, []string{"phone", "mobile"}},
	{KindNationalID, []string{"aadhaar", "aadhar", "national_id", "uid_number"}},
	{KindTaxID, []string{"pan", "tax_id"}},
	{KindPostalCode, []string{"pincode", "pin_code", "postal", "zip"}},
	{KindEmail, []string{"email", "e_mail"}},
	{KindDateOfBirth, []string{"dob", "date_of_birth", "birth_date", "birthdate"}},
}

// ClassifyFieldID resolves a field id to a semantic kind. Ids the engine
// cannot classify fall back to KindFree: they get the required check only and
// never produce a format error.
func ClassifyFieldID(id string) FieldKind {
	lowered := strings.ToLower(id)
	for _, entry := range kindKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw) {
				return entry.kind
			}
		}
	}
	return KindFree
}

// kindOf returns the declared tag, falling back to classification.
func kindOf(f Field) FieldKind {
	if f.Kind != "" {
		return f.Kind
	}
	return ClassifyFieldID(f.ID)
}

// isOptional honors both the declarative flag and legacy "(optional)" label
// markers from dynamic schemas.
func isOptional(f Field) bool {
	return f.Optional || strings.Contains(strings.ToLower(f.Label), "optional")
}
