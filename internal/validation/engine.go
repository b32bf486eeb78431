package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	nonDigits  = regexp.MustCompile(`\D`)
	taxIDShape = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ageTolerance absorbs birthday rounding when comparing a stated age with the
// age derived from the date of birth.
const ageTolerance = 1

// Validate runs the full pipeline over a form: required checks, per-kind
// format checks, cross-field consistency, and per-service business rules,
// then dedupes the findings. Every stage always runs; there is no
// short-circuiting, so the caller gets the complete picture in one pass.
//
// serviceID of zero skips the service rule stage (no rules registered).
func Validate(fields []Field, formData map[string]string, lang string, serviceID int) Result {
	return validateAt(fields, formData, lang, serviceID, time.Now())
}

// validateAt is the testable core with an explicit evaluation time.
func validateAt(fields []Field, formData map[string]string, lang string, serviceID int, now time.Time) Result {
	var issues []Issue

	for _, field := range fields {
		value := strings.TrimSpace(formData[field.ID])
		kind := kindOf(field)

		if value == "" {
			// File presence and correctness are validated by the upload
			// collaborator, never here.
			if !isOptional(field) && kind != KindFile {
				issues = append(issues, newIssue(field, SeverityError, CodeMissingRequired, lang))
			}
			continue
		}

		issues = append(issues, checkFormat(field, kind, value, lang, serviceID, now)...)
	}

	issues = append(issues, checkAgeConsistency(fields, formData, lang, now)...)
	issues = append(issues, applyServiceRules(serviceID, fields, formData, lang)...)

	issues = Dedupe(issues)
	return Result{IsValid: !HasError(issues), Issues: issues}
}

func checkFormat(field Field, kind FieldKind, value, lang string, serviceID int, now time.Time) []Issue {
	switch kind {
	case KindPhone:
		digits := nonDigits.ReplaceAllString(value, "")
		if len(digits) != 10 {
			return []Issue{newIssue(field, SeverityError, CodeInvalidPhone, lang)}
		}
		if !strings.ContainsRune("6789", rune(digits[0])) {
			return []Issue{newIssue(field, SeverityError, CodeInvalidPhoneStart, lang)}
		}
	case KindNationalID:
		if len(nonDigits.ReplaceAllString(value, "")) != 12 {
			return []Issue{newIssue(field, SeverityError, CodeInvalidNationalID, lang)}
		}
	case KindTaxID:
		if !taxIDShape.MatchString(strings.ToUpper(value)) {
			return []Issue{newIssue(field, SeverityError, CodeInvalidTaxID, lang)}
		}
	case KindPostalCode:
		if len(nonDigits.ReplaceAllString(value, "")) != 6 {
			return []Issue{newIssue(field, SeverityError, CodeInvalidPostalCode, lang)}
		}
	case KindEmail:
		// "skip" is an explicit escape hatch for applicants without email.
		if value != "skip" && !emailShape.MatchString(value) {
			return []Issue{newIssue(field, SeverityError, CodeInvalidEmail, lang)}
		}
	case KindDateOfBirth:
		return checkDateOfBirth(field, value, lang, serviceID, now)
	}
	return nil
}

func checkDateOfBirth(field Field, value, lang string, serviceID int, now time.Time) []Issue {
	dob, ok := parseDate(value)
	if !ok {
		// Unparsable dates pass through unflagged; the formats in the wild
		// are too varied to reject safely.
		return nil
	}
	age := ageInYears(dob, now)
	if age < 0 {
		return []Issue{newIssue(field, SeverityError, CodeAgeFutureDOB, lang)}
	}
	if minAge := MinAgeForService(serviceID); minAge > 0 && age < minAge {
		return []Issue{newIssue(field, SeverityError, CodeAgeTooYoung, lang, minAge)}
	}
	return nil
}

// checkAgeConsistency compares a stated age field with the age derived from
// the date of birth when both are present. A spread beyond the tolerance is a
// warning, not an error: the stated age is advisory.
func checkAgeConsistency(fields []Field, formData map[string]string, lang string, now time.Time) []Issue {
	var ageField *Field
	var dobValue string
	for i := range fields {
		value := strings.TrimSpace(formData[fields[i].ID])
		if value == "" {
			continue
		}
		if kindOf(fields[i]) == KindDateOfBirth && dobValue == "" {
			dobValue = value
		}
		if ageField == nil && isAgeFieldID(fields[i].ID) {
			ageField = &fields[i]
		}
	}
	if ageField == nil || dobValue == "" {
		return nil
	}

	stated, err := strconv.Atoi(strings.TrimSpace(formData[ageField.ID]))
	if err != nil {
		return nil
	}
	dob, ok := parseDate(dobValue)
	if !ok {
		return nil
	}
	derived := ageInYears(dob, now)
	if derived < 0 {
		return nil
	}
	if diff := stated - derived; diff > ageTolerance || diff < -ageTolerance {
		return []Issue{newIssue(*ageField, SeverityWarning, CodeAgeFieldMismatch, lang)}
	}
	return nil
}

// isAgeFieldID matches ids whose underscore-separated tokens contain "age",
// so "applicant_age" matches but "language" does not.
func isAgeFieldID(id string) bool {
	for _, token := range strings.Split(strings.ToLower(id), "_") {
		if token == "age" {
			return true
		}
	}
	return false
}

// parseDate accepts ISO yyyy-mm-dd plus the dd/mm/yyyy and dd-mm-yyyy shapes
// common on paper forms.
func parseDate(value string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", "02/01/2006", "02-01-2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ageInYears computes age in whole years; negative for future dates.
func ageInYears(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}
