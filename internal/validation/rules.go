package validation

import (
	"strconv"
	"strings"
	"time"
)

// Rule is one per-service business check: a predicate over the field value
// and the full form, with a fixed severity and message code. Check returns
// true when the value passes. Rules only fire on non-empty values; emptiness
// belongs to the required stage.
type Rule struct {
	FieldID  string
	Code     string
	Severity Severity
	Check    func(value string, form map[string]string) bool
}

// Service identifiers with registered business rules. The catalog is static;
// unknown ids simply get no service stage.
const (
	ServiceBirthCertificate    = 12
	ServiceDeathCertificate    = 13
	ServiceMarriageCertificate = 14
	ServiceDrivingLicence      = 18
	ServiceArmsLicence         = 21
	ServiceGSTRegistration     = 33
	ServiceOldAgePension       = 44
	ServiceSeniorCitizenCard   = 45
	ServiceLandRecord          = 51
)

// minAgeByService gates services with a statutory minimum applicant age.
// Absent ids default to 0: no gate.
var minAgeByService = map[int]int{
	ServiceDrivingLicence:    18,
	ServiceArmsLicence:       21,
	ServiceOldAgePension:     60,
	ServiceSeniorCitizenCard: 60,
}

// MinAgeForService returns the minimum applicant age for a service, 0 when no
// gate applies.
func MinAgeForService(serviceID int) int {
	return minAgeByService[serviceID]
}

var serviceRules = map[int][]Rule{
	ServiceBirthCertificate: {
		{FieldID: "date_of_birth", Code: CodeFutureEventDate, Severity: SeverityError, Check: notFutureDate},
	},
	ServiceDeathCertificate: {
		{FieldID: "date_of_death", Code: CodeFutureEventDate, Severity: SeverityError, Check: notFutureDate},
	},
	ServiceMarriageCertificate: {
		{FieldID: "date_of_marriage", Code: CodeFutureEventDate, Severity: SeverityError, Check: notFutureDate},
	},
	ServiceOldAgePension: {
		{FieldID: "bank_account_number", Code: CodeInvalidAccountNumber, Severity: SeverityError, Check: digitsLen(12)},
		{FieldID: "monthly_income", Code: CodeNonpositiveAmount, Severity: SeverityError, Check: positiveNumber},
	},
	ServiceGSTRegistration: {
		{FieldID: "gst_number", Code: CodeInvalidGSTNumber, Severity: SeverityError, Check: exactLen(15)},
		{FieldID: "annual_turnover", Code: CodeNonpositiveAmount, Severity: SeverityError, Check: positiveNumber},
	},
	ServiceLandRecord: {
		{FieldID: "land_area", Code: CodeNonpositiveAmount, Severity: SeverityError, Check: positiveNumber},
	},
}

func applyServiceRules(serviceID int, fields []Field, formData map[string]string, lang string) []Issue {
	rules, ok := serviceRules[serviceID]
	if !ok {
		return nil
	}

	labels := make(map[string]string, len(fields))
	for _, f := range fields {
		labels[f.ID] = f.Label
	}

	var issues []Issue
	for _, rule := range rules {
		value := strings.TrimSpace(formData[rule.FieldID])
		if value == "" {
			continue
		}
		if rule.Check(value, formData) {
			continue
		}
		label := labels[rule.FieldID]
		if label == "" {
			label = rule.FieldID
		}
		issues = append(issues, newIssueLabeled(rule.FieldID, label, rule.Severity, rule.Code, lang))
	}
	return issues
}

func notFutureDate(value string, _ map[string]string) bool {
	date, ok := parseDate(value)
	if !ok {
		return true
	}
	return !date.After(time.Now())
}

func digitsLen(n int) func(string, map[string]string) bool {
	return func(value string, _ map[string]string) bool {
		return len(nonDigits.ReplaceAllString(value, "")) == n
	}
}

func exactLen(n int) func(string, map[string]string) bool {
	return func(value string, _ map[string]string) bool {
		return len(strings.TrimSpace(value)) == n
	}
}

func positiveNumber(value string, _ map[string]string) bool {
	n, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	return err == nil && n > 0
}
