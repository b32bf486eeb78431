package validation

import (
	"fmt"
	"strings"
)

// Localized message templates per issue code. English is always produced as
// MessageEn; Message picks the requested language and falls back to English
// for languages without a table.
type template struct {
	en string
	hi string
}

var messages = map[string]template{
	CodeMissingRequired: {
		en: "%s is required",
		hi: "%s भरना आवश्यक है",
	},
	CodeInvalidPhone: {
		en: "%s must be a 10-digit mobile number",
		hi: "%s 10 अंकों का मोबाइल नंबर होना चाहिए",
	},
	CodeInvalidPhoneStart: {
		en: "%s must start with 6, 7, 8 or 9",
		hi: "%s 6, 7, 8 या 9 से शुरू होना चाहिए",
	},
	CodeInvalidNationalID: {
		en: "%s must be a 12-digit Aadhaar number",
		hi: "%s 12 अंकों का आधार नंबर होना चाहिए",
	},
	CodeInvalidTaxID: {
		en: "%s must match the PAN format (5 letters, 4 digits, 1 letter)",
		hi: "%s पैन प्रारूप में होना चाहिए (5 अक्षर, 4 अंक, 1 अक्षर)",
	},
	CodeInvalidPostalCode: {
		en: "%s must be a 6-digit PIN code",
		hi: "%s 6 अंकों का पिन कोड होना चाहिए",
	},
	CodeInvalidEmail: {
		en: "%s must be a valid email address",
		hi: "%s एक मान्य ईमेल पता होना चाहिए",
	},
	CodeAgeFutureDOB: {
		en: "%s cannot be in the future",
		hi: "%s भविष्य की तिथि नहीं हो सकती",
	},
	CodeAgeTooYoung: {
		en: "Applicant must be at least %d years old for this service",
		hi: "इस सेवा के लिए आवेदक की आयु कम से कम %d वर्ष होनी चाहिए",
	},
	CodeAgeFieldMismatch: {
		en: "Stated age does not match the date of birth",
		hi: "बताई गई आयु जन्म तिथि से मेल नहीं खाती",
	},
	CodeFutureEventDate: {
		en: "%s cannot be in the future",
		hi: "%s भविष्य की तिथि नहीं हो सकती",
	},
	CodeInvalidAccountNumber: {
		en: "%s must be a 12-digit account number",
		hi: "%s 12 अंकों का खाता संख्या होना चाहिए",
	},
	CodeInvalidGSTNumber: {
		en: "%s must be a 15-character GST number",
		hi: "%s 15 वर्णों का जीएसटी नंबर होना चाहिए",
	},
	CodeNonpositiveAmount: {
		en: "%s must be a positive number",
		hi: "%s एक धनात्मक संख्या होनी चाहिए",
	},
}

func newIssue(f Field, severity Severity, code, lang string, args ...any) Issue {
	return newIssueLabeled(f.ID, f.Label, severity, code, lang, args...)
}

func newIssueLabeled(fieldID, label string, severity Severity, code, lang string, args ...any) Issue {
	tmpl, ok := messages[code]
	if !ok {
		tmpl = template{en: label, hi: label}
	}

	// Messages that reference the field lead with its label; parametrized
	// ones (min age) take explicit args.
	fmtArgs := args
	if len(fmtArgs) == 0 {
		fmtArgs = []any{label}
	}

	en := format(tmpl.en, fmtArgs)
	localized := en
	if lang == "hi" && tmpl.hi != "" {
		localized = format(tmpl.hi, fmtArgs)
	}
	return Issue{
		FieldID:    fieldID,
		FieldLabel: label,
		Severity:   severity,
		Code:       code,
		Message:    localized,
		MessageEn:  en,
	}
}

// format applies Sprintf only when the template actually takes arguments, so
// fixed-text messages never pick up EXTRA artifacts.
func format(tmpl string, args []any) string {
	if !strings.Contains(tmpl, "%") {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}
