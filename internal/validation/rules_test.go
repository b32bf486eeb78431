package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinAgeTableDefaultsToZero(t *testing.T) {
	assert.Equal(t, 18, MinAgeForService(ServiceDrivingLicence))
	assert.Equal(t, 21, MinAgeForService(ServiceArmsLicence))
	assert.Equal(t, 60, MinAgeForService(ServiceOldAgePension))
	assert.Equal(t, 0, MinAgeForService(9999))
}

func TestFutureEventDateRules(t *testing.T) {
	fields := []Field{{ID: "date_of_death", Label: "Date of Death"}}

	result := validateAt(fields, map[string]string{"date_of_death": "2030-01-01"}, "en", ServiceDeathCertificate, testNow)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, CodeFutureEventDate, result.Issues[0].Code)

	result = validateAt(fields, map[string]string{"date_of_death": "2020-01-01"}, "en", ServiceDeathCertificate, testNow)
	assert.True(t, result.IsValid)
}

func TestPensionRules(t *testing.T) {
	fields := []Field{
		{ID: "bank_account_number", Label: "Bank Account Number"},
		{ID: "monthly_income", Label: "Monthly Income"},
	}

	t.Run("12-digit account number required", func(t *testing.T) {
		result := validateAt(fields, map[string]string{"bank_account_number": "1234 5678 9012"}, "en", ServiceOldAgePension, testNow)
		assert.True(t, result.IsValid)

		result = validateAt(fields, map[string]string{"bank_account_number": "12345"}, "en", ServiceOldAgePension, testNow)
		require.Len(t, result.Issues, 1)
		assert.Equal(t, CodeInvalidAccountNumber, result.Issues[0].Code)
	})

	t.Run("income must be positive", func(t *testing.T) {
		result := validateAt(fields, map[string]string{"monthly_income": "0"}, "en", ServiceOldAgePension, testNow)
		require.Len(t, result.Issues, 1)
		assert.Equal(t, CodeNonpositiveAmount, result.Issues[0].Code)

		result = validateAt(fields, map[string]string{"monthly_income": "4,500"}, "en", ServiceOldAgePension, testNow)
		assert.True(t, result.IsValid)
	})
}

func TestGSTRules(t *testing.T) {
	fields := []Field{{ID: "gst_number", Label: "GST Number"}}

	result := validateAt(fields, map[string]string{"gst_number": "22AAAAA0000A1Z5"}, "en", ServiceGSTRegistration, testNow)
	assert.True(t, result.IsValid)

	result = validateAt(fields, map[string]string{"gst_number": "22AAAAA"}, "en", ServiceGSTRegistration, testNow)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, CodeInvalidGSTNumber, result.Issues[0].Code)
}

func TestLandAreaRule(t *testing.T) {
	fields := []Field{{ID: "land_area", Label: "Land Area"}}

	result := validateAt(fields, map[string]string{"land_area": "-2"}, "en", ServiceLandRecord, testNow)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, CodeNonpositiveAmount, result.Issues[0].Code)
}

func TestRulesSkipEmptyValues(t *testing.T) {
	fields := []Field{{ID: "gst_number", Label: "GST Number", Optional: true}}
	result := validateAt(fields, map[string]string{}, "en", ServiceGSTRegistration, testNow)
	assert.Empty(t, result.Issues)
}

func TestUnknownServiceHasNoRules(t *testing.T) {
	fields := []Field{{ID: "gst_number", Label: "GST Number"}}
	result := validateAt(fields, map[string]string{"gst_number": "short"}, "en", 9999, testNow)
	assert.True(t, result.IsValid)
}
