package controller

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImportCSV(t *testing.T) {
	csv := strings.Join([]string{
		"first_name,last_name,phone,email,address,city,state,zip,notes",
		"Jordan,Reyes,778-555-2345,jordan@example.com,12 Main St,Surrey,BC,V3T1A1,trade-in",
		"Sam,Lee,6045551234,,,,,,",
	}, "\n")

	rows, err := parseImportCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Jordan", rows[0].FirstName)
	assert.Equal(t, "778-555-2345", rows[0].Phone)
	assert.Equal(t, "trade-in", rows[0].Notes)

	assert.Equal(t, 3, rows[1].Line)
	assert.Equal(t, "Sam", rows[1].FirstName)
	assert.Empty(t, rows[1].Email)
}

func TestParseImportCSVReorderedColumns(t *testing.T) {
	csv := "phone,last_name,first_name\n7785552345,Reyes,Jordan\n"

	rows, err := parseImportCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jordan", rows[0].FirstName)
	assert.Equal(t, "Reyes", rows[0].LastName)
	assert.Equal(t, "7785552345", rows[0].Phone)
}

func TestParseImportCSVMissingRequiredColumn(t *testing.T) {
	csv := "first_name,last_name\nJordan,Reyes\n"

	_, err := parseImportCSV(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "phone")
}

func TestParseImportCSVHeaderOnly(t *testing.T) {
	_, err := parseImportCSV(strings.NewReader("first_name,last_name,phone\n"))
	require.Error(t, err)
}

func TestValidateImportRowsRequiredFields(t *testing.T) {
	rows := []ImportRow{
		{Line: 2, FirstName: "Jordan", LastName: "Reyes", Phone: "7785552345"},
		{Line: 3, FirstName: "", LastName: "Lee", Phone: "6045551234"},
		{Line: 4, FirstName: "Sam", LastName: "", Phone: "6045551235"},
		{Line: 5, FirstName: "Pat", LastName: "Ng", Phone: ""},
	}

	valid, errors, warnings := validateImportRows(rows)

	require.Len(t, valid, 1)
	assert.Equal(t, 2, valid[0].Line)
	assert.Empty(t, warnings)

	require.Len(t, errors, 3)
	assert.Equal(t, "first_name", errors[0].Field)
	assert.Equal(t, "last_name", errors[1].Field)
	assert.Equal(t, "phone", errors[2].Field)
}

func TestValidateImportRowsPhoneFormat(t *testing.T) {
	rows := []ImportRow{
		{Line: 2, FirstName: "A", LastName: "B", Phone: "7785552345"},  // 10 digits
		{Line: 3, FirstName: "C", LastName: "D", Phone: "17785552346"}, // 11 starting with 1
		{Line: 4, FirstName: "E", LastName: "F", Phone: "555-2345"},    // too short
		{Line: 5, FirstName: "G", LastName: "H", Phone: "97785552345"}, // 11 not starting with 1
	}

	valid, errors, _ := validateImportRows(rows)

	require.Len(t, valid, 2)
	require.Len(t, errors, 2)
	assert.Equal(t, 4, errors[0].Line)
	assert.Equal(t, 5, errors[1].Line)
}

func TestValidateImportRowsInFileDuplicateIsWarningNotError(t *testing.T) {
	// Same number in three different spellings: later rows warn but stay
	// importable; the store-level unique index resolves them at insert.
	rows := []ImportRow{
		{Line: 2, FirstName: "A", LastName: "B", Phone: "7785552345"},
		{Line: 3, FirstName: "C", LastName: "D", Phone: "778-555-2345"},
		{Line: 4, FirstName: "E", LastName: "F", Phone: "+17785552345"},
	}

	valid, errors, warnings := validateImportRows(rows)

	assert.Len(t, valid, 3)
	assert.Empty(t, errors)
	require.Len(t, warnings, 2)
	assert.Equal(t, 3, warnings[0].Line)
	assert.Contains(t, warnings[0].Message, "line 2")
	assert.Equal(t, 4, warnings[1].Line)
}

func TestValidateImportRowsBadEmailIsWarning(t *testing.T) {
	rows := []ImportRow{
		{Line: 2, FirstName: "A", LastName: "B", Phone: "7785552345", Email: "not-an-email"},
	}

	valid, errors, warnings := validateImportRows(rows)

	assert.Len(t, valid, 1)
	assert.Empty(t, errors)
	require.Len(t, warnings, 1)
	assert.Equal(t, "email", warnings[0].Field)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.True(t, isUniqueViolation(errDuplicate{}))
	assert.False(t, isUniqueViolation(errOther{}))
}

type errDuplicate struct{}

func (errDuplicate) Error() string {
	return `ERROR: duplicate key value violates unique constraint "unique_phone_number" (SQLSTATE 23505)`
}

type errOther struct{}

func (errOther) Error() string { return "connection refused" }
