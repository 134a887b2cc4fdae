package validation

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Varun5711/expense-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeInput(t *testing.T, body string) ExpenseInput {
	t.Helper()
	var in ExpenseInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return in
}

func TestParseCreateExpense_Valid(t *testing.T) {
	req, err := ParseCreateExpense(decodeInput(t, `{"amount": 10.005, "description": "Lunch", "category": "groceries"}`))
	require.NoError(t, err)

	assert.Equal(t, "10.01", req.Amount.StringFixed(2))
	assert.Equal(t, "Lunch", req.Description)
	assert.Equal(t, models.CategoryGroceries, req.Category)
}

func TestParseCreateExpense_AmountCoercion(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"amount": "12.345", "description": "x", "category": "HEALTH"}`, "12.35"},
		{`{"amount": " 7 ", "description": "x", "category": "HEALTH"}`, "7.00"},
		{`{"amount": 10.004, "description": "x", "category": "HEALTH"}`, "10.00"},
		{`{"amount": 1e2, "description": "x", "category": "HEALTH"}`, "100.00"},
	}

	for _, tt := range tests {
		req, err := ParseCreateExpense(decodeInput(t, tt.body))
		require.NoError(t, err, tt.body)
		assert.Equal(t, tt.want, req.Amount.StringFixed(2), tt.body)
	}
}

func TestParseCreateExpense_RejectsBadAmounts(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{`0`, "Amount must be a positive number"},
		{`-5`, "Amount must be a positive number"},
		{`0.004`, "Amount must be a positive number"},
		{`"abc"`, "Amount must be a number"},
		{`""`, "Amount must be a number"},
		{`true`, "Amount must be a number"},
		{`null`, "Amount is required"},
		{`1e20`, "Amount is too large"},
		{`"99999999999999999999.99"`, "Amount is too large"},
		{`1e1000000`, "Amount is too large"},
		{`10000000000`, "Amount is too large"},
		{`9999999999.995`, "Amount is too large"},
		{`1e-1000000`, "Amount has too many digits"},
		{`"1.` + strings.Repeat("1", 40) + `"`, "Amount has too many digits"},
	}

	for _, tt := range tests {
		body := `{"amount": ` + tt.amount + `, "description": "x", "category": "HEALTH"}`
		_, err := ParseCreateExpense(decodeInput(t, body))
		assert.Equal(t, []string{tt.want}, fieldErrors(t, err)["amount"], tt.amount)
	}
}

func TestParseCreateExpense_LargestAmount(t *testing.T) {
	req, err := ParseCreateExpense(decodeInput(t, `{"amount": 9999999999.99, "description": "x", "category": "HEALTH"}`))
	require.NoError(t, err)
	assert.True(t, req.Amount.Equal(models.MaxAmount))

	req, err = ParseCreateExpense(decodeInput(t, `{"amount": 9.99999e9, "description": "x", "category": "HEALTH"}`))
	require.NoError(t, err)
	assert.Equal(t, "9999990000.00", req.Amount.StringFixed(2))
}

func TestParseCreateExpense_MissingFields(t *testing.T) {
	_, err := ParseCreateExpense(decodeInput(t, `{}`))
	errs := fieldErrors(t, err)

	assert.Equal(t, []string{"Amount is required"}, errs["amount"])
	assert.Equal(t, []string{"Description is required"}, errs["description"])
	assert.Equal(t, []string{"Invalid category"}, errs["category"])
}

func TestParseCreateExpense_Description(t *testing.T) {
	_, err := ParseCreateExpense(decodeInput(t, `{"amount": 1, "description": "", "category": "HEALTH"}`))
	assert.Equal(t, []string{"Description is required"}, fieldErrors(t, err)["description"])

	long := strings.Repeat("a", 256)
	_, err = ParseCreateExpense(decodeInput(t, `{"amount": 1, "description": "`+long+`", "category": "HEALTH"}`))
	assert.Equal(t, []string{"Description cannot exceed 255 characters"}, fieldErrors(t, err)["description"])

	_, err = ParseCreateExpense(decodeInput(t, `{"amount": 1, "description": 42, "category": "HEALTH"}`))
	assert.Equal(t, []string{"Description must be a string"}, fieldErrors(t, err)["description"])

	req, err := ParseCreateExpense(decodeInput(t, `{"amount": 1, "description": "`+strings.Repeat("é", 255)+`", "category": "HEALTH"}`))
	require.NoError(t, err)
	assert.Len(t, []rune(req.Description), 255)
}

func TestParseCreateExpense_Category(t *testing.T) {
	_, err := ParseCreateExpense(decodeInput(t, `{"amount": 1, "description": "x", "category": "TRAVEL"}`))
	assert.Equal(t, []string{"Invalid category"}, fieldErrors(t, err)["category"])

	_, err = ParseCreateExpense(decodeInput(t, `{"amount": 1, "description": "x", "category": 3}`))
	assert.Equal(t, []string{"Invalid category"}, fieldErrors(t, err)["category"])
}

func TestParseUpdateExpense(t *testing.T) {
	req, err := ParseUpdateExpense(decodeInput(t, `{"description": "Dinner"}`))
	require.NoError(t, err)
	require.NotNil(t, req.Description)
	assert.Equal(t, "Dinner", *req.Description)
	assert.Nil(t, req.Amount)
	assert.Nil(t, req.Category)

	req, err = ParseUpdateExpense(decodeInput(t, `{}`))
	require.NoError(t, err)
	assert.True(t, req.Empty())

	req, err = ParseUpdateExpense(decodeInput(t, `{"amount": "3.333", "category": "leisure"}`))
	require.NoError(t, err)
	assert.Equal(t, "3.33", req.Amount.StringFixed(2))
	assert.Equal(t, models.CategoryLeisure, *req.Category)

	for _, amount := range []string{`1e20`, `1e1000000`, `"99999999999999999999.99"`} {
		_, err = ParseUpdateExpense(decodeInput(t, `{"amount": `+amount+`}`))
		assert.Equal(t, []string{"Amount is too large"}, fieldErrors(t, err)["amount"], amount)
	}

	_, err = ParseUpdateExpense(decodeInput(t, `{"amount": -1, "category": "nope"}`))
	errs := fieldErrors(t, err)
	assert.Contains(t, errs, "amount")
	assert.Contains(t, errs, "category")
	assert.NotContains(t, errs, "description")
}

func TestParseExpenseFilter(t *testing.T) {
	filter, err := ParseExpenseFilter(url.Values{})
	require.NoError(t, err)
	assert.Nil(t, filter.Category)
	assert.Nil(t, filter.From)
	assert.Nil(t, filter.To)

	filter, err = ParseExpenseFilter(url.Values{
		"category":  {"health"},
		"startDate": {"2024-01-01"},
		"endDate":   {"2024-01-01"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryHealth, *filter.Category)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *filter.From)

	included := time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC)
	excluded := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.False(t, filter.To.Before(included))
	assert.True(t, filter.To.Before(excluded))
}

func TestParseExpenseFilter_Invalid(t *testing.T) {
	_, err := ParseExpenseFilter(url.Values{
		"category":  {"travel"},
		"startDate": {"01/02/2024"},
		"endDate":   {"2024-02-30"},
	})
	errs := fieldErrors(t, err)

	assert.Equal(t, []string{"Invalid category"}, errs["category"])
	assert.Equal(t, []string{"Invalid date format (YYYY-MM-DD)"}, errs["startDate"])
	assert.Equal(t, []string{"Invalid date"}, errs["endDate"])
}
