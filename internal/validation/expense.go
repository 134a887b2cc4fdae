package validation

import (
	"bytes"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Varun5711/expense-tracker/internal/apperr"
	"github.com/Varun5711/expense-tracker/internal/models"
	"github.com/shopspring/decimal"
)

const (
	descriptionMaxLen = 255

	// Amount text and exponents are bounded before rounding so that forms like
	// 1e1000000 never get expanded into their full digit string.
	amountMaxTextLen  = 32
	amountMaxExponent = 10
	amountMinExponent = -20
)

var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ExpenseInput is the raw request body for create and update. Fields are kept raw so
// that an absent field can be told apart from a present one and so that amounts are
// parsed from their exact decimal text.
type ExpenseInput struct {
	Amount      json.RawMessage `json:"amount"`
	Description json.RawMessage `json:"description"`
	Category    json.RawMessage `json:"category"`
}

func ParseCreateExpense(in ExpenseInput) (models.CreateExpenseRequest, error) {
	fields := apperr.FieldErrors{}
	var req models.CreateExpenseRequest

	if amount, ok := parseAmount(in.Amount, fields); ok {
		req.Amount = amount
	}
	if desc, ok := parseDescription(in.Description, fields); ok {
		req.Description = desc
	}
	if category, ok := parseCategory(in.Category, fields); ok {
		req.Category = category
	}

	if !fields.Empty() {
		return models.CreateExpenseRequest{}, apperr.Validation(fields)
	}
	return req, nil
}

// ParseUpdateExpense applies create rules to whichever fields are present.
func ParseUpdateExpense(in ExpenseInput) (models.UpdateExpenseRequest, error) {
	fields := apperr.FieldErrors{}
	var req models.UpdateExpenseRequest

	if present(in.Amount) {
		if amount, ok := parseAmount(in.Amount, fields); ok {
			req.Amount = &amount
		}
	}
	if present(in.Description) {
		if desc, ok := parseDescription(in.Description, fields); ok {
			req.Description = &desc
		}
	}
	if present(in.Category) {
		if category, ok := parseCategory(in.Category, fields); ok {
			req.Category = &category
		}
	}

	if !fields.Empty() {
		return models.UpdateExpenseRequest{}, apperr.Validation(fields)
	}
	return req, nil
}

func ParseExpenseFilter(query url.Values) (models.ExpenseFilter, error) {
	fields := apperr.FieldErrors{}
	var filter models.ExpenseFilter

	if raw := query.Get("category"); raw != "" {
		if c, err := models.ParseCategory(raw); err != nil {
			fields.Add("category", "Invalid category")
		} else {
			filter.Category = &c
		}
	}
	if raw := query.Get("startDate"); raw != "" {
		if d, ok := parseDate("startDate", raw, fields); ok {
			from := models.StartOfDay(d)
			filter.From = &from
		}
	}
	if raw := query.Get("endDate"); raw != "" {
		if d, ok := parseDate("endDate", raw, fields); ok {
			to := models.EndOfDay(d)
			filter.To = &to
		}
	}

	if !fields.Empty() {
		return models.ExpenseFilter{}, apperr.Validation(fields)
	}
	return filter, nil
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// parseAmount accepts a JSON number or a numeric string and rounds half away from
// zero to two places. The rounded value must be positive and no larger than
// models.MaxAmount.
func parseAmount(raw json.RawMessage, fields apperr.FieldErrors) (decimal.Decimal, bool) {
	if !present(raw) || isNull(raw) {
		fields.Add("amount", "Amount is required")
		return decimal.Decimal{}, false
	}

	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			fields.Add("amount", "Amount must be a number")
			return decimal.Decimal{}, false
		}
		text = strings.TrimSpace(s)
	}
	if len(text) > amountMaxTextLen {
		fields.Add("amount", "Amount has too many digits")
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		fields.Add("amount", "Amount must be a number")
		return decimal.Decimal{}, false
	}
	if !d.IsPositive() {
		fields.Add("amount", "Amount must be a positive number")
		return decimal.Decimal{}, false
	}

	switch exp := d.Exponent(); {
	case exp > amountMaxExponent:
		fields.Add("amount", "Amount is too large")
		return decimal.Decimal{}, false
	case exp < amountMinExponent:
		fields.Add("amount", "Amount has too many digits")
		return decimal.Decimal{}, false
	}

	rounded := models.RoundAmount(d)
	if !rounded.IsPositive() {
		fields.Add("amount", "Amount must be a positive number")
		return decimal.Decimal{}, false
	}
	if rounded.GreaterThan(models.MaxAmount) {
		fields.Add("amount", "Amount is too large")
		return decimal.Decimal{}, false
	}

	return rounded, true
}

func parseDescription(raw json.RawMessage, fields apperr.FieldErrors) (string, bool) {
	if !present(raw) || isNull(raw) {
		fields.Add("description", "Description is required")
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		fields.Add("description", "Description must be a string")
		return "", false
	}

	switch n := utf8.RuneCountInString(s); {
	case n < 1:
		fields.Add("description", "Description is required")
		return "", false
	case n > descriptionMaxLen:
		fields.Add("description", "Description cannot exceed 255 characters")
		return "", false
	}

	return s, true
}

func parseCategory(raw json.RawMessage, fields apperr.FieldErrors) (models.Category, bool) {
	var s string
	if !present(raw) || isNull(raw) || json.Unmarshal(raw, &s) != nil {
		fields.Add("category", "Invalid category")
		return "", false
	}

	c, err := models.ParseCategory(s)
	if err != nil {
		fields.Add("category", "Invalid category")
		return "", false
	}
	return c, true
}

func parseDate(field, raw string, fields apperr.FieldErrors) (time.Time, bool) {
	if !dateRegex.MatchString(raw) {
		fields.Add(field, "Invalid date format (YYYY-MM-DD)")
		return time.Time{}, false
	}

	d, err := time.ParseInLocation(models.DateLayout, raw, time.UTC)
	if err != nil {
		fields.Add(field, "Invalid date")
		return time.Time{}, false
	}
	return d, true
}
