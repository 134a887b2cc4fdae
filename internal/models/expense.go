package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryGroceries   Category = "GROCERIES"
	CategoryLeisure     Category = "LEISURE"
	CategoryElectronics Category = "ELECTRONICS"
	CategoryUtilities   Category = "UTILITIES"
	CategoryClothing    Category = "CLOTHING"
	CategoryHealth      Category = "HEALTH"
	CategoryOthers      Category = "OTHERS"
)

// Categories lists every accepted category in display order. Create, update and
// filter inputs all validate against this list.
var Categories = []Category{
	CategoryGroceries,
	CategoryLeisure,
	CategoryElectronics,
	CategoryUtilities,
	CategoryClothing,
	CategoryHealth,
	CategoryOthers,
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// AmountScale is the number of fraction digits kept for every stored amount.
const AmountScale = 2

// MaxAmount is the largest amount the NUMERIC(12,2) column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// RoundAmount rounds half away from zero, so 10.005 becomes 10.01.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountScale)
}

type Expense struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MarshalJSON renders amount with exactly two fraction digits ("10.00", not "10").
func (e Expense) MarshalJSON() ([]byte, error) {
	type alias Expense
	return json.Marshal(struct {
		alias
		Amount string `json:"amount"`
	}{
		alias:  alias(e),
		Amount: e.Amount.StringFixed(AmountScale),
	})
}

type CreateExpenseRequest struct {
	Amount      decimal.Decimal
	Description string
	Category    Category
}

// UpdateExpenseRequest holds only the fields the caller supplied; nil means unchanged.
type UpdateExpenseRequest struct {
	Amount      *decimal.Decimal
	Description *string
	Category    *Category
}

func (r UpdateExpenseRequest) Empty() bool {
	return r.Amount == nil && r.Description == nil && r.Category == nil
}

// ExpenseFilter bounds are inclusive.
type ExpenseFilter struct {
	Category *Category
	From     *time.Time
	To       *time.Time
}

const DateLayout = "2006-01-02"

// StartOfDay returns 00:00:00 UTC of the given date.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last representable instant of the given date in UTC.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

type MessageResponse struct {
	Message string `json:"message"`
}
