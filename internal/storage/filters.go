package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/Varun5711/expense-tracker/internal/models"
)

// expenseListQuery builds the owner-scoped list query. placeholder renders the n-th
// bind parameter for the dialect; timeArg converts filter bounds to column values.
func expenseListQuery(columns, userID string, filter models.ExpenseFilter, placeholder func(int) string, timeArg func(time.Time) any) (string, []any) {
	args := []any{userID}
	conds := []string{"user_id = " + placeholder(1)}

	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		conds = append(conds, "category = "+placeholder(len(args)))
	}
	if filter.From != nil {
		args = append(args, timeArg(*filter.From))
		conds = append(conds, "created_at >= "+placeholder(len(args)))
	}
	if filter.To != nil {
		args = append(args, timeArg(*filter.To))
		conds = append(conds, "created_at <= "+placeholder(len(args)))
	}

	query := fmt.Sprintf(
		"SELECT %s FROM expenses WHERE %s ORDER BY created_at DESC, id DESC",
		columns, strings.Join(conds, " AND "),
	)
	return query, args
}

func dollarPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func questionPlaceholder(int) string {
	return "?"
}
