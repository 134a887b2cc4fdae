package storage

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/Varun5711/expense-tracker/internal/database"
	"github.com/Varun5711/expense-tracker/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const (
	pgForeignKeyViolation = "23503"

	expenseColumns = "id, user_id, amount, description, category, created_at, updated_at"
)

type PostgresStorage struct {
	*UserStorage
	db *database.DBManager
}

func NewPostgresStorage(db *database.DBManager) *PostgresStorage {
	return &PostgresStorage{
		UserStorage: NewUserStorage(db),
		db:          db,
	}
}

func (s *PostgresStorage) CreateExpense(ctx context.Context, e *models.Expense) error {
	query := `
		INSERT INTO expenses (id, user_id, amount, description, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.Write().Exec(ctx, query,
		e.ID,
		e.UserID,
		e.Amount.StringFixed(models.AmountScale),
		e.Description,
		string(e.Category),
		e.CreatedAt,
		e.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return ErrUnknownOwner
		}
		return fmt.Errorf("failed to save expense: %w", err)
	}

	return nil
}

// GetExpense reads from the primary because its result gates updates and deletes.
func (s *PostgresStorage) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	e, err := scanPgExpense(s.db.Write().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return e, nil
}

func (s *PostgresStorage) ListExpenses(ctx context.Context, userID string, filter models.ExpenseFilter) iter.Seq2[models.Expense, error] {
	query, args := expenseListQuery(expenseColumns, userID, filter, dollarPlaceholder, func(t time.Time) any { return t })

	return func(yield func(models.Expense, error) bool) {
		rows, err := s.db.Read().Query(ctx, query, args...)
		if err != nil {
			yield(models.Expense{}, fmt.Errorf("failed to list expenses: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			e, err := scanPgExpense(rows)
			if err != nil {
				yield(models.Expense{}, fmt.Errorf("failed to scan row: %w", err))
				return
			}
			if !yield(*e, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(models.Expense{}, fmt.Errorf("error iterating rows: %w", err))
		}
	}
}

func (s *PostgresStorage) UpdateExpense(ctx context.Context, id string, req models.UpdateExpenseRequest, updatedAt time.Time) (*models.Expense, error) {
	var amount, description, category *string
	if req.Amount != nil {
		v := req.Amount.StringFixed(models.AmountScale)
		amount = &v
	}
	if req.Description != nil {
		description = req.Description
	}
	if req.Category != nil {
		v := string(*req.Category)
		category = &v
	}

	query := `
		UPDATE expenses
		SET amount = COALESCE($2::numeric, amount),
			description = COALESCE($3::varchar, description),
			category = COALESCE($4::varchar, category),
			updated_at = $5
		WHERE id = $1
		RETURNING ` + expenseColumns

	e, err := scanPgExpense(s.db.Write().QueryRow(ctx, query, id, amount, description, category, updatedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	return e, nil
}

func (s *PostgresStorage) DeleteExpense(ctx context.Context, id string) (bool, error) {
	cmdTag, err := s.db.Write().Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete expense: %w", err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStorage) Close() error {
	s.db.Close()
	return nil
}

func scanPgExpense(row pgx.Row) (*models.Expense, error) {
	var (
		e        models.Expense
		amount   pgtype.Numeric
		category string
	)

	err := row.Scan(
		&e.ID,
		&e.UserID,
		&amount,
		&e.Description,
		&category,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if !amount.Valid || amount.NaN || amount.Int == nil {
		return nil, fmt.Errorf("expense %s has no numeric amount", e.ID)
	}
	e.Amount = decimal.NewFromBigInt(amount.Int, amount.Exp)
	e.Category = models.Category(category)
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()

	return &e, nil
}
