package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/Varun5711/expense-tracker/internal/models"
	usermodel "github.com/Varun5711/expense-tracker/internal/models/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SQLiteStorage backs local development and tests. Timestamps are unix
// microseconds and amounts are fixed two-digit decimal text.
type SQLiteStorage struct {
	conn *sql.DB
}

func NewSQLiteStorage(conn *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{conn: conn}
}

const userColumns = "id, username, email, password_hash, created_at, updated_at"

func (s *SQLiteStorage) CreateUser(ctx context.Context, username, email, passwordHash string) (*usermodel.User, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := &usermodel.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.conn.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		user.ID, user.Username, user.Email, user.PasswordHash, now.UnixMicro(), now.UnixMicro(),
	)
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "UNIQUE constraint failed: users.username"):
			return nil, ErrDuplicateUsername
		case strings.Contains(msg, "UNIQUE constraint failed: users.email"):
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *SQLiteStorage) GetUserByID(ctx context.Context, userID string) (*usermodel.User, error) {
	return s.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", userID)
}

func (s *SQLiteStorage) GetUserByUsername(ctx context.Context, username string) (*usermodel.User, error) {
	return s.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
}

func (s *SQLiteStorage) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*usermodel.User, error) {
	return s.getUser(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ? OR email = ? ORDER BY (username = ?) DESC LIMIT 1",
		username, email, username,
	)
}

func (s *SQLiteStorage) getUser(ctx context.Context, query string, args ...any) (*usermodel.User, error) {
	var (
		u                    usermodel.User
		createdAt, updatedAt int64
	)
	err := s.conn.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.CreatedAt = fromMicros(createdAt)
	u.UpdatedAt = fromMicros(updatedAt)
	return &u, nil
}

func (s *SQLiteStorage) CreateExpense(ctx context.Context, e *models.Expense) error {
	_, err := s.conn.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		e.ID,
		e.UserID,
		e.Amount.StringFixed(models.AmountScale),
		e.Description,
		string(e.Category),
		e.CreatedAt.UnixMicro(),
		e.UpdatedAt.UnixMicro(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return ErrUnknownOwner
		}
		return fmt.Errorf("failed to save expense: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	e, err := scanSQLiteExpense(s.conn.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

func (s *SQLiteStorage) ListExpenses(ctx context.Context, userID string, filter models.ExpenseFilter) iter.Seq2[models.Expense, error] {
	query, args := expenseListQuery(expenseColumns, userID, filter, questionPlaceholder, func(t time.Time) any {
		return t.UnixMicro()
	})

	return func(yield func(models.Expense, error) bool) {
		rows, err := s.conn.QueryContext(ctx, query, args...)
		if err != nil {
			yield(models.Expense{}, fmt.Errorf("failed to list expenses: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			e, err := scanSQLiteExpense(rows)
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

func (s *SQLiteStorage) UpdateExpense(ctx context.Context, id string, req models.UpdateExpenseRequest, updatedAt time.Time) (*models.Expense, error) {
	var amount, description, category any
	if req.Amount != nil {
		amount = req.Amount.StringFixed(models.AmountScale)
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Category != nil {
		category = string(*req.Category)
	}

	res, err := s.conn.ExecContext(ctx, `
		UPDATE expenses
		SET amount = COALESCE(?, amount),
			description = COALESCE(?, description),
			category = COALESCE(?, category),
			updated_at = ?
		WHERE id = ?`,
		amount, description, category, updatedAt.UnixMicro(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	return s.GetExpense(ctx, id)
}

func (s *SQLiteStorage) DeleteExpense(ctx context.Context, id string) (bool, error) {
	res, err := s.conn.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete expense: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete expense: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

func (s *SQLiteStorage) Close() error {
	return s.conn.Close()
}

type sqlRow interface {
	Scan(dest ...any) error
}

func scanSQLiteExpense(row sqlRow) (*models.Expense, error) {
	var (
		e                    models.Expense
		amount, category     string
		createdAt, updatedAt int64
	)

	if err := row.Scan(&e.ID, &e.UserID, &amount, &e.Description, &category, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("expense %s has malformed amount %q: %w", e.ID, amount, err)
	}

	e.Amount = d
	e.Category = models.Category(category)
	e.CreatedAt = fromMicros(createdAt)
	e.UpdatedAt = fromMicros(updatedAt)
	return &e, nil
}

func fromMicros(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}
