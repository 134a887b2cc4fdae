package storage

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/Varun5711/expense-tracker/internal/models"
	usermodel "github.com/Varun5711/expense-tracker/internal/models/user"
)

var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrUnknownOwner      = errors.New("expense owner does not exist")
)

// Lookups return (nil, nil) when nothing matches; errors are store faults.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*usermodel.User, error)
	GetUserByID(ctx context.Context, userID string) (*usermodel.User, error)
	GetUserByUsername(ctx context.Context, username string) (*usermodel.User, error)
	FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*usermodel.User, error)
}

type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, id string) (*models.Expense, error)
	// ListExpenses runs its query when ranged, newest first.
	ListExpenses(ctx context.Context, userID string, filter models.ExpenseFilter) iter.Seq2[models.Expense, error]
	// UpdateExpense replaces only the supplied fields and returns nil if the row is gone.
	UpdateExpense(ctx context.Context, id string, req models.UpdateExpenseRequest, updatedAt time.Time) (*models.Expense, error)
	DeleteExpense(ctx context.Context, id string) (bool, error)
}

type Store interface {
	UserStore
	ExpenseStore
	Ping(ctx context.Context) error
	Close() error
}
