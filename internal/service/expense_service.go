package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync/atomic"
	"time"

	"github.com/Varun5711/expense-tracker/internal/apperr"
	"github.com/Varun5711/expense-tracker/internal/logger"
	"github.com/Varun5711/expense-tracker/internal/models"
	"github.com/Varun5711/expense-tracker/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	msgExpenseNotFound = "Expense not found"
	msgNotOwner        = "You do not have permission to access this resource"
	msgOwnerGone       = "User no longer exists"
)

// ErrSequenceConsumed is yielded when a List result is ranged over a second time.
var ErrSequenceConsumed = errors.New("expense sequence already consumed")

type ExpenseService struct {
	expenses storage.ExpenseStore
	users    storage.UserStore
	now      func() time.Time
	log      *logger.Logger
}

func NewExpenseService(expenses storage.ExpenseStore, users storage.UserStore, log *logger.Logger) *ExpenseService {
	return &ExpenseService{
		expenses: expenses,
		users:    users,
		now:      time.Now,
		log:      log,
	}
}

// timestamp is the current time as the stores persist it.
func (s *ExpenseService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// normalizeAmount rounds to the stored scale and checks the result still fits
// in (0, models.MaxAmount].
func normalizeAmount(d decimal.Decimal) (decimal.Decimal, error) {
	amount := models.RoundAmount(d)
	fields := apperr.FieldErrors{}
	switch {
	case !amount.IsPositive():
		fields.Add("amount", "Amount must be a positive number")
	case amount.GreaterThan(models.MaxAmount):
		fields.Add("amount", "Amount is too large")
	default:
		return amount, nil
	}
	return decimal.Decimal{}, apperr.Validation(fields)
}

func (s *ExpenseService) Create(ctx context.Context, ownerID string, req models.CreateExpenseRequest) (*models.Expense, error) {
	amount, err := normalizeAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.GetUserByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve expense owner: %w", err)
	}
	if owner == nil {
		return nil, apperr.Unauthorized(msgOwnerGone)
	}

	now := s.timestamp()
	expense := &models.Expense{
		ID:          uuid.New().String(),
		UserID:      owner.ID,
		Amount:      amount,
		Description: req.Description,
		Category:    req.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.expenses.CreateExpense(ctx, expense); err != nil {
		if errors.Is(err, storage.ErrUnknownOwner) {
			return nil, apperr.Unauthorized(msgOwnerGone)
		}
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.log.WithFields(logger.Fields{"user_id": owner.ID, "expense_id": expense.ID}).Debug("Created expense")

	return expense, nil
}

// List returns the owner's expenses, newest first. The query runs when the
// sequence is ranged, and the sequence can be ranged only once.
func (s *ExpenseService) List(ctx context.Context, ownerID string, filter models.ExpenseFilter) iter.Seq2[models.Expense, error] {
	return singleUse(s.expenses.ListExpenses(ctx, ownerID, filter))
}

func singleUse(seq iter.Seq2[models.Expense, error]) iter.Seq2[models.Expense, error] {
	var consumed atomic.Bool
	return func(yield func(models.Expense, error) bool) {
		if consumed.Swap(true) {
			yield(models.Expense{}, ErrSequenceConsumed)
			return
		}
		for expense, err := range seq {
			if !yield(expense, err) {
				return
			}
		}
	}
}

func (s *ExpenseService) FindOne(ctx context.Context, id, ownerID string) (*models.Expense, error) {
	return s.owned(ctx, id, ownerID)
}

func (s *ExpenseService) Update(ctx context.Context, id, ownerID string, req models.UpdateExpenseRequest) (*models.Expense, error) {
	current, err := s.owned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if req.Empty() {
		return current, nil
	}

	if req.Amount != nil {
		amount, err := normalizeAmount(*req.Amount)
		if err != nil {
			return nil, err
		}
		req.Amount = &amount
	}

	updated, err := s.expenses.UpdateExpense(ctx, current.ID, req, s.timestamp())
	if err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	if updated == nil {
		// removed between the ownership check and the write
		return nil, apperr.NotFound(msgExpenseNotFound)
	}

	return updated, nil
}

func (s *ExpenseService) Remove(ctx context.Context, id, ownerID string) error {
	current, err := s.owned(ctx, id, ownerID)
	if err != nil {
		return err
	}

	deleted, err := s.expenses.DeleteExpense(ctx, current.ID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if !deleted {
		return apperr.NotFound(msgExpenseNotFound)
	}

	s.log.WithFields(logger.Fields{"user_id": ownerID, "expense_id": current.ID}).Debug("Deleted expense")

	return nil
}

// owned loads an expense and checks it belongs to ownerID. Existence is
// checked before ownership.
func (s *ExpenseService) owned(ctx context.Context, id, ownerID string) (*models.Expense, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound(msgExpenseNotFound)
	}

	expense, err := s.expenses.GetExpense(ctx, parsed.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load expense: %w", err)
	}
	if expense == nil {
		return nil, apperr.NotFound(msgExpenseNotFound)
	}
	if expense.UserID != ownerID {
		return nil, apperr.Forbidden(msgNotOwner)
	}

	return expense, nil
}
