package handlers

import (
	"context"
	"iter"
	"net/http"

	"github.com/Varun5711/expense-tracker/internal/apperr"
	"github.com/Varun5711/expense-tracker/internal/logger"
	"github.com/Varun5711/expense-tracker/internal/middleware"
	"github.com/Varun5711/expense-tracker/internal/models"
	"github.com/Varun5711/expense-tracker/internal/respond"
	"github.com/Varun5711/expense-tracker/internal/validation"
	"github.com/gorilla/mux"
)

type ExpenseService interface {
	Create(ctx context.Context, ownerID string, req models.CreateExpenseRequest) (*models.Expense, error)
	List(ctx context.Context, ownerID string, filter models.ExpenseFilter) iter.Seq2[models.Expense, error]
	FindOne(ctx context.Context, id, ownerID string) (*models.Expense, error)
	Update(ctx context.Context, id, ownerID string, req models.UpdateExpenseRequest) (*models.Expense, error)
	Remove(ctx context.Context, id, ownerID string) error
}

type ExpenseHandler struct {
	expenses ExpenseService
	log      *logger.Logger
}

func NewExpenseHandler(expenses ExpenseService, log *logger.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenses: expenses,
		log:      log,
	}
}

func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(r)
	if !ok {
		respond.Error(w, r, h.log, apperr.Unauthorized("Authorization header required"))
		return
	}

	var in validation.ExpenseInput
	if err := decodeBody(r, &in); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	req, err := validation.ParseCreateExpense(in)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	expense, err := h.expenses.Create(r.Context(), ownerID, req)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	respond.JSON(w, http.StatusCreated, expense)
}

func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(r)
	if !ok {
		respond.Error(w, r, h.log, apperr.Unauthorized("Authorization header required"))
		return
	}

	filter, err := validation.ParseExpenseFilter(r.URL.Query())
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	expenses := []models.Expense{}
	for expense, err := range h.expenses.List(r.Context(), ownerID, filter) {
		if err != nil {
			respond.Error(w, r, h.log, err)
			return
		}
		expenses = append(expenses, expense)
	}

	respond.JSON(w, http.StatusOK, expenses)
}

func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(r)
	if !ok {
		respond.Error(w, r, h.log, apperr.Unauthorized("Authorization header required"))
		return
	}

	expense, err := h.expenses.FindOne(r.Context(), mux.Vars(r)["id"], ownerID)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	respond.JSON(w, http.StatusOK, expense)
}

func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(r)
	if !ok {
		respond.Error(w, r, h.log, apperr.Unauthorized("Authorization header required"))
		return
	}

	var in validation.ExpenseInput
	if err := decodeBody(r, &in); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	req, err := validation.ParseUpdateExpense(in)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	expense, err := h.expenses.Update(r.Context(), mux.Vars(r)["id"], ownerID, req)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	respond.JSON(w, http.StatusOK, expense)
}

func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(r)
	if !ok {
		respond.Error(w, r, h.log, apperr.Unauthorized("Authorization header required"))
		return
	}

	if err := h.expenses.Remove(r.Context(), mux.Vars(r)["id"], ownerID); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	respond.JSON(w, http.StatusOK, models.MessageResponse{Message: "Expense deleted successfully"})
}

func callerID(r *http.Request) (string, bool) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok || identity.ID == "" {
		return "", false
	}
	return identity.ID, true
}
