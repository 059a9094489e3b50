package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/finance-tracker/internal/auth"
	"github.com/hongminglow/finance-tracker/internal/models"
	"github.com/hongminglow/finance-tracker/internal/models/dto"
	"github.com/hongminglow/finance-tracker/internal/storage"
)

// maxAmount is the first value that no longer fits NUMERIC(12,2).
var maxAmount = decimal.New(1, 10)

// ExpenseService applies validation and ownership rules on top of the
// expense store. Every method takes the caller's session explicitly.
type ExpenseService struct {
	expenses   storage.ExpenseStore
	categories storage.CategoryStore
}

func NewExpenseService(expenses storage.ExpenseStore, categories storage.CategoryStore) *ExpenseService {
	return &ExpenseService{expenses: expenses, categories: categories}
}

// Create stores a new expense for the session user.
func (s *ExpenseService) Create(ctx context.Context, session auth.Session, req dto.ExpenseRequest) (models.Expense, error) {
	if req.UserID <= 0 {
		return models.Expense{}, Validation("invalid or missing userId")
	}
	if req.UserID != session.UserID {
		return models.Expense{}, Forbidden("cannot create expenses for another user")
	}
	expense, err := normalize(req.Expense())
	if err != nil {
		return models.Expense{}, err
	}
	expense.ID = 0

	created, err := s.expenses.CreateExpense(ctx, expense)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidReference) {
			return models.Expense{}, Validation("unknown category or user")
		}
		return models.Expense{}, Internal("failed to create expense", err)
	}
	return created, nil
}

// List returns the session user's expenses narrowed by filter. A filter on
// a different user is rejected; a missing or non-positive userId means the
// session user.
func (s *ExpenseService) List(ctx context.Context, session auth.Session, filter storage.ExpenseFilter) ([]models.Expense, error) {
	switch {
	case filter.UserID == nil || *filter.UserID <= 0:
		uid := session.UserID
		filter.UserID = &uid
	case *filter.UserID != session.UserID:
		return nil, Forbidden("cannot list another user's expenses")
	}
	expenses, err := s.expenses.ListExpenses(ctx, filter)
	if err != nil {
		return nil, Internal("failed to retrieve expenses", err)
	}
	return expenses, nil
}

// Update fully replaces category, amount, date and description of an
// expense owned by the session user. The owner itself cannot change.
func (s *ExpenseService) Update(ctx context.Context, session auth.Session, id int64, req dto.ExpenseRequest) error {
	if id != req.ID {
		return Conflict("expense id mismatch")
	}
	expense, err := normalize(req.Expense())
	if err != nil {
		return err
	}
	switch err := s.expenses.UpdateExpense(ctx, expense, session.UserID); {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return NotFound("expense not found")
	case errors.Is(err, storage.ErrInvalidReference):
		return Validation("unknown category")
	default:
		return Internal("failed to update expense", err)
	}
}

// Delete removes an expense owned by the session user.
func (s *ExpenseService) Delete(ctx context.Context, session auth.Session, id int64) error {
	switch err := s.expenses.DeleteExpense(ctx, id, session.UserID); {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return NotFound("expense not found")
	default:
		return Internal("failed to delete expense", err)
	}
}

// normalize rounds the amount to cents, truncates the date and checks the
// fields shared by create and update.
func normalize(e models.Expense) (models.Expense, error) {
	if e.CategoryID <= 0 {
		return e, Validation("categoryId is required")
	}
	e.Amount = e.Amount.Round(2)
	if !e.Amount.IsPositive() {
		return e, Validation("amount must be positive")
	}
	if e.Amount.GreaterThanOrEqual(maxAmount) {
		return e, Validation("amount is too large")
	}
	if e.Date.IsZero() {
		return e, Validation("date is required")
	}
	e.Date = models.NewDate(e.Date.Time)
	return e, nil
}
