package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/finance-tracker/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrInvalidReference indicates a foreign key points at a missing row.
var ErrInvalidReference = errors.New("referenced record does not exist")

// ErrReferenced indicates a row cannot be removed while other rows point at it.
var ErrReferenced = errors.New("record is still referenced")

// UserStore captures persistence operations for user identities.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByID(ctx context.Context, id int64) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

// ExpenseStore captures persistence operations for expenses.
//
// UpdateExpense and DeleteExpense only match rows owned by ownerID when it is
// positive; both return ErrNotFound when no row matched.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense models.Expense) (models.Expense, error)
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]models.Expense, error)
	UpdateExpense(ctx context.Context, expense models.Expense, ownerID int64) error
	DeleteExpense(ctx context.Context, id, ownerID int64) error
}

// CategoryStore lists the seeded categories.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// Store is the full persistence surface a backend provides.
type Store interface {
	UserStore
	ExpenseStore
	CategoryStore
	Ping(ctx context.Context) error
	Close() error
}
