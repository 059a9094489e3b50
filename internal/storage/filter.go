package storage

import (
	"strings"

	"github.com/hongminglow/finance-tracker/internal/models"
)

// ExpenseFilter narrows ListExpenses. Nil fields are ignored and the
// remaining ones are combined with AND; an empty filter matches every row.
type ExpenseFilter struct {
	Date       *models.Date
	CategoryID *int64
	UserID     *int64
}

// IsEmpty reports whether no field is set.
func (f ExpenseFilter) IsEmpty() bool {
	return f.Date == nil && f.CategoryID == nil && f.UserID == nil
}

// Dialect adapts predicate rendering to a SQL backend.
type Dialect struct {
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
	// DateArg converts a date into the driver value stored in expenses.date.
	DateArg func(d models.Date) any
}

// Predicate renders the filter as a parameterized WHERE clause over the
// expenses table aliased as e. It returns an empty string when the filter
// is empty.
func (f ExpenseFilter) Predicate(d Dialect) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(column string, arg any) {
		args = append(args, arg)
		conds = append(conds, column+" = "+d.Placeholder(len(args)))
	}
	if f.Date != nil {
		add("e.date", d.DateArg(*f.Date))
	}
	if f.CategoryID != nil {
		add("e.category_id", *f.CategoryID)
	}
	if f.UserID != nil {
		add("e.user_id", *f.UserID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
