package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/finance-tracker/internal/models"
)

// ExpenseRequest is the body of POST /api/expenses and PUT /api/expenses/{id}.
// ID is only meaningful on update, where it must match the path.
type ExpenseRequest struct {
	ID          int64           `json:"id"`
	CategoryID  int64           `json:"categoryId"`
	Amount      decimal.Decimal `json:"amount"`
	Date        models.Date     `json:"date"`
	UserID      int64           `json:"userId"`
	Description *string         `json:"description"`
}

// Expense converts the request into the persisted shape.
func (r ExpenseRequest) Expense() models.Expense {
	return models.Expense{
		ID:          r.ID,
		CategoryID:  r.CategoryID,
		Amount:      r.Amount,
		Date:        r.Date,
		UserID:      r.UserID,
		Description: r.Description,
	}
}

type CategoryTotal struct {
	CategoryID int64           `json:"categoryId"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
}

// Summary is the dashboard aggregate for one user. Months holds the
// per-month totals of Year; the other fields cover every expense.
type Summary struct {
	Year          int                 `json:"year"`
	Total         decimal.Decimal     `json:"total"`
	Count         int                 `json:"count"`
	CategoryCount int                 `json:"categoryCount"`
	Months        [12]decimal.Decimal `json:"months"`
	Categories    []CategoryTotal     `json:"categories"`
}

// MarshalJSON writes Amount as a JSON number.
func (r ExpenseRequest) MarshalJSON() ([]byte, error) {
	type plain ExpenseRequest
	return json.Marshal(struct {
		plain
		Amount json.Number `json:"amount"`
	}{plain(r), models.Number(r.Amount)})
}

// MarshalJSON writes Total as a JSON number.
func (c CategoryTotal) MarshalJSON() ([]byte, error) {
	type plain CategoryTotal
	return json.Marshal(struct {
		plain
		Total json.Number `json:"total"`
	}{plain(c), models.Number(c.Total)})
}

// MarshalJSON writes Total and Months as JSON numbers.
func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	var months [12]json.Number
	for i, m := range s.Months {
		months[i] = models.Number(m)
	}
	return json.Marshal(struct {
		plain
		Total  json.Number     `json:"total"`
		Months [12]json.Number `json:"months"`
	}{plain(s), models.Number(s.Total), months})
}
