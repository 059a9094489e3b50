package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Expense is a single spending record owned by exactly one user.
// Name and CategoryImageURL are joined from the category on reads.
type Expense struct {
	ID               int64           `json:"id"`
	CategoryID       int64           `json:"categoryId"`
	Amount           decimal.Decimal `json:"amount"`
	Date             Date            `json:"date"`
	UserID           int64           `json:"userId"`
	Description      *string         `json:"description"`
	CategoryImageURL *string         `json:"categoryImageUrl"`
	Name             *string         `json:"name"`
}

// MarshalJSON writes Amount as a JSON number.
func (e Expense) MarshalJSON() ([]byte, error) {
	type plain Expense
	return json.Marshal(struct {
		plain
		Amount json.Number `json:"amount"`
	}{plain(e), Number(e.Amount)})
}

// Number renders d as a JSON number literal.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// CategoryName returns the joined category name, or "Unknown" when the
// category row is missing.
func (e Expense) CategoryName() string {
	if e.Name == nil || *e.Name == "" {
		return "Unknown"
	}
	return *e.Name
}
