package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/finance-tracker/internal/models"
	"github.com/hongminglow/finance-tracker/internal/storage"
)

const expenseColumns = `e.id, e.category_id, e.amount::text, e.date, e.user_id, e.description, c.name, c.image`

// CreateExpense inserts an expense and returns it joined with its category.
func (s *Store) CreateExpense(ctx context.Context, expense models.Expense) (models.Expense, error) {
	const query = `
		WITH e AS (
			INSERT INTO expenses (category_id, amount, date, user_id, description)
			VALUES ($1, $2::text::numeric, $3, $4, $5)
			RETURNING id, category_id, amount, date, user_id, description
		)
		SELECT ` + expenseColumns + `
		FROM e
		LEFT JOIN categories c ON c.id = e.category_id`
	var created models.Expense
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		var err error
		created, err = scanExpense(conn.QueryRow(ctx, query,
			expense.CategoryID, expense.Amount.StringFixed(2), expense.Date.Time, expense.UserID, expense.Description))
		return err
	})
	if err != nil {
		return models.Expense{}, translate(err, storage.ErrInvalidReference)
	}
	return created, nil
}

// ListExpenses returns the expenses matching filter, newest first.
func (s *Store) ListExpenses(ctx context.Context, filter storage.ExpenseFilter) ([]models.Expense, error) {
	where, args := filter.Predicate(dialect)
	query := `SELECT ` + expenseColumns + `
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id` + where + `
		ORDER BY e.date DESC, e.id DESC`

	expenses := []models.Expense{}
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			e, err := scanExpense(rows)
			if err != nil {
				return err
			}
			expenses = append(expenses, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// UpdateExpense replaces category, amount, date and description. The owner
// is never rewritten.
func (s *Store) UpdateExpense(ctx context.Context, expense models.Expense, ownerID int64) error {
	query := `UPDATE expenses
		SET category_id = $2, amount = $3::text::numeric, date = $4, description = $5
		WHERE id = $1`
	args := []any{expense.ID, expense.CategoryID, expense.Amount.StringFixed(2), expense.Date.Time, expense.Description}
	if ownerID > 0 {
		query += ` AND user_id = $6`
		args = append(args, ownerID)
	}
	return s.withConn(ctx, func(conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, query, args...)
		if err != nil {
			return translate(err, storage.ErrInvalidReference)
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}

// DeleteExpense removes an expense by id.
func (s *Store) DeleteExpense(ctx context.Context, id, ownerID int64) error {
	query := `DELETE FROM expenses WHERE id = $1`
	args := []any{id}
	if ownerID > 0 {
		query += ` AND user_id = $2`
		args = append(args, ownerID)
	}
	return s.withConn(ctx, func(conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}

func scanExpense(row pgx.Row) (models.Expense, error) {
	var (
		e      models.Expense
		amount string
		date   time.Time
	)
	if err := row.Scan(&e.ID, &e.CategoryID, &amount, &date, &e.UserID, &e.Description, &e.Name, &e.CategoryImageURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Expense{}, storage.ErrNotFound
		}
		return models.Expense{}, err
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return models.Expense{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	e.Amount = parsed
	e.Date = models.NewDate(date)
	return e, nil
}
