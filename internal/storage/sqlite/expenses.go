package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/finance-tracker/internal/models"
	"github.com/hongminglow/finance-tracker/internal/storage"
)

const expenseSelect = `SELECT e.id, e.category_id, e.amount, e.date, e.user_id, e.description, c.name, c.image
	FROM expenses e
	LEFT JOIN categories c ON c.id = e.category_id`

// CreateExpense inserts an expense and returns it joined with its category.
func (s *Store) CreateExpense(ctx context.Context, expense models.Expense) (models.Expense, error) {
	var created models.Expense
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx,
			`INSERT INTO expenses (category_id, amount, date, user_id, description) VALUES (?, ?, ?, ?, ?)`,
			expense.CategoryID, expense.Amount.StringFixed(2), expense.Date.String(), expense.UserID, expense.Description)
		if err != nil {
			return translate(err, storage.ErrInvalidReference)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		created, err = scanExpense(conn.QueryRowContext(ctx, expenseSelect+` WHERE e.id = ?`, id))
		return err
	})
	if err != nil {
		return models.Expense{}, err
	}
	return created, nil
}

// ListExpenses returns the expenses matching filter, newest first.
func (s *Store) ListExpenses(ctx context.Context, filter storage.ExpenseFilter) ([]models.Expense, error) {
	where, args := filter.Predicate(dialect)
	query := expenseSelect + where + ` ORDER BY e.date DESC, e.id DESC`

	expenses := []models.Expense{}
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
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
	query := `UPDATE expenses SET category_id = ?, amount = ?, date = ?, description = ? WHERE id = ?`
	args := []any{expense.CategoryID, expense.Amount.StringFixed(2), expense.Date.String(), expense.Description, expense.ID}
	if ownerID > 0 {
		query += ` AND user_id = ?`
		args = append(args, ownerID)
	}
	return s.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			return translate(err, storage.ErrInvalidReference)
		}
		return affected(res)
	})
}

// DeleteExpense removes an expense by id.
func (s *Store) DeleteExpense(ctx context.Context, id, ownerID int64) error {
	query := `DELETE FROM expenses WHERE id = ?`
	args := []any{id}
	if ownerID > 0 {
		query += ` AND user_id = ?`
		args = append(args, ownerID)
	}
	return s.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		return affected(res)
	})
}

func scanExpense(row scanner) (models.Expense, error) {
	var (
		e           models.Expense
		amount      string
		date        string
		description sql.NullString
		name        sql.NullString
		image       sql.NullString
	)
	if err := row.Scan(&e.ID, &e.CategoryID, &amount, &date, &e.UserID, &description, &name, &image); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Expense{}, storage.ErrNotFound
		}
		return models.Expense{}, err
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return models.Expense{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	d, err := models.ParseDate(date)
	if err != nil {
		return models.Expense{}, err
	}
	e.Amount = parsed
	e.Date = d
	e.Description = nullable(description)
	e.Name = nullable(name)
	e.CategoryImageURL = nullable(image)
	return e, nil
}
