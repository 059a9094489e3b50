package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hongminglow/finance-tracker/internal/models"
	"github.com/hongminglow/finance-tracker/internal/storage"
)

const userColumns = `id, full_name, email, password, created_at`

type scanner interface {
	Scan(dest ...any) error
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	var created models.User
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx,
			`INSERT INTO users (full_name, email, password) VALUES (?, ?, ?)`,
			user.FullName, user.Email, user.PasswordHash)
		if err != nil {
			return translate(err, storage.ErrInvalidReference)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		created, err = scanUser(conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
		return err
	})
	if err != nil {
		return models.User{}, err
	}
	return created, nil
}

// FindUserByID fetches a user by primary key.
func (s *Store) FindUserByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		user, err = scanUser(conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
		return err
	})
	return user, err
}

// FindUserByEmail fetches a user by email address. The column collates
// NOCASE, so the match ignores case.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		user, err = scanUser(conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
		return err
	})
	return user, err
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			user, err := scanUser(rows)
			if err != nil {
				return err
			}
			users = append(users, user)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUser replaces name, email and password hash of an existing user.
func (s *Store) UpdateUser(ctx context.Context, user models.User) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx,
			`UPDATE users SET full_name = ?, email = ?, password = ? WHERE id = ?`,
			user.FullName, user.Email, user.PasswordHash, user.ID)
		if err != nil {
			return translate(err, storage.ErrInvalidReference)
		}
		return affected(res)
	})
}

// DeleteUser removes a user that owns no expenses.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return translate(err, storage.ErrReferenced)
		}
		return affected(res)
	})
}

func scanUser(row scanner) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.FullName, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
