package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/finance-tracker/internal/models"
	"github.com/hongminglow/finance-tracker/internal/storage"
)

const userColumns = `id, full_name, email, password, created_at`

// CreateUser inserts a new user row. The unique email index turns a
// duplicate into storage.ErrAlreadyExists.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (full_name, email, password)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns
	var created models.User
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		var err error
		created, err = scanUser(conn.QueryRow(ctx, query, user.FullName, user.Email, user.PasswordHash))
		return err
	})
	if err != nil {
		return models.User{}, translate(err, storage.ErrInvalidReference)
	}
	return created, nil
}

// FindUserByID fetches a user by primary key.
func (s *Store) FindUserByID(ctx context.Context, id int64) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var user models.User
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		var err error
		user, err = scanUser(conn.QueryRow(ctx, query, id))
		return err
	})
	return user, err
}

// FindUserByEmail fetches a user by email address, ignoring case.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	var user models.User
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		var err error
		user, err = scanUser(conn.QueryRow(ctx, query, email))
		return err
	})
	return user, err
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY id`
	users := []models.User{}
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, query)
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
	const query = `UPDATE users SET full_name = $2, email = $3, password = $4 WHERE id = $1`
	return s.withConn(ctx, func(conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, query, user.ID, user.FullName, user.Email, user.PasswordHash)
		if err != nil {
			return translate(err, storage.ErrInvalidReference)
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}

// DeleteUser removes a user. Users that still own expenses are rejected
// with storage.ErrReferenced.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.withConn(ctx, func(conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return translate(err, storage.ErrReferenced)
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.FullName, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
