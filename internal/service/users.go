package service

import (
	"context"
	"errors"
	"strings"

	"github.com/hongminglow/finance-tracker/internal/auth"
	"github.com/hongminglow/finance-tracker/internal/models"
	"github.com/hongminglow/finance-tracker/internal/models/dto"
	"github.com/hongminglow/finance-tracker/internal/storage"
)

// UserService backs the generic /api/users endpoints.
type UserService struct {
	users storage.UserStore
}

func NewUserService(users storage.UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, Internal("failed to retrieve users", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (models.User, error) {
	user, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, NotFound("user not found")
		}
		return models.User{}, Internal("failed to retrieve user", err)
	}
	return user, nil
}

func (s *UserService) Create(ctx context.Context, req dto.UserRequest) (dto.UserSummary, error) {
	user, err := newUser(req.FullName, req.Email, req.Password)
	if err != nil {
		return dto.UserSummary{}, err
	}
	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return dto.UserSummary{}, Conflict("email already registered")
		}
		return dto.UserSummary{}, Internal("failed to create user", err)
	}
	return summarize(created), nil
}

// Update replaces the caller's own name and email, and the password when
// one is supplied.
func (s *UserService) Update(ctx context.Context, session auth.Session, id int64, req dto.UserRequest) error {
	if id != session.UserID {
		return Forbidden("cannot modify another user")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return Validation("email is required")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	current.FullName = strings.TrimSpace(req.FullName)
	current.Email = email
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrPasswordTooLong) {
				return Validation("password must be at most 72 bytes")
			}
			return Internal("failed to hash password", err)
		}
		current.PasswordHash = hash
	}
	switch err := s.users.UpdateUser(ctx, current); {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return NotFound("user not found")
	case errors.Is(err, storage.ErrAlreadyExists):
		return Conflict("email already registered")
	default:
		return Internal("failed to update user", err)
	}
}

// Delete removes the caller's own account once it owns no expenses.
func (s *UserService) Delete(ctx context.Context, session auth.Session, id int64) error {
	if id != session.UserID {
		return Forbidden("cannot delete another user")
	}
	switch err := s.users.DeleteUser(ctx, id); {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return NotFound("user not found")
	case errors.Is(err, storage.ErrReferenced):
		return Conflict("user still has expenses")
	default:
		return Internal("failed to delete user", err)
	}
}
