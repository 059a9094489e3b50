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

// AuthService handles registration and login.
type AuthService struct {
	users  storage.UserStore
	tokens *auth.TokenManager
}

// NewAuthService constructs the service.
func NewAuthService(users storage.UserStore, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a user with a bcrypt-hashed password. Email uniqueness
// is decided by the store's unique index alone.
func (s *AuthService) Register(ctx context.Context, fullName, email, password string) (dto.UserSummary, error) {
	user, err := newUser(fullName, email, password)
	if err != nil {
		return dto.UserSummary{}, err
	}
	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return dto.UserSummary{}, Conflict("email already registered")
		}
		return dto.UserSummary{}, Internal("registration failed", err)
	}
	return summarize(created), nil
}

// Login verifies credentials and issues a one-hour token.
//
// Unknown emails and wrong passwords are reported with different messages.
func (s *AuthService) Login(ctx context.Context, email, password string) (dto.LoginResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return dto.LoginResponse{}, Validation("email and password are required")
	}
	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return dto.LoginResponse{}, Unauthorized("email not found")
		}
		return dto.LoginResponse{}, Internal("login failed", err)
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return dto.LoginResponse{}, Unauthorized("incorrect password")
	}
	token, _, err := s.tokens.Generate(user)
	if err != nil {
		return dto.LoginResponse{}, Internal("login failed", err)
	}
	return dto.LoginResponse{
		Token:    token,
		UserID:   user.ID,
		FullName: user.FullName,
		Email:    user.Email,
	}, nil
}

func newUser(fullName, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.User{}, Validation("email and password are required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return models.User{}, Validation("password must be at most 72 bytes")
		}
		return models.User{}, Internal("failed to hash password", err)
	}
	return models.User{
		FullName:     strings.TrimSpace(fullName),
		Email:        email,
		PasswordHash: hash,
	}, nil
}

func summarize(u models.User) dto.UserSummary {
	return dto.UserSummary{ID: u.ID, FullName: u.FullName, Email: u.Email}
}
