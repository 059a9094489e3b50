package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterThenLogin(t *testing.T) {
	store := newStore(t)
	tokens := newTokens()
	svc := NewAuthService(store, tokens)
	ctx := context.Background()

	user, err := svc.Register(ctx, "  Grace Hopper ", " grace@example.com ", "s3cret-pass")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "Grace Hopper", user.FullName)
	assert.Equal(t, "grace@example.com", user.Email)

	stored, err := store.FindUserByEmail(ctx, "grace@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.NotContains(t, stored.PasswordHash, "s3cret-pass")

	resp, err := svc.Login(ctx, "grace@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.UserID)
	assert.Equal(t, "Grace Hopper", resp.FullName)

	session, err := tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, "grace@example.com", session.Email)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(newStore(t), newTokens())
	ctx := context.Background()

	_, err := svc.Register(ctx, "No Email", "", "pw")
	requireKind(t, err, KindValidation)
	_, err = svc.Register(ctx, "No Password", "np@example.com", "")
	requireKind(t, err, KindValidation)

	// Any non-blank address is accepted, as on update.
	_, err = svc.Register(ctx, "Handle Only", "plain-handle", "pw")
	require.NoError(t, err)
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	store := newStore(t)
	svc := NewAuthService(store, newTokens())
	ctx := context.Background()

	_, err := svc.Register(ctx, "First", "dup@example.com", "pw-one")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Second", "dup@example.com", "pw-two")
	requireKind(t, err, KindConflict)
	assert.Contains(t, err.Error(), "email already registered")

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "First", users[0].FullName)
}

func TestEmailsIgnoreCase(t *testing.T) {
	store := newStore(t)
	svc := NewAuthService(store, newTokens())
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@example.com", "secret1")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Ana Again", "ANA@example.com", "secret2")
	requireKind(t, err, KindConflict)

	resp, err := svc.Login(ctx, "Ana@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", resp.Email)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestLoginFailuresAreDistinct(t *testing.T) {
	svc := NewAuthService(newStore(t), newTokens())
	ctx := context.Background()
	_, err := svc.Register(ctx, "Known", "known@example.com", "right")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "", "right")
	requireKind(t, err, KindValidation)
	_, err = svc.Login(ctx, "known@example.com", "")
	requireKind(t, err, KindValidation)

	_, missing := svc.Login(ctx, "ghost@example.com", "right")
	requireKind(t, missing, KindAuth)
	_, wrong := svc.Login(ctx, "known@example.com", "wrong")
	requireKind(t, wrong, KindAuth)

	assert.Equal(t, "email not found", missing.Error())
	assert.Equal(t, "incorrect password", wrong.Error())
}
