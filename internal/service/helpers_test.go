package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hongminglow/finance-tracker/internal/auth"
	"github.com/hongminglow/finance-tracker/internal/models"
	"github.com/hongminglow/finance-tracker/internal/storage"
	"github.com/hongminglow/finance-tracker/internal/storage/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewStore(context.Background(), filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTokens() *auth.TokenManager {
	return auth.NewTokenManager("test-secret-test-secret-test-secret", "finance-tracker", "finance-tracker-client", time.Hour)
}

func requireKind(t *testing.T, err error, want Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, KindOf(err), "unexpected error kind for %v", err)
}

func date(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// countingStore records whether any expense write reached storage.
type countingStore struct {
	storage.ExpenseStore
	updates int
}

func (c *countingStore) UpdateExpense(ctx context.Context, e models.Expense, ownerID int64) error {
	c.updates++
	return c.ExpenseStore.UpdateExpense(ctx, e, ownerID)
}
