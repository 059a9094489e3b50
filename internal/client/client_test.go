package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/finance-tracker/internal/config"
	applog "github.com/hongminglow/finance-tracker/internal/log"
	"github.com/hongminglow/finance-tracker/internal/models"
	"github.com/hongminglow/finance-tracker/internal/server"
	"github.com/hongminglow/finance-tracker/internal/storage/sqlite"
)

func newAPI(t *testing.T) *Client {
	t.Helper()
	store, err := sqlite.NewStore(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := config.Config{
		Port:        "0",
		JWTSecret:   "client-test-secret-0123456789",
		JWTIssuer:   "finance-tracker",
		JWTAudience: "finance-tracker-client",
		JWTTTL:      time.Hour,
		CORSOrigins: []string{"*"},
	}
	srv := server.New(cfg, store, applog.New(applog.Config{Level: "error", Output: io.Discard}))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL+"/", ts.Client())
}

func signIn(t *testing.T, c *Client, email string) Session {
	t.Helper()
	ctx := context.Background()
	_, err := c.Register(ctx, "Test User", email, "secret1")
	require.NoError(t, err)
	s, err := c.Login(ctx, email, "secret1")
	require.NoError(t, err)
	return s
}

func TestLoginBuildsSession(t *testing.T) {
	c := newAPI(t)
	before := time.Now()
	s := signIn(t, c, "ana@example.com")

	assert.NotEmpty(t, s.Token)
	assert.Positive(t, s.UserID)
	assert.Equal(t, "ana@example.com", s.Email)
	assert.True(t, s.Valid(time.Now()))
	assert.WithinDuration(t, before.Add(time.Hour), s.ExpiresAt, 5*time.Second)
}

func TestServerMessagesSurfaceVerbatim(t *testing.T) {
	c := newAPI(t)
	signIn(t, c, "ana@example.com")

	_, err := c.Login(context.Background(), "ana@example.com", "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "incorrect password", apiErr.Message)

	_, err = c.Register(context.Background(), "Again", "ana@example.com", "x")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "email already registered", apiErr.Message)
}

func TestConnectFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := New(url, nil).Categories(context.Background())
	assert.ErrorIs(t, err, ErrConnect)
}

func TestExpiredSessionIsRejectedLocally(t *testing.T) {
	c := newAPI(t)
	s := Session{Token: "x", UserID: 1, ExpiresAt: time.Now().Add(-time.Minute)}
	_, err := c.Expenses(context.Background(), &s, Filter{})
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestExpenseRoundTrip(t *testing.T) {
	c := newAPI(t)
	ctx := context.Background()
	s := signIn(t, c, "ana@example.com")

	categories, err := c.Categories(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, categories)

	day, _ := models.ParseDate("2024-03-10")
	created, err := c.CreateExpense(ctx, &s, models.Expense{
		CategoryID: categories[0].ID,
		Amount:     decimal.RequireFromString("12.50"),
		Date:       day,
	})
	require.NoError(t, err)
	assert.Equal(t, s.UserID, created.UserID)
	assert.Equal(t, "Food", created.CategoryName())

	list, err := c.Expenses(ctx, &s, Filter{Date: &day})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Amount.Equal(decimal.RequireFromString("12.5")))

	created.Amount = decimal.NewFromInt(20)
	require.NoError(t, c.UpdateExpense(ctx, &s, created))

	summary, err := c.Summary(ctx, &s, 2024)
	require.NoError(t, err)
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(20)))
	assert.True(t, summary.Months[2].Equal(decimal.NewFromInt(20)))

	require.NoError(t, c.DeleteExpense(ctx, &s, created.ID))
	err = c.DeleteExpense(ctx, &s, created.ID)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}
