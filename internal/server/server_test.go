package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/finance-tracker/internal/config"
	applog "github.com/hongminglow/finance-tracker/internal/log"
	"github.com/hongminglow/finance-tracker/internal/storage/sqlite"
)

type harness struct {
	t       *testing.T
	handler http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := sqlite.NewStore(context.Background(), filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := config.Config{
		Port:        "0",
		DBDriver:    config.DriverSQLite,
		JWTSecret:   "integration-secret-0123456789",
		JWTIssuer:   "finance-tracker",
		JWTAudience: "finance-tracker-client",
		JWTTTL:      time.Hour,
		CORSOrigins: []string{"http://localhost:3000"},
	}
	logger := applog.New(applog.Config{Level: "error", Output: io.Discard})
	return &harness{t: t, handler: New(cfg, store, logger).Handler()}
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			encoded, err := json.Marshal(body)
			require.NoError(h.t, err)
			raw = string(encoded)
		}
		reader = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) login(fullName, email, password string) (int64, string) {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"fullName": fullName, "email": email, "password": password,
	})
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token  string `json:"token"`
		UserID int64  `json:"userId"`
	}
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(h.t, resp.Token)
	return resp.UserID, resp.Token
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRegisterAndLoginFlow(t *testing.T) {
	h := newHarness(t)
	h.login("Ana Pop", "ana@example.com", "secret1")

	rec := h.do(http.MethodPost, "/api/users/register", "", map[string]string{
		"fullName": "Ana Again", "email": "ana@example.com", "password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email already registered", message(t, rec))

	rec = h.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "email not found", message(t, rec))

	rec = h.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ana@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "incorrect password", message(t, rec))

	rec = h.do(http.MethodPost, "/api/auth/login", "", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON payload", message(t, rec))
}

func TestRegisteredUserHasNoPasswordInResponse(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"fullName": "Ana", "email": "ana@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$")
}

func TestExpenseRoutesRequireToken(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/api/expenses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing bearer token", message(t, rec))

	rec = h.do(http.MethodGet, "/api/expenses", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid or expired token", message(t, rec))
}

func TestCategoriesArePublic(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var categories []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	require.NotEmpty(t, categories)
	assert.Equal(t, "Food", categories[0]["name"])
}

func TestExpenseLifecycle(t *testing.T) {
	h := newHarness(t)
	userID, token := h.login("Ana", "ana@example.com", "secret1")

	rec := h.do(http.MethodPost, "/api/expenses", token, map[string]any{
		"categoryId": 1, "amount": 12.5, "date": "2024-03-10", "userId": userID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID     int64   `json:"id"`
		Amount float64 `json:"amount"`
		Name   string  `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Positive(t, created.ID)
	assert.Equal(t, 12.5, created.Amount)

	rec = h.do(http.MethodGet, "/api/expenses?date=2024-03-10&categoryId=1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Date string `json:"date"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Food", listed[0].Name)
	assert.Equal(t, "2024-03-10", listed[0].Date)

	rec = h.do(http.MethodGet, "/api/expenses?categoryId=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = h.do(http.MethodGet, "/api/expenses?date=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid date", message(t, rec))

	update := map[string]any{
		"id": created.ID, "categoryId": 2, "amount": 20, "date": "2024-03-11", "userId": userID,
	}
	path := "/api/expenses/" + itoa(created.ID)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodPut, path, token, update).Code)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodPut, path, token, update).Code)

	rec = h.do(http.MethodPut, "/api/expenses/999", token, update)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "expense id mismatch", message(t, rec))

	rec = h.do(http.MethodDelete, "/api/expenses/999", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, path, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, path, token, nil).Code)
}

func TestOtherUsersExpensesAreHidden(t *testing.T) {
	h := newHarness(t)
	anaID, anaToken := h.login("Ana", "ana@example.com", "secret1")
	_, bobToken := h.login("Bob", "bob@example.com", "secret2")

	rec := h.do(http.MethodPost, "/api/expenses", anaToken, map[string]any{
		"categoryId": 1, "amount": 5, "date": "2024-01-02", "userId": anaID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(http.MethodGet, "/api/expenses?userId="+itoa(anaID), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodGet, "/api/expenses", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = h.do(http.MethodPost, "/api/expenses", bobToken, map[string]any{
		"categoryId": 1, "amount": 5, "date": "2024-01-02", "userId": anaID,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSummaryEndpoint(t *testing.T) {
	h := newHarness(t)
	userID, token := h.login("Ana", "ana@example.com", "secret1")
	for _, e := range []map[string]any{
		{"categoryId": 1, "amount": 10, "date": "2024-01-15", "userId": userID},
		{"categoryId": 1, "amount": 5.25, "date": "2024-02-01", "userId": userID},
		{"categoryId": 2, "amount": 3, "date": "2023-12-31", "userId": userID},
	} {
		require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/expenses", token, e).Code)
	}

	rec := h.do(http.MethodGet, "/api/expenses/summary?year=2024", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var summary struct {
		Year          int       `json:"year"`
		Total         float64   `json:"total"`
		Count         int       `json:"count"`
		CategoryCount int       `json:"categoryCount"`
		Months        []float64 `json:"months"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2024, summary.Year)
	assert.Equal(t, 18.25, summary.Total)
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, 2, summary.CategoryCount)
	require.Len(t, summary.Months, 12)
	assert.Equal(t, 10.0, summary.Months[0])
	assert.Equal(t, 5.25, summary.Months[1])

	rec = h.do(http.MethodGet, "/api/expenses/summary?year=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserRoutes(t *testing.T) {
	h := newHarness(t)
	anaID, anaToken := h.login("Ana", "ana@example.com", "secret1")
	bobID, _ := h.login("Bob", "bob@example.com", "secret2")

	rec := h.do(http.MethodGet, "/api/users", anaToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = h.do(http.MethodGet, "/api/users/"+itoa(bobID), anaToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bob@example.com")

	rec = h.do(http.MethodGet, "/api/users/424242", anaToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodPut, "/api/users/"+itoa(bobID), anaToken, map[string]string{"fullName": "X", "email": "x@example.com"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodPut, "/api/users/"+itoa(anaID), anaToken, map[string]string{"fullName": "Ana P", "email": "ana@example.com"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(http.MethodGet, "/api/users/abc", anaToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/api/users/"+itoa(anaID), anaToken, nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/expenses", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
