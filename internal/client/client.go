// Package client talks to the finance tracker HTTP API and provides the
// list views used by the command-line front end.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hongminglow/finance-tracker/internal/models"
	"github.com/hongminglow/finance-tracker/internal/models/dto"
)

// ErrConnect wraps transport failures; the server was never reached.
var ErrConnect = errors.New("failed to connect to server")

// APIError is a non-2xx answer from the server. Message is the server's
// own text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Filter narrows an expense listing. Nil fields are not sent.
type Filter struct {
	Date       *models.Date
	CategoryID *int64
}

// Client is a thin JSON client for the API.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

// New returns a client for baseURL. A nil httpClient gets a 15s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		now:     time.Now,
	}
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, fullName, email, password string) (dto.UserSummary, error) {
	var out dto.UserSummary
	err := c.do(ctx, http.MethodPost, "/api/auth/register", nil,
		dto.RegisterRequest{FullName: fullName, Email: email, Password: password}, &out)
	return out, err
}

// Login exchanges credentials for a session. The token lifetime is taken
// from the token itself when readable, otherwise one hour from now.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var resp dto.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil,
		dto.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return Session{}, err
	}
	expires, ok := tokenExpiry(resp.Token)
	if !ok {
		expires = c.now().Add(time.Hour)
	}
	return Session{
		Token:     resp.Token,
		UserID:    resp.UserID,
		FullName:  resp.FullName,
		Email:     resp.Email,
		ExpiresAt: expires,
	}, nil
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &out)
	return out, err
}

// Expenses lists the session user's expenses.
func (c *Client) Expenses(ctx context.Context, s *Session, f Filter) ([]models.Expense, error) {
	q := url.Values{}
	q.Set("userId", strconv.FormatInt(s.UserID, 10))
	if f.Date != nil {
		q.Set("date", f.Date.String())
	}
	if f.CategoryID != nil {
		q.Set("categoryId", strconv.FormatInt(*f.CategoryID, 10))
	}
	var out []models.Expense
	err := c.do(ctx, http.MethodGet, "/api/expenses?"+q.Encode(), s, nil, &out)
	return out, err
}

// CreateExpense stores e for the session user and returns the saved row.
func (c *Client) CreateExpense(ctx context.Context, s *Session, e models.Expense) (models.Expense, error) {
	req := expenseRequest(e)
	req.ID = 0
	req.UserID = s.UserID
	var out models.Expense
	err := c.do(ctx, http.MethodPost, "/api/expenses", s, req, &out)
	return out, err
}

func (c *Client) UpdateExpense(ctx context.Context, s *Session, e models.Expense) error {
	req := expenseRequest(e)
	req.UserID = s.UserID
	return c.do(ctx, http.MethodPut, "/api/expenses/"+strconv.FormatInt(e.ID, 10), s, req, nil)
}

func (c *Client) DeleteExpense(ctx context.Context, s *Session, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/expenses/"+strconv.FormatInt(id, 10), s, nil, nil)
}

// Summary fetches the server-side dashboard aggregate for year.
func (c *Client) Summary(ctx context.Context, s *Session, year int) (dto.Summary, error) {
	var out dto.Summary
	err := c.do(ctx, http.MethodGet, "/api/expenses/summary?year="+strconv.Itoa(year), s, nil, &out)
	return out, err
}

func expenseRequest(e models.Expense) dto.ExpenseRequest {
	return dto.ExpenseRequest{
		ID:          e.ID,
		CategoryID:  e.CategoryID,
		Amount:      e.Amount,
		Date:        e.Date,
		UserID:      e.UserID,
		Description: e.Description,
	}
}

func (c *Client) do(ctx context.Context, method, path string, s *Session, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s != nil {
		if !s.Valid(c.now()) {
			return ErrNoSession
		}
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnect, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Message string `json:"message"`
	}
	msg := ""
	if json.Unmarshal(raw, &body) == nil {
		msg = body.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// tokenExpiry reads the exp claim without verifying the signature; the
// client cannot and need not check it, the server does.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
