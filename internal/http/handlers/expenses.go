package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hongminglow/finance-tracker/internal/auth"
	"github.com/hongminglow/finance-tracker/internal/http/respond"
	applog "github.com/hongminglow/finance-tracker/internal/log"
	"github.com/hongminglow/finance-tracker/internal/models"
	"github.com/hongminglow/finance-tracker/internal/models/dto"
	"github.com/hongminglow/finance-tracker/internal/service"
	"github.com/hongminglow/finance-tracker/internal/storage"
)

// ExpenseHandler exposes expense CRUD and the yearly summary.
type ExpenseHandler struct {
	errorWriter
	expenses *service.ExpenseService
}

func NewExpenseHandler(expenses *service.ExpenseService, exposeErrors bool) *ExpenseHandler {
	return &ExpenseHandler{errorWriter: errorWriter{exposeErrors: exposeErrors, component: applog.ComponentExpense}, expenses: expenses}
}

func (h *ExpenseHandler) Register(mux *http.ServeMux, guard Guard) {
	mux.Handle("POST /api/expenses", guard(http.HandlerFunc(h.handleCreate)))
	mux.Handle("GET /api/expenses", guard(http.HandlerFunc(h.handleList)))
	mux.Handle("GET /api/expenses/summary", guard(http.HandlerFunc(h.handleSummary)))
	mux.Handle("PUT /api/expenses/{id}", guard(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("DELETE /api/expenses/{id}", guard(http.HandlerFunc(h.handleDelete)))
}

func (h *ExpenseHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.ExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, _ := auth.SessionFromContext(r.Context())
	expense, err := h.expenses.Create(r.Context(), session, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger(r).Info("expense created",
		applog.FieldOperation, applog.OpCreate, applog.FieldExpenseID, expense.ID)
	respond.JSON(w, http.StatusCreated, expense)
}

func (h *ExpenseHandler) handleList(w http.ResponseWriter, r *http.Request) {
	filter, msg := parseFilter(r)
	if msg != "" {
		respond.Error(w, http.StatusBadRequest, msg)
		return
	}
	session, _ := auth.SessionFromContext(r.Context())
	expenses, err := h.expenses.List(r.Context(), session, filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger(r).Debug("expenses listed",
		applog.FieldOperation, applog.OpList, "count", len(expenses))
	respond.JSON(w, http.StatusOK, expenses)
}

func (h *ExpenseHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.ExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, _ := auth.SessionFromContext(r.Context())
	if err := h.expenses.Update(r.Context(), session, id, req); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger(r).Info("expense updated",
		applog.FieldOperation, applog.OpUpdate, applog.FieldExpenseID, id)
	respond.NoContent(w)
}

func (h *ExpenseHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	session, _ := auth.SessionFromContext(r.Context())
	if err := h.expenses.Delete(r.Context(), session, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger(r).Info("expense deleted",
		applog.FieldOperation, applog.OpDelete, applog.FieldExpenseID, id)
	respond.NoContent(w)
}

func (h *ExpenseHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if raw := strings.TrimSpace(r.URL.Query().Get("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 9999 {
			respond.Error(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = parsed
	}
	session, _ := auth.SessionFromContext(r.Context())
	summary, err := h.expenses.Summary(r.Context(), session, year)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger(r).Debug("summary computed",
		applog.FieldOperation, applog.OpSummary, "year", year, "count", summary.Count)
	respond.JSON(w, http.StatusOK, summary)
}

// parseFilter reads the optional date, categoryId and userId query
// parameters. A non-empty message reports the first malformed value.
func parseFilter(r *http.Request) (storage.ExpenseFilter, string) {
	var filter storage.ExpenseFilter
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			return filter, "invalid date"
		}
		filter.Date = &d
	}
	if raw := strings.TrimSpace(q.Get("categoryId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, "invalid categoryId"
		}
		filter.CategoryID = &id
	}
	if raw := strings.TrimSpace(q.Get("userId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, "invalid userId"
		}
		filter.UserID = &id
	}
	return filter, ""
}
