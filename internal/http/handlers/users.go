package handlers

import (
	"net/http"

	"github.com/hongminglow/finance-tracker/internal/auth"
	"github.com/hongminglow/finance-tracker/internal/http/respond"
	applog "github.com/hongminglow/finance-tracker/internal/log"
	"github.com/hongminglow/finance-tracker/internal/models/dto"
	"github.com/hongminglow/finance-tracker/internal/service"
)

// UserHandler exposes generic user CRUD. Every route needs a session.
type UserHandler struct {
	errorWriter
	users *service.UserService
}

func NewUserHandler(users *service.UserService, exposeErrors bool) *UserHandler {
	return &UserHandler{errorWriter: errorWriter{exposeErrors: exposeErrors, component: applog.ComponentUser}, users: users}
}

func (h *UserHandler) Register(mux *http.ServeMux, guard Guard) {
	mux.Handle("GET /api/users", guard(http.HandlerFunc(h.handleList)))
	mux.Handle("POST /api/users", guard(http.HandlerFunc(h.handleCreate)))
	mux.Handle("GET /api/users/{id}", guard(http.HandlerFunc(h.handleGet)))
	mux.Handle("PUT /api/users/{id}", guard(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("DELETE /api/users/{id}", guard(http.HandlerFunc(h.handleDelete)))
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]dto.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, dto.UserSummary{ID: u.ID, FullName: u.FullName, Email: u.Email})
	}
	h.logger(r).Debug("users listed", applog.FieldOperation, applog.OpList, "count", len(out))
	respond.JSON(w, http.StatusOK, out)
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger(r).Debug("user read", applog.FieldOperation, applog.OpRead, "target_id", user.ID)
	respond.JSON(w, http.StatusOK, dto.UserSummary{ID: user.ID, FullName: user.FullName, Email: user.Email})
}

func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.UserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.users.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger(r).Info("user created",
		applog.FieldOperation, applog.OpCreate, "created_id", user.ID)
	respond.JSON(w, http.StatusCreated, user)
}

func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.UserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	session, _ := auth.SessionFromContext(r.Context())
	if err := h.users.Update(r.Context(), session, id, req); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	session, _ := auth.SessionFromContext(r.Context())
	if err := h.users.Delete(r.Context(), session, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger(r).Info("user deleted", applog.FieldOperation, applog.OpDelete)
	respond.NoContent(w)
}
