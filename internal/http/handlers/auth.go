package handlers

import (
	"net/http"

	"github.com/hongminglow/finance-tracker/internal/http/respond"
	applog "github.com/hongminglow/finance-tracker/internal/log"
	"github.com/hongminglow/finance-tracker/internal/models/dto"
	"github.com/hongminglow/finance-tracker/internal/service"
)

// AuthHandler owns the register/login endpoints.
type AuthHandler struct {
	errorWriter
	auth *service.AuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(auth *service.AuthService, exposeErrors bool) *AuthHandler {
	return &AuthHandler{errorWriter: errorWriter{exposeErrors: exposeErrors, component: applog.ComponentAuth}, auth: auth}
}

// Register attaches auth routes to the mux. Registration is reachable
// under both the auth and users prefixes.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/users/register", h.handleRegister)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.auth.Register(r.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger(r).Info("user registered",
		applog.FieldOperation, applog.OpRegister, applog.FieldUserID, user.ID)
	respond.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if service.KindOf(err) == service.KindAuth {
			h.logger(r).Info("login rejected",
				applog.FieldOperation, applog.OpLogin, applog.FieldError, err)
		}
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}
