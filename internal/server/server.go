package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hongminglow/finance-tracker/internal/auth"
	"github.com/hongminglow/finance-tracker/internal/config"
	"github.com/hongminglow/finance-tracker/internal/http/handlers"
	applog "github.com/hongminglow/finance-tracker/internal/log"
	"github.com/hongminglow/finance-tracker/internal/middleware"
	"github.com/hongminglow/finance-tracker/internal/service"
	"github.com/hongminglow/finance-tracker/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner  *http.Server
	logger *applog.Logger
}

// New wires up services, middleware and routes, and returns a ready server.
func New(cfg config.Config, store storage.Store, logger *applog.Logger) *Server {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL)
	guard := func(next http.Handler) http.Handler { return middleware.RequireAuth(tokens, next) }

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), store).Register(mux)
	handlers.NewAuthHandler(service.NewAuthService(store, tokens), cfg.ExposeErrors).Register(mux)
	handlers.NewCategoryHandler(service.NewCategoryService(store), cfg.ExposeErrors).Register(mux)
	handlers.NewUserHandler(service.NewUserService(store), cfg.ExposeErrors).Register(mux, guard)
	handlers.NewExpenseHandler(service.NewExpenseService(store, store), cfg.ExposeErrors).Register(mux, guard)

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(logger, mux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer, logger: logger}
}

// Handler exposes the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("finance tracker listening",
		applog.FieldOperation, applog.OpStartup, "addr", s.inner.Addr)
	if err := s.inner.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down", applog.FieldOperation, applog.OpShutdown)
	return s.inner.Shutdown(ctx)
}
