package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/hongminglow/finance-tracker/internal/config"
	applog "github.com/hongminglow/finance-tracker/internal/log"
	"github.com/hongminglow/finance-tracker/internal/server"
	"github.com/hongminglow/finance-tracker/internal/storage"
	"github.com/hongminglow/finance-tracker/internal/storage/postgres"
	"github.com/hongminglow/finance-tracker/internal/storage/sqlite"
)

func main() {
	envLoaded := godotenv.Load() == nil

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := applog.New(applog.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Component: applog.ComponentApp})
	applog.SetDefault(logger)
	if !envLoaded {
		logger.Info("no .env file found; relying on existing environment")
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", applog.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *applog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer store.Close()
	logger.Info("database ready", "driver", cfg.DBDriver)

	srv := server.New(cfg, store, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.DBDriver == config.DriverSQLite {
		return sqlite.NewStore(ctx, cfg.SQLitePath)
	}
	return postgres.NewStore(ctx, cfg.DatabaseURL)
}
