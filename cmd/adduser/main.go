package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hongminglow/finance-tracker/internal/config"
	"github.com/hongminglow/finance-tracker/internal/models/dto"
	"github.com/hongminglow/finance-tracker/internal/prompt"
	"github.com/hongminglow/finance-tracker/internal/service"
	"github.com/hongminglow/finance-tracker/internal/storage"
	"github.com/hongminglow/finance-tracker/internal/storage/postgres"
	"github.com/hongminglow/finance-tracker/internal/storage/sqlite"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "Email address")
	name := fs.String("name", "", "Full name")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	driver := fs.String("driver", envOr("DB_DRIVER", config.DriverSQLite), "Database driver: sqlite or postgres")
	dbPath := fs.String("db", envOr("SQLITE_PATH", "./data/finance.db"), "SQLite database path")
	dbURL := fs.String("database-url", os.Getenv("DATABASE_URL"), "Postgres connection URL")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -email <email> [-name <full name>] [-password <password>] [-driver sqlite|postgres] [-db <path>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: email")
	}

	password := *passwordFlag
	if password == "" {
		var err error
		password, err = prompt.Password(stdin, stdout, "Password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := openStore(ctx, *driver, *dbPath, *dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	users := service.NewUserService(store)
	user, err := users.Create(ctx, dto.UserRequest{FullName: *name, Email: *email, Password: password})
	if err != nil {
		if service.KindOf(err) == service.KindConflict {
			return fmt.Errorf("user %s already exists", *email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", user.Email, user.ID)
	return nil
}

func openStore(ctx context.Context, driver, path, url string) (storage.Store, error) {
	switch driver {
	case config.DriverSQLite:
		return sqlite.NewStore(ctx, path)
	case config.DriverPostgres:
		if url == "" {
			return nil, errors.New("-database-url is required for postgres")
		}
		return postgres.NewStore(ctx, url)
	default:
		return nil, fmt.Errorf("unknown driver %q", driver)
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
