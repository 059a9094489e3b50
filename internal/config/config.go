package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	minSecretLength = 16
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port         string
	DBDriver     string
	DatabaseURL  string
	SQLitePath   string
	JWTSecret    string
	JWTIssuer    string
	JWTAudience  string
	JWTTTL       time.Duration
	CORSOrigins  []string
	LogLevel     string
	LogFormat    string
	ExposeErrors bool
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	cfg := FromEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv builds a Config using getenv for lookups, applying defaults.
func FromEnv(getenv func(string) string) Config {
	cfg := Config{
		Port:        fallback(getenv("PORT"), "8080"),
		DBDriver:    strings.ToLower(fallback(getenv("DB_DRIVER"), DriverPostgres)),
		DatabaseURL: strings.TrimSpace(getenv("DATABASE_URL")),
		SQLitePath:  fallback(getenv("SQLITE_PATH"), "./data/finance.db"),
		JWTSecret:   strings.TrimSpace(getenv("JWT_SECRET")),
		JWTIssuer:   fallback(getenv("JWT_ISSUER"), "finance-tracker"),
		JWTAudience: fallback(getenv("JWT_AUDIENCE"), "finance-tracker-client"),
		CORSOrigins: parseCSV(fallback(getenv("CORS_ALLOWED_ORIGINS"), "http://localhost:3000")),
		LogLevel:    fallback(getenv("LOG_LEVEL"), "info"),
		LogFormat:   fallback(getenv("LOG_FORMAT"), "text"),
	}

	minutes := fallback(getenv("JWT_TTL_MINUTES"), "60")
	if ttlMinutes, err := strconv.Atoi(minutes); err == nil && ttlMinutes > 0 {
		cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute
	} else {
		cfg.JWTTTL = 60 * time.Minute
	}

	if expose, err := strconv.ParseBool(fallback(getenv("EXPOSE_ERRORS"), "false")); err == nil {
		cfg.ExposeErrors = expose
	}
	return cfg
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DB_DRIVER=postgres"))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required when DB_DRIVER=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DBDriver))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength))
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a valid TCP port, got %q", c.Port))
	}
	return errors.Join(errs...)
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
