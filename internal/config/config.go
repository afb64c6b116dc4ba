// Package config handles environment configuration and the YAML job document.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// CRMConfig holds connection parameters for the CRM data platform.
type CRMConfig struct {
	BaseURL string        // CRM API base URL
	Token   string        // bearer token for the CRM session
	Timeout time.Duration // per-request timeout (default 30s)
}

// Config holds the service configuration loaded from the environment.
// Target connection parameters live in the job document, not here; only
// credentials and service-level settings come from the environment.
type Config struct {
	HistoryDBPath string // path to the SQLite run-history file
	JobsFile      string // path to the YAML job document
	ListenAddr    string // HTTP listen address (default ":8080")
	LogLevel      string // debug, info, warn, error (default "info")
	Env           string // "development" (default) or "production"
	JWTSecret     string // HS256 shared secret for API auth

	CRM CRMConfig

	// Bearer tokens per BI target kind.
	DashboardToken string
	WorkspaceToken string

	// Rate limiting for the HTTP surface.
	RateLimitRPS   float64
	RateLimitBurst int

	// CORS
	CORSAllowedOrigins []string

	// Warnings collects non-fatal findings from config loading. They are
	// logged by the caller once the logger exists.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables, applying
// development-friendly defaults. Insecure defaults are fatal in production.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		HistoryDBPath:  os.Getenv("HISTORY_DB_PATH"),
		JobsFile:       os.Getenv("JOBS_FILE"),
		ListenAddr:     os.Getenv("LISTEN_ADDR"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		Env:            os.Getenv("ENV"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		DashboardToken: os.Getenv("DASHBOARD_TOKEN"),
		WorkspaceToken: os.Getenv("WORKSPACE_TOKEN"),
		CRM: CRMConfig{
			BaseURL: os.Getenv("CRM_BASE_URL"),
			Token:   os.Getenv("CRM_TOKEN"),
		},
	}

	if v := os.Getenv("CRM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("CRM_TIMEOUT: %w", err)
		}
		cfg.CRM.Timeout = d
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}

	// Defaults.
	if cfg.HistoryDBPath == "" {
		cfg.HistoryDBPath = "crmsync_history.sqlite"
	}
	if cfg.JobsFile == "" {
		cfg.JobsFile = "jobs.yaml"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.CRM.Timeout == 0 {
		cfg.CRM.Timeout = 30 * time.Second
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
		cfg.Warnings = append(cfg.Warnings, "JWT_SECRET not set, using insecure default")
	}
	if cfg.CRM.BaseURL == "" {
		cfg.Warnings = append(cfg.Warnings, "CRM_BASE_URL not set, query execution will fail until configured")
	}

	// Production mode: insecure defaults are fatal.
	if cfg.IsProduction() {
		if cfg.JWTSecret == "dev-secret-change-in-production" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production (ENV=production)")
		}
		if cfg.CRM.BaseURL == "" {
			return nil, fmt.Errorf("CRM_BASE_URL must be set in production (ENV=production)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the
// environment. Lines must be KEY=VALUE; comments (#) and blank lines are
// skipped. A missing file is not an error.
func LoadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Existing environment variables take precedence.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes when both ends match.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
