// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the API server and CLI.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// LogFile, when set, receives a rotated copy of the JSON log stream.
	LogFile string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	CORSOrigins []string

	// JWTSecret signs access tokens. Required.
	JWTSecret string

	// TokenTTL is the lifetime of issued access tokens. Defaults to 72h.
	TokenTTL time.Duration

	// RequirementsFile is a YAML document requirement table. Empty means the
	// built-in table.
	RequirementsFile string

	// ListingWarnDays is the expiring-soon threshold for listings and the
	// dashboard. Defaults to 30.
	ListingWarnDays int

	// TripWarnDays is the expiring-soon threshold relative to a trip's
	// departure date. Defaults to 7.
	TripWarnDays int

	// MaxBodyBytes caps request body size. Defaults to 1 MiB.
	MaxBodyBytes int64

	// PlateCheckRPS and PlateCheckBurst rate-limit the plate lookup
	// endpoints per client.
	PlateCheckRPS   float64
	PlateCheckBurst int
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first variable whose value cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          os.Getenv("LOG_FILE"),
		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		RequirementsFile: os.Getenv("REQUIREMENTS_FILE"),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "72h")); err != nil {
		return Config{}, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.ListingWarnDays, err = getInt("LISTING_WARN_DAYS", 30); err != nil {
		return Config{}, err
	}
	if cfg.TripWarnDays, err = getInt("TRIP_WARN_DAYS", 7); err != nil {
		return Config{}, err
	}
	maxBody, err := getInt("MAX_BODY_BYTES", 1<<20)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxBodyBytes = int64(maxBody)
	if cfg.PlateCheckRPS, err = strconv.ParseFloat(getEnv("PLATE_CHECK_RPS", "2"), 64); err != nil || cfg.PlateCheckRPS <= 0 {
		return Config{}, fmt.Errorf("invalid PLATE_CHECK_RPS: %q", os.Getenv("PLATE_CHECK_RPS"))
	}
	if cfg.PlateCheckBurst, err = getInt("PLATE_CHECK_BURST", 5); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadDatabaseURL returns DATABASE_URL alone, for tools that need nothing else.
func LoadDatabaseURL() (string, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return "", fmt.Errorf("required environment variables not set: DATABASE_URL")
	}
	return dsn, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getInt parses a positive integer variable, falling back when unset.
func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
