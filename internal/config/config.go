// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/rezonia/billing/internal/model"
)

// Config holds every runtime setting
type Config struct {
	Addr           string
	DBDriver       string
	DBDSN          string
	Rates          model.RateSet
	MaxRetries     int
	Debug          bool
	LogLevel       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
}

// LoadDotEnv loads the given files (".env" when none) into the environment.
// Missing files are ignored and variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the configuration from the environment with defaults.
// Precedence: explicit env var > .env file (if loaded) > default.
func Load() (Config, error) {
	cfg := Config{
		Addr:     getEnv("BILLING_ADDR", ":8080"),
		DBDriver: strings.ToLower(getEnv("BILLING_DB_DRIVER", "sqlite")),
		DBDSN:    getEnv("BILLING_DB_DSN", "billing.db"),
		LogLevel: strings.ToLower(getEnv("BILLING_LOG_LEVEL", "info")),
	}

	var err error
	if cfg.Rates, err = model.ParseRateSet(getEnv("BILLING_VAT_RATES", "0,5.5,10,20")); err != nil {
		return Config{}, fmt.Errorf("BILLING_VAT_RATES: %w", err)
	}
	if cfg.MaxRetries, err = parseInt("BILLING_MAX_RETRIES", 3); err != nil {
		return Config{}, err
	}
	if cfg.Debug, err = parseBool("BILLING_DEBUG", false); err != nil {
		return Config{}, err
	}
	if cfg.ReadTimeout, err = parseDuration("BILLING_READ_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = parseDuration("BILLING_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = parseDuration("BILLING_REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be checked while parsing
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("BILLING_DB_DRIVER: unsupported driver %q (want sqlite or postgres)", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("BILLING_DB_DSN must not be empty")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("BILLING_MAX_RETRIES: must not be negative, got %d", c.MaxRetries)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("BILLING_LOG_LEVEL: unknown level %q", c.LogLevel)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseBool(key string, def bool) (bool, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

func parseInt(key string, def int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return dur, nil
}
