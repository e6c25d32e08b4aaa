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

	"github.com/abhisek/learnpath/internal/llm"
	"github.com/abhisek/learnpath/internal/notify"
)

// Config contains all runtime settings.
type Config struct {
	// DatabaseDSN is a SQLite path/URI or a postgres:// URL. Empty means the
	// per-user default location.
	DatabaseDSN string
	// UploadsDir is where submission attachments are stored. Empty means
	// <data home>/uploads.
	UploadsDir string

	BindAddr         string
	ShutdownTimeout  time.Duration
	AdminToken       string
	MetricsNamespace string
	DefaultWeeks     int

	LogLevel  string
	LogFormat string

	SMTP notify.SMTPConfig
	LLM  llm.Config
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		BindAddr:         ":8080",
		ShutdownTimeout:  15 * time.Second,
		MetricsNamespace: "learnpath",
		DefaultWeeks:     4,
		LogLevel:         "info",
		LogFormat:        "text",
		SMTP: notify.SMTPConfig{
			Port:    587,
			Timeout: 30 * time.Second,
		},
		LLM: llm.DefaultConfig(),
	}
}

// LoadDotEnv loads variables from the given files (".env" when none are
// given) without overriding variables already set. Missing files are
// skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv reads LEARNPATH_* variables over Default.
func FromEnv() (Config, error) {
	cfg := Default()
	cfg.DatabaseDSN = trimmed("LEARNPATH_DB")
	cfg.UploadsDir = trimmed("LEARNPATH_UPLOADS_DIR")
	cfg.BindAddr = envOrDefault("LEARNPATH_HTTP_ADDR", cfg.BindAddr)
	cfg.AdminToken = trimmed("LEARNPATH_ADMIN_TOKEN")
	cfg.MetricsNamespace = envOrDefault("LEARNPATH_METRICS_NAMESPACE", cfg.MetricsNamespace)
	cfg.LogLevel = strings.ToLower(envOrDefault("LEARNPATH_LOG_LEVEL", cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(envOrDefault("LEARNPATH_LOG_FORMAT", cfg.LogFormat))

	cfg.SMTP.Host = trimmed("LEARNPATH_SMTP_HOST")
	cfg.SMTP.From = trimmed("LEARNPATH_SMTP_FROM")
	cfg.SMTP.Username = trimmed("LEARNPATH_SMTP_USERNAME")
	cfg.SMTP.Password = os.Getenv("LEARNPATH_SMTP_PASSWORD")

	var err error
	if cfg.ShutdownTimeout, err = durationFromEnv("LEARNPATH_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	if cfg.DefaultWeeks, err = intFromEnv("LEARNPATH_DEFAULT_WEEKS", cfg.DefaultWeeks); err != nil {
		return Config{}, err
	}
	if cfg.SMTP.Port, err = intFromEnv("LEARNPATH_SMTP_PORT", cfg.SMTP.Port); err != nil {
		return Config{}, err
	}
	if cfg.SMTP.Timeout, err = durationFromEnv("LEARNPATH_SMTP_TIMEOUT", cfg.SMTP.Timeout); err != nil {
		return Config{}, err
	}

	cfg.LLM = llm.ConfigFromEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges. LLM settings are checked when the provider
// is built so that a bad key degrades to template generation.
func (c Config) Validate() error {
	switch {
	case c.BindAddr == "":
		return errors.New("LEARNPATH_HTTP_ADDR must not be empty")
	case c.ShutdownTimeout <= 0:
		return errors.New("LEARNPATH_SHUTDOWN_TIMEOUT must be positive")
	case c.DefaultWeeks < 1 || c.DefaultWeeks > 52:
		return errors.New("LEARNPATH_DEFAULT_WEEKS must be between 1 and 52")
	case c.SMTP.Port < 1 || c.SMTP.Port > 65535:
		return errors.New("LEARNPATH_SMTP_PORT must be a valid port")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LEARNPATH_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	v := trimmed(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmed(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}
