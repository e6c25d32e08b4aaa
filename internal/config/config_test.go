package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnpath/internal/llm"
)

var envKeys = []string{
	"LEARNPATH_DB",
	"LEARNPATH_UPLOADS_DIR",
	"LEARNPATH_HTTP_ADDR",
	"LEARNPATH_ADMIN_TOKEN",
	"LEARNPATH_METRICS_NAMESPACE",
	"LEARNPATH_LOG_LEVEL",
	"LEARNPATH_LOG_FORMAT",
	"LEARNPATH_SHUTDOWN_TIMEOUT",
	"LEARNPATH_DEFAULT_WEEKS",
	"LEARNPATH_SMTP_HOST",
	"LEARNPATH_SMTP_PORT",
	"LEARNPATH_SMTP_FROM",
	"LEARNPATH_SMTP_USERNAME",
	"LEARNPATH_SMTP_PASSWORD",
	"LEARNPATH_SMTP_TIMEOUT",
	"LEARNPATH_LLM_PROVIDER",
	"ANTHROPIC_API_KEY",
	"OPENAI_API_KEY",
	"GEMINI_API_KEY",
	"OPENROUTER_API_KEY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Default().BindAddr, cfg.BindAddr)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "learnpath", cfg.MetricsNamespace)
	assert.Equal(t, 4, cfg.DefaultWeeks)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.SMTP.Enabled())
	assert.Empty(t, cfg.AdminToken)
	assert.Equal(t, llm.ProviderNone, cfg.LLM.Provider)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEARNPATH_DB", "postgres://localhost/learnpath")
	t.Setenv("LEARNPATH_HTTP_ADDR", " :9090 ")
	t.Setenv("LEARNPATH_ADMIN_TOKEN", "s3cret")
	t.Setenv("LEARNPATH_LOG_LEVEL", "DEBUG")
	t.Setenv("LEARNPATH_LOG_FORMAT", "json")
	t.Setenv("LEARNPATH_SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("LEARNPATH_SMTP_HOST", "smtp.example.com")
	t.Setenv("LEARNPATH_SMTP_PORT", "2525")
	t.Setenv("LEARNPATH_SMTP_FROM", "tutor@example.com")
	t.Setenv("LEARNPATH_LLM_PROVIDER", "mock")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/learnpath", cfg.DatabaseDSN)
	assert.Equal(t, ":9090", cfg.BindAddr)
	assert.Equal(t, "s3cret", cfg.AdminToken)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, llm.ProviderMock, cfg.LLM.Provider)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := map[string]string{
		"LEARNPATH_SHUTDOWN_TIMEOUT": "soon",
		"LEARNPATH_SMTP_PORT":        "70000",
		"LEARNPATH_DEFAULT_WEEKS":    "0",
		"LEARNPATH_LOG_FORMAT":       "xml",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			_, err := FromEnv()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that exists, even when empty.
	os.Unsetenv("LEARNPATH_ADMIN_TOKEN")
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("LEARNPATH_ADMIN_TOKEN=from-file\nLEARNPATH_HTTP_ADDR=:7070\n"), 0o600))
	t.Setenv("LEARNPATH_HTTP_ADDR", ":6060")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	t.Cleanup(func() { os.Unsetenv("LEARNPATH_ADMIN_TOKEN") })

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.AdminToken)
	assert.Equal(t, ":6060", cfg.BindAddr, "existing variables win")
}
