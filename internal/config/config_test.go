package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dom/uptask-server/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "secret")
	for _, key := range []string{"PORT", "ENVIRONMENT", "JWT_EXPIRATION_HOURS", "TOKEN_TTL_MINUTES", "TOKEN_SWEEP_MINUTES", "MAIL_FROM"} {
		unsetEnv(t, key)
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 24*time.Hour, cfg.SessionValidity())
	assert.Equal(t, 10*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 30*time.Minute, cfg.TokenSweepInterval)
	assert.Equal(t, "UpTask <admin@uptask.com>", cfg.MailFrom)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("TOKEN_TTL_MINUTES", "not-a-number")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.SessionValidity())
	assert.Equal(t, 10*time.Minute, cfg.TokenTTL, "invalid integers fall back to the default")
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	unsetEnv(t, "SMTP_HOST")
	unsetEnv(t, "JWT_SECRET")
	t.Setenv("PORT", "7070")

	content := "JWT_SECRET=from-dotenv\nSMTP_HOST=smtp.example.com\nPORT=1111\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.JWTSecret)
	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
	assert.Equal(t, "7070", cfg.Port, "the environment wins over .env")
}
