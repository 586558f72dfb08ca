package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-with-enough-length!!"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "boardkit", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodySize)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 90*24*time.Hour, cfg.Invite.MaxExpiry)
	assert.Equal(t, time.Hour, cfg.Worker.LinkSweepInterval)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.Storage.IsConfigured())
	assert.False(t, cfg.IsProduction())
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
}

func TestLoadRejectsShortJWTSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 characters")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_NAME", "boardkit_test")
	t.Setenv("INVITE_MAX_EXPIRY", "720h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "boardkit_test", cfg.Database.Name)
	assert.Equal(t, 720*time.Hour, cfg.Invite.MaxExpiry)
}

func TestValidateInviteExpiry(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)

	t.Run("default exceeds max", func(t *testing.T) {
		t.Setenv("INVITE_DEFAULT_EXPIRY", "2400h")
		t.Setenv("INVITE_MAX_EXPIRY", "24h")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "INVITE_DEFAULT_EXPIRY")
	})

	t.Run("zero max rejected", func(t *testing.T) {
		t.Setenv("INVITE_MAX_EXPIRY", "0")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "INVITE_MAX_EXPIRY")
	})
}

func TestValidateCookieSameSite(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("AUTH_COOKIE_SAMESITE", "none")
	t.Setenv("AUTH_COOKIE_SECURE", "false")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_COOKIE_SECURE")
}

func TestValidateProductionRejectsWildcardCORS(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
}

func TestDSNAndAddrs(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Contains(t, cfg.Database.DSN(), "dbname=boardkit")
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
}
