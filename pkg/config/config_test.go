package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "test-key")
	t.Setenv("BOOTSTRAP_SUPER_PASSWORD", "test-password")

	cfg, err := Load("rbac-service")
	require.NoError(t, err)

	assert.Equal(t, "rbac-service", cfg.ServiceName)
	assert.Equal(t, "rbac-service", cfg.DB.DBName)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, 30, cfg.JWT.ExpirationMinutes)
	assert.Equal(t, "management", cfg.Bootstrap.AppSlug)
	assert.Equal(t, "sec-ma", cfg.Bootstrap.TenantSlug)
	assert.Equal(t, "super-user", cfg.Bootstrap.SuperUser)
	assert.Equal(t, "super", cfg.Bootstrap.SuperRole)
}

func TestLoadRequiredSecrets(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "")
	t.Setenv("BOOTSTRAP_SUPER_PASSWORD", "test-password")
	_, err := Load("rbac-service")
	assert.Error(t, err)

	t.Setenv("JWT_SIGNING_KEY", "test-key")
	t.Setenv("BOOTSTRAP_SUPER_PASSWORD", "")
	_, err = Load("rbac-service")
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "test-key")
	t.Setenv("BOOTSTRAP_SUPER_PASSWORD", "test-password")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("JWT_EXPIRATION_MINUTES", "5")
	t.Setenv("BOOTSTRAP_APP_SLUG", "mgmt")

	cfg, err := Load("rbac-service")
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
	assert.Equal(t, 5, cfg.JWT.ExpirationMinutes)
	assert.Equal(t, "mgmt", cfg.Bootstrap.AppSlug)
	assert.Contains(t, cfg.DB.GetDSN(), "host=db.internal")
}
