package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresSecretAndDSN(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("POSTGRES_DSN", "")

	_, err := Load()
	require.ErrorContains(t, err, "AUTH_JWT_SECRET")

	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	_, err = Load()
	require.ErrorContains(t, err, "POSTGRES_DSN")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/portal")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "citizen-portal", cfg.App.Name)
	require.Equal(t, 24, cfg.Auth.TokenTTLHours)
	require.Equal(t, 10, cfg.Auth.BcryptCost)
	require.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	require.True(t, cfg.Postgres.RunMigrations)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/portal")
	t.Setenv("AUTH_TOKEN_TTL_HOURS", "48")
	t.Setenv("AUTH_BCRYPT_COST", "4")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 48, cfg.Auth.TokenTTLHours)
	require.Equal(t, 4, cfg.Auth.BcryptCost)
	require.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
}
