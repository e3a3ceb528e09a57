package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRY_MINUTES", "")
	t.Setenv("DB_ADAPTER", "memory")
	t.Setenv("PORT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
}

func TestNewDefaults(t *testing.T) {
	setBaseEnv(t)

	c, err := New()
	require.NoError(t, err)
	require.Equal(t, "8080", c.Port)
	require.Equal(t, "test-secret", c.JWTSecret)
	require.Equal(t, 60, c.JWTExpiryMinutes)
	require.Equal(t, []string{"*"}, c.AllowedOrigins)
}

func TestNewRequiresSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := New()
	require.Error(t, err)
	require.Contains(t, err.Error(), "JWT_SECRET")
}

func TestNewRejectsBadExpiry(t *testing.T) {
	setBaseEnv(t)

	for _, bad := range []string{"0", "-5", "sixty"} {
		t.Setenv("JWT_EXPIRY_MINUTES", bad)
		_, err := New()
		require.Error(t, err, "expiry %q", bad)
	}
}

func TestNewRejectsUnknownAdapter(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_ADAPTER", "mongodb")

	_, err := New()
	require.Error(t, err)
}

func TestNewParsesOrigins(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	c, err := New()
	require.NoError(t, err)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
}

func TestBuildPostgresDSN(t *testing.T) {
	c := &Config{
		PostgresHost: "db",
		PostgresUser: "auth",
		PostgresDB:   "authapi",
	}
	dsn, err := c.BuildPostgresDSN()
	require.NoError(t, err)
	require.Equal(t, "host=db port=5432 user=auth dbname=authapi sslmode=disable", dsn)

	c.PostgresPassword = "pw"
	dsn, err = c.BuildPostgresDSN()
	require.NoError(t, err)
	require.Contains(t, dsn, "password=pw")

	c = &Config{PostgresDSN: "postgres://x"}
	dsn, err = c.BuildPostgresDSN()
	require.NoError(t, err)
	require.Equal(t, "postgres://x", dsn)

	_, err = (&Config{}).BuildPostgresDSN()
	require.Error(t, err)
}
