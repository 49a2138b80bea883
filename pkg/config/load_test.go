package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k) //nolint:errcheck
	}
}

func TestFindEnvFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "webapi", "donation")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env.test"), []byte("X=1\n"), 0o600))
	// a directory with the same name must not match
	require.NoError(t, os.Mkdir(filepath.Join(root, "webapi", ".env.test"), 0o755))
	t.Chdir(nested)

	found, err := FindEnvFile(".env.test")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".env.test"), found)

	_, err = FindEnvFile(".env.missing")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "AUTH_JWT_SECRET=secret\n" +
		"DATABASE_URL=postgres://u:p@localhost:5432/db\n" +
		"RATE_LIMIT_MAX_REQUESTS=7\n" +
		"PAYMENT_PROVIDER_STRIPE_SIGNING_SECRET=whsec_test\n" +
		"BUS_DRIVER=memory\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte(content), 0o600))
	t.Chdir(dir)
	clearEnv(t, "AUTH_JWT_SECRET", "DATABASE_URL", "RATE_LIMIT_MAX_REQUESTS",
		"PAYMENT_PROVIDER_STRIPE_SIGNING_SECRET", "BUS_DRIVER")

	cfg, err := Load(".env.missing", ".env.test")
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "secret", cfg.Auth.Jwt.Secret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.Jwt.Expiry)
	assert.Equal(t, 7, cfg.RateLimit.MaxRequests)
	assert.Equal(t, "whsec_test", cfg.PaymentProviders.Stripe.SigningSecret)
	assert.Equal(t, "usd", cfg.PaymentProviders.Stripe.Currency)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Bus.Driver)
}

func TestLoad_ProcessEnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"),
		[]byte("AUTH_JWT_SECRET=from-file\nSERVER_PORT=4000\n"), 0o600))
	t.Chdir(dir)
	clearEnv(t, "SERVER_PORT")
	t.Setenv("AUTH_JWT_SECRET", "from-process")

	cfg, err := Load(".env.test")
	require.NoError(t, err)
	assert.Equal(t, "from-process", cfg.Auth.Jwt.Secret)
	assert.Equal(t, 4000, cfg.Server.Port)
}

func TestLoad_MissingJwtSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	clearEnv(t, "AUTH_JWT_SECRET")

	_, err := Load(".env.none")
	assert.Error(t, err)
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "****", redact("short"))
	assert.Equal(t, "sk****cdef", redact("sk_test_abcdef"))
}
