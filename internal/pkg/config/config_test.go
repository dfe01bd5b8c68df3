package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STOREFRONT_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.Equal(t, "reject", cfg.CartPolicy)
	assert.Empty(t, cfg.RedisAddr)
	assert.True(t, cfg.OTelEnabled)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend_url: http://backend.internal:8000
backend_timeout: 3s
cart_policy: bind-first
tracker_refresh: 30s
otel_enabled: false
`), 0o600))

	t.Setenv("STOREFRONT_CONFIG", path)
	t.Setenv("TRACKER_REFRESH", "5")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://backend.internal:8000", cfg.BackendURL)
	assert.Equal(t, 3*time.Second, cfg.BackendTimeout)
	assert.Equal(t, "bind-first", cfg.CartPolicy)
	assert.Equal(t, 5*time.Second, cfg.TrackerRefresh)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.False(t, cfg.OTelEnabled)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("STOREFRONT_CONFIG", "")
	// t.Setenv restores the variable afterwards; godotenv only fills unset ones
	t.Setenv("SELLER_TAX_ID", "")
	require.NoError(t, os.Unsetenv("SELLER_TAX_ID"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SELLER_TAX_ID=555-000-11-22\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "555-000-11-22", cfg.SellerTaxID)
}

func TestLoad_InvalidPolicy(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STOREFRONT_CONFIG", "")
	t.Setenv("CART_POLICY", "merge")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("X_DUR", "garbage")
	assert.Equal(t, time.Minute, getEnvDuration("X_DUR", time.Minute))
	t.Setenv("X_DUR", "250ms")
	assert.Equal(t, 250*time.Millisecond, getEnvDuration("X_DUR", time.Minute))
}
