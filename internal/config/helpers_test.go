// ABOUTME: Test helpers for config tests
// ABOUTME: Isolates each test from the developer's real config dir and env

package config

import (
	"path/filepath"
	"testing"
)

// withCleanEnv points every config source at a temporary directory and
// clears the STOREFRONT_* variables so only the test's own values apply.
// Returns the temporary config directory.
func withCleanEnv(t *testing.T, extra map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	keys := []string{
		"STOREFRONT_API_URL", "STOREFRONT_HTTP_TIMEOUT", "STOREFRONT_CATALOG_CACHE_TTL",
		"STOREFRONT_STORAGE", "STOREFRONT_REDIS_ADDR", "STOREFRONT_REDIS_PASSWORD",
		"STOREFRONT_REDIS_DB", "STOREFRONT_REDIS_PREFIX",
		"MOCK_API_PORT", "MOCK_API_JWT_SECRET", "MOCK_API_ACCESS_TTL", "MOCK_API_RATE_LIMIT",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
	t.Setenv("STOREFRONT_CONFIG_DIR", dir)
	t.Setenv("STOREFRONT_ENV_FILE", filepath.Join(dir, "missing.env"))

	for key, value := range extra {
		t.Setenv(key, value)
	}
	return dir
}
