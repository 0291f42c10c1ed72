// ABOUTME: Tests for config loading from defaults, YAML, .env and environment.
// ABOUTME: Covers validation of storage backends, TTLs and rate limits.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	dir := withCleanEnv(t, nil)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.APIURL != "http://localhost:8080" {
		t.Errorf("Expected default API URL, got %s", cfg.APIURL)
	}
	if cfg.Storage != StorageFile {
		t.Errorf("Expected default storage file, got %s", cfg.Storage)
	}
	if cfg.ConfigDir != dir {
		t.Errorf("Expected config dir %s, got %s", dir, cfg.ConfigDir)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %v", cfg.Timeout())
	}
	if cfg.CatalogTTL() != time.Minute {
		t.Errorf("Expected 60s catalog TTL, got %v", cfg.CatalogTTL())
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	withCleanEnv(t, map[string]string{
		"STOREFRONT_API_URL":      "api.shop.test",
		"STOREFRONT_STORAGE":      "MEMORY",
		"STOREFRONT_HTTP_TIMEOUT": "5",
		"MOCK_API_ACCESS_TTL":     "2",
		"MOCK_API_RATE_LIMIT":     "0",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.APIURL != "http://api.shop.test" {
		t.Errorf("Expected scheme to be added, got %s", cfg.APIURL)
	}
	if cfg.Storage != StorageMemory {
		t.Errorf("Expected storage memory, got %s", cfg.Storage)
	}
	if cfg.HTTPTimeout != 5 {
		t.Errorf("Expected timeout 5, got %d", cfg.HTTPTimeout)
	}
	if cfg.AccessTTL() != 2*time.Second {
		t.Errorf("Expected access TTL 2s, got %v", cfg.AccessTTL())
	}
	if cfg.MockAPIRateLimit != 0 {
		t.Errorf("Expected rate limit disabled, got %d", cfg.MockAPIRateLimit)
	}
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	dir := withCleanEnv(t, nil)

	yamlData := "api_url: https://shop.example.com\ncatalog_cache_ttl: 10\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yamlData), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.APIURL != "https://shop.example.com" {
		t.Errorf("Expected API URL from file, got %s", cfg.APIURL)
	}
	if cfg.CatalogCacheTTL != 10 {
		t.Errorf("Expected catalog TTL 10 from file, got %d", cfg.CatalogCacheTTL)
	}
	if cfg.HTTPTimeout != 30 {
		t.Errorf("Expected default timeout to survive file overlay, got %d", cfg.HTTPTimeout)
	}
}

func TestLoadConfig_EnvBeatsYAML(t *testing.T) {
	dir := withCleanEnv(t, map[string]string{"STOREFRONT_API_URL": "https://env.example.com"})

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api_url: https://file.example.com\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.APIURL != "https://env.example.com" {
		t.Errorf("Expected env to win, got %s", cfg.APIURL)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	dir := withCleanEnv(t, nil)

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api_url: [unterminated"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Expected error for malformed config file, got nil")
	}
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	dir := withCleanEnv(t, nil)

	envPath := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envPath, []byte("STOREFRONT_CATALOG_CACHE_TTL=0\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STOREFRONT_ENV_FILE", envPath)
	// godotenv only fills variables that are absent from the environment
	os.Unsetenv("STOREFRONT_CATALOG_CACHE_TTL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.CatalogCacheTTL != 0 {
		t.Errorf("Expected catalog TTL 0 from .env, got %d", cfg.CatalogCacheTTL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown storage", func(c *Config) { c.Storage = "sqlite" }, true},
		{"negative rate limit", func(c *Config) { c.MockAPIRateLimit = -1 }, true},
		{"redis without addr", func(c *Config) { c.Storage = StorageRedis }, true},
		{"redis with addr", func(c *Config) { c.Storage = StorageRedis; c.RedisAddr = "localhost:6379" }, false},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }, true},
		{"negative cache ttl", func(c *Config) { c.CatalogCacheTTL = -1 }, true},
		{"empty api url", func(c *Config) { c.APIURL = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnsureScheme(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"localhost:8080", "http://localhost:8080"},
		{"https://shop.example.com/", "https://shop.example.com"},
		{"localhost:8080/", "http://localhost:8080"},
	}
	for _, tt := range tests {
		if got := ensureScheme(tt.input); got != tt.want {
			t.Errorf("ensureScheme(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
