// ABOUTME: Configuration loader for the storefront client and mock API
// ABOUTME: Layers defaults, YAML config file, .env file, and environment variables

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backend names accepted by STOREFRONT_STORAGE
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

const (
	appName        = "wholesale"
	configFileName = "config.yaml"
	defaultAPIURL  = "http://localhost:8080"
)

type Config struct {
	// Client
	APIURL          string `yaml:"api_url"`
	HTTPTimeout     int    `yaml:"http_timeout"`      // seconds (default 30)
	CatalogCacheTTL int    `yaml:"catalog_cache_ttl"` // seconds, 0 disables caching (default 60)

	// Persistence for auth-storage and cart-storage
	Storage       string `yaml:"storage"` // memory, file, redis (default: file)
	ConfigDir     string `yaml:"config_dir"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix"`

	// Mock API server
	MockAPIPort      string `yaml:"mock_api_port"`
	MockAPIJWTSecret string `yaml:"mock_api_jwt_secret"`
	MockAPIAccessTTL int    `yaml:"mock_api_access_ttl"` // seconds (default 900)
	MockAPIRateLimit int    `yaml:"mock_api_rate_limit"` // login attempts per IP per minute, 0 disables (default 20)
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		APIURL:           defaultAPIURL,
		HTTPTimeout:      30,
		CatalogCacheTTL:  60,
		Storage:          StorageFile,
		RedisPrefix:      appName + ":",
		MockAPIPort:      "8080",
		MockAPIJWTSecret: "dev-secret-change-me",
		MockAPIAccessTTL: 900,
		MockAPIRateLimit: 20,
	}
}

// Load builds the configuration with layered precedence:
//  1. Defaults
//  2. YAML file in the config directory (config.yaml)
//  3. .env file in the working directory (does not override real env vars)
//  4. Environment variables
func Load() (*Config, error) {
	cfg := Default()

	cfg.ConfigDir = getEnv("STOREFRONT_CONFIG_DIR", DefaultConfigDir())
	if err := cfg.loadFile(filepath.Join(cfg.ConfigDir, configFileName)); err != nil {
		return nil, err
	}

	envFile := getEnv("STOREFRONT_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load env file", "path", envFile, "error", err)
	}

	cfg.APIURL = ensureScheme(getEnv("STOREFRONT_API_URL", cfg.APIURL))
	cfg.HTTPTimeout = getEnvInt("STOREFRONT_HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.CatalogCacheTTL = getEnvInt("STOREFRONT_CATALOG_CACHE_TTL", cfg.CatalogCacheTTL)

	cfg.Storage = strings.ToLower(getEnv("STOREFRONT_STORAGE", cfg.Storage))
	cfg.RedisAddr = getEnv("STOREFRONT_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("STOREFRONT_REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getEnvInt("STOREFRONT_REDIS_DB", cfg.RedisDB)
	cfg.RedisPrefix = getEnv("STOREFRONT_REDIS_PREFIX", cfg.RedisPrefix)

	cfg.MockAPIPort = getEnv("MOCK_API_PORT", cfg.MockAPIPort)
	cfg.MockAPIJWTSecret = getEnv("MOCK_API_JWT_SECRET", cfg.MockAPIJWTSecret)
	cfg.MockAPIAccessTTL = getEnvInt("MOCK_API_ACCESS_TTL", cfg.MockAPIAccessTTL)
	cfg.MockAPIRateLimit = getEnvInt("MOCK_API_RATE_LIMIT", cfg.MockAPIRateLimit)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageFile:
	case StorageRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("STOREFRONT_REDIS_ADDR is required when STOREFRONT_STORAGE=redis")
		}
	default:
		return fmt.Errorf("invalid storage backend: %q (must be memory, file, or redis)", c.Storage)
	}

	if c.APIURL == "" {
		return fmt.Errorf("STOREFRONT_API_URL is required")
	}
	if c.HTTPTimeout < 1 {
		return fmt.Errorf("STOREFRONT_HTTP_TIMEOUT must be positive, got %d", c.HTTPTimeout)
	}
	if c.CatalogCacheTTL < 0 {
		return fmt.Errorf("STOREFRONT_CATALOG_CACHE_TTL must not be negative, got %d", c.CatalogCacheTTL)
	}
	if c.MockAPIAccessTTL < 1 {
		return fmt.Errorf("MOCK_API_ACCESS_TTL must be positive, got %d", c.MockAPIAccessTTL)
	}
	if c.MockAPIRateLimit < 0 {
		return fmt.Errorf("MOCK_API_RATE_LIMIT must not be negative, got %d", c.MockAPIRateLimit)
	}
	return nil
}

// Timeout returns the HTTP client timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// CatalogTTL returns the catalog cache TTL as a duration
func (c *Config) CatalogTTL() time.Duration {
	return time.Duration(c.CatalogCacheTTL) * time.Second
}

// AccessTTL returns the mock API access token lifetime as a duration
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.MockAPIAccessTTL) * time.Second
}

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// loadFile overlays values from a YAML file; a missing file is not an error
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	dir := c.ConfigDir
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if c.ConfigDir == "" {
		c.ConfigDir = dir
	}
	slog.Debug("Loaded config file", "path", path)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// SetAPIURL overrides the API URL, as the --api-url flag does
func (c *Config) SetAPIURL(url string) {
	c.APIURL = ensureScheme(url)
}

// ensureScheme adds http:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	url = strings.TrimRight(url, "/")
	if !strings.Contains(url, "://") {
		return "http://" + url
	}
	return url
}
