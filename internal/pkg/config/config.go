// Package config loads the storefront settings from, in increasing order of
// precedence: built-in defaults, an optional YAML file named by
// STOREFRONT_CONFIG, a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr          string        `yaml:"http_addr"`
	BackendURL        string        `yaml:"backend_url"`
	BackendTimeout    time.Duration `yaml:"backend_timeout"`
	RedisAddr         string        `yaml:"redis_addr"`
	SubmissionLogPath string        `yaml:"submission_log_path"`
	LogLevel          string        `yaml:"log_level"`
	ServiceName       string        `yaml:"otel_service_name"`
	OTelEnabled       bool          `yaml:"otel_enabled"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
	MenuCacheTTL      time.Duration `yaml:"menu_cache_ttl"`
	TrackerRefresh    time.Duration `yaml:"tracker_refresh"`
	CartPolicy        string        `yaml:"cart_policy"`
	SellerTaxID       string        `yaml:"seller_tax_id"`

	// Development backend.
	DevBackendAddr string `yaml:"devbackend_addr"`
	JWTSecret      string `yaml:"jwt_secret"`
}

func defaults() Config {
	return Config{
		HTTPAddr:       ":8080",
		BackendURL:     "http://127.0.0.1:8000",
		BackendTimeout: 10 * time.Second,
		LogLevel:       "info",
		ServiceName:    "storefront",
		OTelEnabled:    true,
		SessionTTL:     24 * time.Hour,
		MenuCacheTTL:   5 * time.Minute,
		TrackerRefresh: 15 * time.Second,
		CartPolicy:     "reject",
		SellerTaxID:    "123-456-78-90",
		DevBackendAddr: ":8000",
		JWTSecret:      "changeme",
	}
}

// Load builds the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := defaults()
	if path := os.Getenv("STOREFRONT_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	c.BackendURL = getEnv("BACKEND_URL", c.BackendURL)
	c.BackendTimeout = getEnvDuration("BACKEND_TIMEOUT", c.BackendTimeout)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.SubmissionLogPath = getEnv("SUBMISSION_LOG_PATH", c.SubmissionLogPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.ServiceName = getEnv("OTEL_SERVICE_NAME", c.ServiceName)
	c.OTelEnabled = getEnvBool("OTEL_ENABLED", c.OTelEnabled)
	c.SessionTTL = getEnvDuration("SESSION_TTL", c.SessionTTL)
	c.MenuCacheTTL = getEnvDuration("MENU_CACHE_TTL", c.MenuCacheTTL)
	c.TrackerRefresh = getEnvDuration("TRACKER_REFRESH", c.TrackerRefresh)
	c.CartPolicy = getEnv("CART_POLICY", c.CartPolicy)
	c.SellerTaxID = getEnv("SELLER_TAX_ID", c.SellerTaxID)
	c.DevBackendAddr = getEnv("DEVBACKEND_ADDR", c.DevBackendAddr)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
}

func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return errors.New("config: BACKEND_URL is required")
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("config: BACKEND_TIMEOUT must be positive, got %s", c.BackendTimeout)
	}
	switch c.CartPolicy {
	case "reject", "bind-first":
	default:
		return fmt.Errorf("config: CART_POLICY must be reject or bind-first, got %q", c.CartPolicy)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// getEnvDuration accepts Go durations ("15s") or plain seconds ("15").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n := getEnvInt(key, -1); n >= 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
