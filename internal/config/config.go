// Package config loads server configuration from an optional YAML file,
// a .env file, and environment variables. Environment variables win over
// the file so deployments can override individual settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the API server.
type Config struct {
	Addr           string   `yaml:"addr"`
	DatabaseURL    string   `yaml:"database_url"`
	JWTSecret      string   `yaml:"jwt_secret"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	UploadDir      string   `yaml:"upload_dir"`
	SecureCookies  bool     `yaml:"secure_cookies"`

	RateLimit RateLimit `yaml:"rate_limit"`
}

// RateLimit configures the per-client request throttle.
type RateLimit struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// Default returns the configuration used when nothing is provided.
func Default() Config {
	return Config{
		Addr:      ":8080",
		UploadDir: "uploads",
		RateLimit: RateLimit{PerSecond: 10, Burst: 30},
	}
}

// Load reads the optional YAML file at path, applies .env and environment
// overrides, and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	// Missing .env is fine; explicit files are loaded by the caller's shell.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		c.UploadDir = v
	}
	if v := os.Getenv("SECURE_COOKIES"); v != "" {
		c.SecureCookies = v == "true" || v == "1"
	}
	if v := os.Getenv("RATE_LIMIT_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit.PerSecond = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimit.Burst = n
		}
	}
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required (JWT_SECRET)")
	}
	if c.RateLimit.PerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
