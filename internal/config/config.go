package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of the application server.
type Config struct {
	Addr               string
	Env                string
	Intro              string // Markdown rendered above the form
	SessionTTL         time.Duration
	RateLimitPerSecond int
	CSRFKey            []byte
	TrustedOrigins     []string
	SlowRequestMs      float64
}

// Production reports whether the server runs with production safeguards.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// fileConfig is the optional YAML file named by APPLY_CONFIG_FILE.
type fileConfig struct {
	Addr               string   `yaml:"addr"`
	Env                string   `yaml:"env"`
	Intro              string   `yaml:"intro"`
	SessionTTL         string   `yaml:"session_ttl"`
	RateLimitPerSecond int      `yaml:"rate_limit_per_second"`
	TrustedOrigins     []string `yaml:"trusted_origins"`
}

var errCSRFKey = errors.New("APPLY_CSRF_KEY must be 64 hex characters (32 bytes)")

// Load reads .env, then the YAML file, then environment variables; later sources win.
// PRE: none
// POST: Returns a complete Config or an error naming the bad setting
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and defaults.")
	}

	cfg := &Config{
		Addr:               ":8080",
		Env:                "development",
		SessionTTL:         2 * time.Hour,
		RateLimitPerSecond: 10,
		SlowRequestMs:      200,
	}

	if path := os.Getenv("APPLY_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Addr = getEnv("APPLY_ADDR", cfg.Addr)
	cfg.Env = getEnv("APPLY_ENV", cfg.Env)
	cfg.Intro = getEnv("APPLY_INTRO", cfg.Intro)
	if v := os.Getenv("APPLY_TRUSTED_ORIGINS"); v != "" {
		cfg.TrustedOrigins = splitList(v)
	}

	var err error
	if cfg.SessionTTL, err = getEnvAsDuration("APPLY_SESSION_TTL", cfg.SessionTTL); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerSecond, err = getEnvAsInt("APPLY_RATE_LIMIT", cfg.RateLimitPerSecond); err != nil {
		return nil, err
	}
	if cfg.SlowRequestMs, err = getEnvAsFloat("APPLY_SLOW_REQUEST_MS", cfg.SlowRequestMs); err != nil {
		return nil, err
	}
	if cfg.CSRFKey, err = loadCSRFKey(cfg.Production()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Addr != "" {
		c.Addr = fc.Addr
	}
	if fc.Env != "" {
		c.Env = fc.Env
	}
	if fc.Intro != "" {
		c.Intro = fc.Intro
	}
	if fc.SessionTTL != "" {
		ttl, err := time.ParseDuration(fc.SessionTTL)
		if err != nil || ttl <= 0 {
			return fmt.Errorf("config file %s: invalid session_ttl %q", path, fc.SessionTTL)
		}
		c.SessionTTL = ttl
	}
	if fc.RateLimitPerSecond != 0 {
		if fc.RateLimitPerSecond < 0 {
			return fmt.Errorf("config file %s: rate_limit_per_second must be positive", path)
		}
		c.RateLimitPerSecond = fc.RateLimitPerSecond
	}
	if len(fc.TrustedOrigins) > 0 {
		c.TrustedOrigins = fc.TrustedOrigins
	}
	return nil
}

// loadCSRFKey reads the CSRF secret from APPLY_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey(production bool) ([]byte, error) {
	if keyHex := os.Getenv("APPLY_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, errCSRFKey
		}
		return key, nil
	}
	if production {
		return nil, errors.New("APPLY_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	log.Println("WARNING: using random CSRF key (forms won't survive restart). Set APPLY_CSRF_KEY for production.")
	return key, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, valueStr)
	}
	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", key, valueStr)
	}
	return value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, valueStr)
	}
	return value, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
