// Package config loads application configuration from an optional .env or
// YAML file, environment variables and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Logger    LoggerConfig    `yaml:"logger"`
	Data      DataConfig      `yaml:"data"`
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `yaml:"environment" env:"ENV" env-default:"development"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// DataConfig locates on-disk state: the Badger database, the search index
// and the token key.
type DataConfig struct {
	Dir string `yaml:"dir" env:"DATA_DIR" env-default:"./data"`
}

// DBPath is the Badger directory.
func (d DataConfig) DBPath() string { return filepath.Join(d.Dir, "db") }

// SearchPath is the Bleve index directory.
func (d DataConfig) SearchPath() string { return filepath.Join(d.Dir, "search") }

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `yaml:"port" env:"PORT" env-default:"5000"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// AuthConfig holds token configuration. The PASETO key is not configured
// here: it is loaded from or generated into the data directory.
type AuthConfig struct {
	TokenFormat    string        `yaml:"token_format" env:"AUTH_TOKEN_FORMAT" env-default:"paseto"`
	JWTSecret      string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"168h"`
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// RateLimitConfig throttles the signup and login endpoints per client IP.
type RateLimitConfig struct {
	AuthPerMinute int `yaml:"auth_per_minute" env:"AUTH_RATE_PER_MINUTE" env-default:"20"`
	AuthBurst     int `yaml:"auth_burst" env:"AUTH_RATE_BURST" env-default:"10"`
}

// LoadConfig loads configuration with precedence, highest first:
//  1. command-line flags in args;
//  2. environment variables;
//  3. the file named by CONFIG_PATH (.env or .yaml), or ./.env if present;
//  4. env-default tags.
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("booker", flag.ContinueOnError)
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataDir := fs.String("data-dir", "", "Directory for the database, search index and keys")
	port := fs.String("port", "", "Server port (default: 5000)")
	tokenFormat := fs.String("token-format", "", "Access token format (paseto, jwt)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var cfg Config
	if err := readConfig(&cfg); err != nil {
		return nil, err
	}

	override(&cfg.App.Environment, *env)
	override(&cfg.Logger.Level, *logLevel)
	override(&cfg.Data.Dir, *dataDir)
	override(&cfg.Server.Port, *port)
	override(&cfg.Auth.TokenFormat, *tokenFormat)

	if err := cfg.expandDataDir(); err != nil {
		return nil, fmt.Errorf("invalid data dir: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func readConfig(cfg *Config) error {
	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = ".env"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	} else if explicitPath {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("read env: %w", err)
	}
	return nil
}

func override(dst *string, flagValue string) {
	if flagValue != "" {
		*dst = flagValue
	}
}

// Validate checks that every value is present and within range.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.Dir == "" {
		return errors.New("data dir cannot be empty")
	}

	p, err := strconv.Atoi(c.Server.Port)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid port: %q", c.Server.Port)
	}

	switch c.Auth.TokenFormat {
	case "paseto":
	case "jwt":
		if len(c.Auth.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters when AUTH_TOKEN_FORMAT=jwt")
		}
	default:
		return fmt.Errorf("invalid token format: %s (must be paseto or jwt)", c.Auth.TokenFormat)
	}

	if c.Auth.AccessTokenTTL <= 0 {
		return errors.New("access token TTL must be positive")
	}

	if c.RateLimit.AuthPerMinute <= 0 || c.RateLimit.AuthBurst <= 0 {
		return errors.New("auth rate limit and burst must be positive")
	}

	return nil
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// expandDataDir expands ~ and makes the data dir absolute.
func (c *Config) expandDataDir() error {
	path := c.Data.Dir
	if path == "" {
		return nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = abs
	}

	c.Data.Dir = filepath.Clean(path)
	return nil
}
