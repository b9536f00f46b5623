package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{Dir: "/var/lib/booker"},
		Server: ServerConfig{Port: "5000"},
		Auth: AuthConfig{
			TokenFormat:    "paseto",
			AccessTokenTTL: time.Hour,
		},
		RateLimit: RateLimitConfig{AuthPerMinute: 20, AuthBurst: 10},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{name: "staging", mutate: func(c *Config) { c.App.Environment = "staging" }, valid: true},
		{name: "production", mutate: func(c *Config) { c.App.Environment = "production" }, valid: true},
		{name: "unknown environment", mutate: func(c *Config) { c.App.Environment = "test" }},
		{name: "empty environment", mutate: func(c *Config) { c.App.Environment = "" }},
		{name: "environment is case sensitive", mutate: func(c *Config) { c.App.Environment = "DEVELOPMENT" }},
		{name: "log level case insensitive", mutate: func(c *Config) { c.Logger.Level = "DEBUG" }, valid: true},
		{name: "bad log level", mutate: func(c *Config) { c.Logger.Level = "trace" }},
		{name: "empty data dir", mutate: func(c *Config) { c.Data.Dir = "" }},
		{name: "non-numeric port", mutate: func(c *Config) { c.Server.Port = "http" }},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = "70000" }},
		{name: "unknown token format", mutate: func(c *Config) { c.Auth.TokenFormat = "saml" }},
		{name: "jwt without secret", mutate: func(c *Config) { c.Auth.TokenFormat = "jwt" }},
		{
			name: "jwt with secret",
			mutate: func(c *Config) {
				c.Auth.TokenFormat = "jwt"
				c.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
			},
			valid: true,
		},
		{name: "zero ttl", mutate: func(c *Config) { c.Auth.AccessTokenTTL = 0 }},
		{name: "zero rate", mutate: func(c *Config) { c.RateLimit.AuthPerMinute = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_PATH", "ENV", "LOG_LEVEL", "DATA_DIR", "PORT",
		"AUTH_TOKEN_FORMAT", "JWT_SECRET", "ACCESS_TOKEN_TTL",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "paseto", cfg.Auth.TokenFormat)
	assert.Equal(t, 168*time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.True(t, filepath.IsAbs(cfg.Data.Dir))
	assert.Equal(t, filepath.Join(cfg.Data.Dir, "db"), cfg.Data.DBPath())
}

func TestLoadConfig_EnvThenFlags(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("PORT", "8081")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig([]string{"--port", "9090", "--data-dir", dir})
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port, "flag beats env")
	assert.Equal(t, "debug", cfg.Logger.Level, "env beats default")
	assert.Equal(t, dir, cfg.Data.Dir)
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "app:\n  environment: staging\nserver:\n  port: \"7000\"\nauth:\n  access_token_ttl: 2h\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadConfig([]string{"--data-dir", dir})
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Environment)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.Auth.AccessTokenTTL)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := LoadConfig(nil)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "qa")

	_, err := LoadConfig([]string{"--data-dir", t.TempDir()})
	assert.Error(t, err)
}

func TestLoadConfig_BadFlag(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig([]string{"--no-such-flag"})
	assert.Error(t, err)
}
