// Package providers contains dependency injection providers for the Booker server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookerapp/booker-server/internal/config"
	"github.com/bookerapp/booker-server/internal/logger"
)

// ConfigProvider returns a provider that loads configuration from args,
// the environment and the optional config file.
func ConfigProvider(args []string) func(do.Injector) (*config.Config, error) {
	return func(do.Injector) (*config.Config, error) {
		return config.LoadConfig(args)
	}
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Booker Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_dir", cfg.Data.Dir,
		"token_format", cfg.Auth.TokenFormat,
	)

	return log, nil
}
