package providers

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/bookerapp/booker-server/internal/auth"
	"github.com/bookerapp/booker-server/internal/config"
	"github.com/bookerapp/booker-server/internal/logger"
	"github.com/bookerapp/booker-server/internal/ratelimit"
)

// AuthKey is the symmetric key used to seal PASETO tokens.
type AuthKey []byte

// ProvideAuthKey loads the token key from the data directory, generating
// one on first start.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.Dir)
	if err != nil {
		return nil, err
	}

	log.Info("Auth key loaded")
	return AuthKey(key), nil
}

// ProvideTokenIssuer provides the access token issuer for the configured
// format.
func ProvideTokenIssuer(i do.Injector) (auth.TokenIssuer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)

	return auth.NewTokenIssuer(cfg.Auth.TokenFormat, key, cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
}

// RateLimiterHandle wraps the signup/login limiter so its sweeper stops on
// shutdown.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideAuthRateLimiter provides the per-IP limiter for signup and login.
func ProvideAuthRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.NewPerInterval(cfg.RateLimit.AuthPerMinute, time.Minute, cfg.RateLimit.AuthBurst)
	return &RateLimiterHandle{KeyedRateLimiter: limiter}, nil
}
