package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/bookerapp/booker-server/internal/api"
	"github.com/bookerapp/booker-server/internal/config"
	"github.com/bookerapp/booker-server/internal/logger"
	"github.com/bookerapp/booker-server/internal/service"
)

// Version is reported in the OpenAPI document. Overridden at build time.
var Version = "1.0.0"

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	timeout time.Duration
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	timeout := h.timeout
	if timeout <= 0 {
		timeout = shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer builds the API and starts listening in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	limiter := do.MustInvoke[*RateLimiterHandle](i)
	services := do.MustInvoke[*service.Services](i)

	apiServer := api.NewServer(
		storeHandle.Store,
		services,
		indexHandle.BookIndex,
		limiter.KeyedRateLimiter,
		api.Options{
			Version:        Version,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		},
		log.Logger,
	)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := api.NewHTTPServer(addr, apiServer, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout)

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, timeout: cfg.Server.ShutdownTimeout}, nil
}
