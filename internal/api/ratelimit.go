package api

import (
	"net"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

const msgTooManyRequests = "Too many requests. Please try again later."

// rateLimitAuth throttles an operation per client IP with the server's
// auth limiter. It is a no-op when no limiter is configured.
func (s *Server) rateLimitAuth(ctx huma.Context, next func(huma.Context)) {
	if s.authRateLimiter == nil {
		next(ctx)
		return
	}

	key := clientIP(ctx.RemoteAddr())
	if !s.authRateLimiter.Allow(key) {
		if s.logger != nil {
			s.logger.Warn("Rate limit exceeded", "ip", key, "path", ctx.URL().Path)
		}
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, msgTooManyRequests)
		return
	}

	next(ctx)
}

// clientIP strips the port from a remote address. middleware.RealIP has
// already applied X-Forwarded-For and X-Real-IP.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
