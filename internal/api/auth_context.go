package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/bookerapp/booker-server/internal/domain"
	domainerrors "github.com/bookerapp/booker-server/internal/errors"
	"github.com/bookerapp/booker-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	identityKey  ctxKey = "identity"
	authErrorKey ctxKey = "authError"
)

// tokenVerifier turns a bearer token into an identity.
type tokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (domain.AuthenticatedIdentity, error)
}

// authMiddleware verifies a Bearer token when one is present. A valid token
// stores the caller's identity in the request context; a bad one stores the
// verification error. Either way the request continues, and handlers that
// need a caller use RequireIdentity.
func authMiddleware(auth tokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			identity, err := auth.VerifyToken(ctx, token)
			if err != nil {
				ctx = context.WithValue(ctx, authErrorKey, err)
			} else {
				ctx = withIdentity(ctx, identity)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an Authorization header. The scheme
// is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireIdentity returns the authenticated caller, or the 401 explaining
// why there is none.
func RequireIdentity(ctx context.Context) (domain.AuthenticatedIdentity, error) {
	if identity, ok := ctx.Value(identityKey).(domain.AuthenticatedIdentity); ok {
		return identity, nil
	}
	if err, ok := ctx.Value(authErrorKey).(error); ok {
		return domain.AuthenticatedIdentity{}, err
	}
	return domain.AuthenticatedIdentity{}, domainerrors.Unauthorized(service.MsgNoToken)
}

// withIdentity stores identity in ctx.
func withIdentity(ctx context.Context, identity domain.AuthenticatedIdentity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}
