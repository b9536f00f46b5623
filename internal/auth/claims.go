package auth

import (
	"errors"
	"time"
)

// ErrInvalidToken is returned for any token that fails to parse, decrypt,
// verify or carries no user.
var ErrInvalidToken = errors.New("invalid token")

// ErrTokenExpired is returned for a well-formed token past its expiry.
var ErrTokenExpired = errors.New("token expired")

// AccessClaims are the claims carried by an access token, whichever format
// issued it.
type AccessClaims struct {
	UserID    string
	Email     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer creates and verifies access tokens.
type TokenIssuer interface {
	// Issue returns a signed or encrypted token for the user.
	Issue(userID, email string) (string, error)
	// Verify returns the claims of a valid token. Errors wrap
	// ErrInvalidToken or ErrTokenExpired.
	Verify(token string) (*AccessClaims, error)
	// TTL is the lifetime of issued tokens.
	TTL() time.Duration
}

// Token formats accepted by NewTokenIssuer.
const (
	FormatPaseto = "paseto"
	FormatJWT    = "jwt"
)
