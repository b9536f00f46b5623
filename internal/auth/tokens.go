package auth

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "booker-server"
	tokenAudience = "booker-client"
)

// PasetoIssuer issues PASETO v4.local access tokens. Claims are encrypted,
// so clients cannot read them.
type PasetoIssuer struct {
	symmetricKey paseto.V4SymmetricKey
	ttl          time.Duration
}

// NewPasetoIssuer creates an issuer from a 32-byte key.
func NewPasetoIssuer(key []byte, ttl time.Duration) (*PasetoIssuer, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &PasetoIssuer{symmetricKey: symmetricKey, ttl: ttl}, nil
}

// Issue creates a v4.local token for the user.
func (s *PasetoIssuer) Issue(userID, email string) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(userID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.ttl))
	token.SetJti(uuid.NewString())

	//nolint:errcheck // Set only fails on values that cannot be marshalled
	_ = token.Set("user_id", userID)
	//nolint:errcheck // Set only fails on values that cannot be marshalled
	_ = token.Set("email", email)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

type pasetoClaims struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	TokenID    string    `json:"jti"`
	IssuedAt   time.Time `json:"iat"`
	Expiration time.Time `json:"exp"`
}

// Verify decrypts the token and checks audience, issuer and validity window.
func (s *PasetoIssuer) Verify(tokenString string) (*AccessClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		if strings.Contains(err.Error(), "expire") {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	var claims pasetoClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("%w: parse claims: %w", ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user", ErrInvalidToken)
	}

	return &AccessClaims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		TokenID:   claims.TokenID,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.Expiration,
	}, nil
}

// TTL returns the configured access token lifetime.
func (s *PasetoIssuer) TTL() time.Duration {
	return s.ttl
}
