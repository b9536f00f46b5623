package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// minJWTSecretLength is the shortest HS256 secret accepted.
const minJWTSecretLength = 32

// JWTIssuer issues HS256 JWTs that carry the user ID in an "id" claim, the
// shape existing Booker clients decode.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
}

type jwtClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Email  string `json:"email,omitempty"`
}

// NewJWTIssuer creates an HS256 issuer. secret must be at least 32 bytes.
func NewJWTIssuer(secret string, ttl time.Duration) (*JWTIssuer, error) {
	if len(secret) < minJWTSecretLength {
		return nil, fmt.Errorf("JWT secret must be at least %d characters", minJWTSecretLength)
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl}, nil
}

// Issue signs a token for the user.
func (m *JWTIssuer) Issue(userID, email string) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    tokenIssuer,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
		Email:  email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, algorithm and expiry.
func (m *JWTIssuer) Verify(tokenString string) (*AccessClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrInvalidToken)
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}

	out := &AccessClaims{
		UserID:  claims.UserID,
		Email:   claims.Email,
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// TTL returns the configured access token lifetime.
func (m *JWTIssuer) TTL() time.Duration {
	return m.ttl
}

// NewTokenIssuer builds the issuer for format. The PASETO issuer uses key;
// the JWT issuer uses jwtSecret.
func NewTokenIssuer(format string, key []byte, jwtSecret string, ttl time.Duration) (TokenIssuer, error) {
	switch format {
	case FormatPaseto, "":
		issuer, err := NewPasetoIssuer(key, ttl)
		if err != nil {
			return nil, err
		}
		return issuer, nil
	case FormatJWT:
		issuer, err := NewJWTIssuer(jwtSecret, ttl)
		if err != nil {
			return nil, err
		}
		return issuer, nil
	default:
		return nil, fmt.Errorf("unknown token format %q", format)
	}
}
