package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tanicerdas/seedbot-console/model"
)

// consoleClaims is the payload of the signed token the browser holds. The
// session ID is the only load-bearing field; user data lives server-side.
type consoleClaims struct {
	SessionID string `json:"sid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// TokenSigner mints and verifies the HS256 console tokens.
type TokenSigner struct {
	key    []byte
	ttl    time.Duration
	issuer string
}

// NewTokenSigner creates a signer with the given secret and token lifetime.
func NewTokenSigner(key []byte, ttl time.Duration) *TokenSigner {
	return &TokenSigner{key: key, ttl: ttl, issuer: "seedbot-console"}
}

// Mint issues a signed token referencing the session.
func (s *TokenSigner) Mint(sessionID string, user model.User) (string, error) {
	now := time.Now()
	claims := consoleClaims{
		SessionID: sessionID,
		Role:      string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign console token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the session ID.
func (s *TokenSigner) Verify(tokenString string) (string, error) {
	var claims consoleClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.key, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.SessionID == "" {
		return "", fmt.Errorf("invalid console token")
	}
	return claims.SessionID, nil
}
