package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or claim checks.
var ErrInvalidToken = errors.New("invalid session token")

// Signer signs and verifies session cookie values.
// The cookie carries only the session ID; the session itself stays on the server.
type Signer interface {
	// Sign returns a signed token whose subject is sessionID.
	Sign(sessionID string) (string, error)
	// Parse verifies a token and returns its session ID.
	Parse(token string) (string, error)
}

// signer implements the Signer interface with HS256.
type signer struct {
	secret     []byte
	expiration time.Duration
}

// NewSigner creates a new signer with the provided secret and expiration duration.
func NewSigner(secret string, expiration time.Duration) *signer {
	return &signer{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

// Sign creates a signed token with standard claims.
func (s *signer) Sign(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Parse verifies the signature (HMAC only) and expiry, then returns the subject.
func (s *signer) Parse(tokenStr string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
