// Package token issues and verifies stateless access tokens.
//
// Tokens are HS256-signed JWTs whose subject is the user id. They are not
// persisted and cannot be revoked individually: ending a session early only
// revokes its refresh token, and an already-issued access token stays usable
// until its own expiry. That trade-off is deliberate; do not bolt a
// blacklist onto this package.
package token

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appErrors "github.com/devpulse/tracker-api/pkg/errors"
)

// Codec signs and verifies access tokens with a shared secret.
//
// The secret is plain constructor input, not package state, so independent
// instances (one per test, one per deployment) carry independent keys.
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewCodec constructs a Codec. ttl is the access-token lifetime.
func NewCodec(secret, issuer string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Codec{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// TTL returns the configured access-token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for the given user id, expiring ttl from now.
func (c *Codec) Issue(userID int64) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// Verify validates signature, structure and expiry and returns the subject
// user id. Every failure mode collapses into ErrInvalidToken so callers (and
// clients) cannot distinguish a tampered token from an expired one.
func (c *Codec) Verify(tokenString string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrInvalidToken, "")
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return 0, appErrors.Clone(appErrors.ErrInvalidToken, "")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, appErrors.Clone(appErrors.ErrInvalidToken, "")
	}

	return userID, nil
}
