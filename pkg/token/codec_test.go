package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/devpulse/tracker-api/pkg/errors"
)

func TestIssueAndVerify(t *testing.T) {
	c := NewCodec("test-secret", "tracker-api", 15*time.Minute)

	signed, err := c.Issue(42)
	require.NoError(t, err)

	userID, err := c.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestVerifyWrongSecret(t *testing.T) {
	signed, err := NewCodec("secret-a", "tracker-api", time.Minute).Issue(1)
	require.NoError(t, err)

	_, err = NewCodec("secret-b", "tracker-api", time.Minute).Verify(signed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
}

func TestVerifyExpired(t *testing.T) {
	c := NewCodec("test-secret", "tracker-api", time.Minute)

	claims := jwt.RegisteredClaims{
		Subject:   "42",
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = c.Verify(signed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	c := NewCodec("test-secret", "tracker-api", time.Minute)

	claims := jwt.RegisteredClaims{Subject: "42", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = c.Verify(unsigned)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
}

func TestVerifyNonNumericSubject(t *testing.T) {
	c := NewCodec("test-secret", "tracker-api", time.Minute)

	claims := jwt.RegisteredClaims{Subject: "not-a-number", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = c.Verify(signed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
}

func TestVerifyGarbage(t *testing.T) {
	c := NewCodec("test-secret", "tracker-api", time.Minute)

	_, err := c.Verify("definitely.not.a.jwt")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
}
