package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret, sub string, exp time.Time) string {
	t.Helper()
	claims := &Claims{
		Email: "agent@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJWTVerifier_Valid(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	u, err := v.Verify(context.Background(), signToken(t, testSecret, "550e8400-e29b-41d4-a716-446655440000", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", u.ID)
	assert.Equal(t, "agent@example.com", u.Email)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	ctx := context.Background()

	_, err := v.Verify(ctx, "")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = v.Verify(ctx, signToken(t, testSecret, "u1", time.Now().Add(-time.Minute)))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(ctx, signToken(t, "another-secret", "u1", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(ctx, signToken(t, testSecret, "", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(ctx, "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
