package security

import (
	"context"
	"testing"
	"time"

	"algoforge/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenAuth() *TokenAuth {
	return NewTokenAuth(&config.Config{
		JWTKey: []byte("test-secret"),
		JWTExp: time.Hour,
	})
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	ta := testTokenAuth()

	tokenString, err := ta.GenerateToken("user-1", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	token, err := jwtauth.VerifyToken(ta.Verifier(), tokenString)
	require.NoError(t, err)

	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)

	userID, err := GetUserIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	role, err := GetUserRoleFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "admin", role)

	jti, err := GetTokenIDFromClaims(claims)
	require.NoError(t, err)
	assert.NotEmpty(t, jti)

	exp, err := GetExpiryFromClaims(claims)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)
}

func TestEachTokenGetsAFreshID(t *testing.T) {
	ta := testTokenAuth()

	first, err := ta.GenerateToken("user-1", "user")
	require.NoError(t, err)
	second, err := ta.GenerateToken("user-1", "user")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestGetExpiryFromClaimsBothShapes(t *testing.T) {
	now := time.Now().Truncate(time.Second)

	// jwx hands back a time.Time, golang-jwt a float64.
	exp, err := GetExpiryFromClaims(jwt.MapClaims{"exp": now})
	require.NoError(t, err)
	assert.True(t, exp.Equal(now))

	exp, err = GetExpiryFromClaims(jwt.MapClaims{"exp": float64(now.Unix())})
	require.NoError(t, err)
	assert.True(t, exp.Equal(now))

	_, err = GetExpiryFromClaims(jwt.MapClaims{})
	assert.Error(t, err)
}

func TestClaimHelpersRejectMissingClaims(t *testing.T) {
	empty := jwt.MapClaims{}

	_, err := GetUserIDFromClaims(empty)
	assert.Error(t, err)
	_, err = GetUserRoleFromClaims(empty)
	assert.Error(t, err)
	_, err = GetTokenIDFromClaims(empty)
	assert.Error(t, err)
}
