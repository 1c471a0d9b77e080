package auth

import (
	"testing"
	"time"

	"tokenvault/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{AccessSecret: "test-secret", AccessExpiry: time.Hour, Issuer: "tokenvault"}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	tok, err := GenerateAccessToken(cfg, "user-1", "user@example.com")
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "tokenvault", claims.Issuer)
}

func TestParseAccessTokenRejects(t *testing.T) {
	cfg := testJWTConfig()

	other := *cfg
	other.AccessSecret = "other-secret"
	wrongSecret, err := GenerateAccessToken(&other, "user-1", "user@example.com")
	require.NoError(t, err)

	other = *cfg
	other.Issuer = "someone-else"
	wrongIssuer, err := GenerateAccessToken(&other, "user-1", "user@example.com")
	require.NoError(t, err)

	other = *cfg
	other.AccessExpiry = -time.Minute
	expired, err := GenerateAccessToken(&other, "user-1", "user@example.com")
	require.NoError(t, err)

	noUser, err := GenerateAccessToken(cfg, "", "user@example.com")
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"wrong secret": wrongSecret,
		"wrong issuer": wrongIssuer,
		"expired":      expired,
		"no user":      noUser,
		"alg none":     unsigned,
		"garbage":      "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAccessToken(cfg, tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
