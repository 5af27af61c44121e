package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rbac-service/pkg/config"
)

func testConfig() *config.JWTConfig {
	return &config.JWTConfig{
		SigningKey:        "test-signing-key",
		Algorithm:         "HS256",
		ExpirationMinutes: 30,
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(&config.JWTConfig{Algorithm: "HS256"})
	assert.Error(t, err, "empty signing key must be rejected")

	_, err = New(&config.JWTConfig{SigningKey: "k", Algorithm: "XX999"})
	assert.Error(t, err, "unknown algorithm must be rejected")

	// Asymmetric methods make no sense with a shared secret.
	_, err = New(&config.JWTConfig{SigningKey: "k", Algorithm: "RS256"})
	assert.Error(t, err)

	_, err = New(&config.JWTConfig{SigningKey: "k", Algorithm: "none"})
	assert.Error(t, err)

	j, err := New(&config.JWTConfig{SigningKey: "k", Algorithm: "HS512", ExpirationMinutes: 5})
	require.NoError(t, err)
	assert.NotNil(t, j)
}

func TestTokenRoundTrip(t *testing.T) {
	j, err := New(testConfig())
	require.NoError(t, err)

	token, err := j.GenerateToken("alice", []string{"user:r", "user:u"})
	require.NoError(t, err)

	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, []string{"user:r", "user:u"}, claims.Scopes)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func TestExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.ExpirationMinutes = -1
	j, err := New(cfg)
	require.NoError(t, err)

	token, err := j.GenerateToken("alice", []string{"user:r"})
	require.NoError(t, err)

	_, err = j.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestWrongSigningKey(t *testing.T) {
	j1, err := New(testConfig())
	require.NoError(t, err)
	cfg := testConfig()
	cfg.SigningKey = "a-different-key"
	j2, err := New(cfg)
	require.NoError(t, err)

	token, err := j1.GenerateToken("alice", []string{"user:r"})
	require.NoError(t, err)

	_, err = j2.ValidateToken(token)
	assert.Error(t, err)
}

func TestAlgorithmConfusionRejected(t *testing.T) {
	j, err := New(testConfig())
	require.NoError(t, err)

	// A token signed with a method outside the allow-list must not verify,
	// even with the right key.
	claims := AccessClaims{
		Scopes: []string{"user:r"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := forged.SignedString([]byte(testConfig().SigningKey))
	require.NoError(t, err)

	_, err = j.ValidateToken(signed)
	assert.Error(t, err)

	_, err = j.ValidateToken("not.a.token")
	assert.Error(t, err)
}
