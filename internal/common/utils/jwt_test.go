// internal/common/utils/jwt_test.go
package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClaims(tokenType string, expiry time.Duration) *JWTClaims {
	now := time.Now()
	return &JWTClaims{
		UserID:    42,
		Username:  "alice",
		Type:      tokenType,
		ExpiresAt: now.Add(expiry).Unix(),
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
		Issuer:    "instaclone-backend",
		Subject:   "42",
		ID:        "jti-1234",
	}
}

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT(testClaims("access", time.Hour), "secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token, "secret")
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, "instaclone-backend", claims.Issuer)
	assert.Equal(t, "jti-1234", claims.ID)
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT(testClaims("access", time.Hour), "secret")
	require.NoError(t, err)

	_, err = ValidateJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateJWT_Expired(t *testing.T) {
	token, err := GenerateJWT(testClaims("access", -time.Hour), "secret")
	require.NoError(t, err)

	_, err = ValidateJWT(token, "secret")
	assert.Error(t, err)
}

func TestValidateJWT_Garbage(t *testing.T) {
	_, err := ValidateJWT("not.a.token", "secret")
	assert.Error(t, err)
}

func TestValidateJWT_PreservesTokenType(t *testing.T) {
	token, err := GenerateJWT(testClaims("refresh", time.Hour), "secret")
	require.NoError(t, err)

	claims, err := ValidateJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.Type)
}
