// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, time.Hour, cfg.AccessTokenExpiry)
	assert.Equal(t, 720*time.Hour, cfg.RefreshTokenExpiry)
	assert.Equal(t, 10, cfg.DefaultPageSize)
	assert.Equal(t, 50, cfg.MaxPageSize)
	assert.Equal(t, "mock", cfg.EmailProvider)
	assert.False(t, cfg.UseS3)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "30m")
	t.Setenv("DEFAULT_PAGE_SIZE", "25")
	t.Setenv("USE_S3", "true")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, 25, cfg.DefaultPageSize)
	assert.True(t, cfg.UseS3)
	assert.Equal(t, "http://localhost:9000", cfg.BaseURL)
}

func TestValidate_DevelopmentDefaultsPass(t *testing.T) {
	cfg := Load()
	require.NoError(t, cfg.Validate())
}

func TestValidate_ProductionRejectsDefaultSecret(t *testing.T) {
	cfg := Load()
	cfg.Environment = "production"
	cfg.EmailProvider = "sendgrid"
	cfg.SendGridAPIKey = "key"

	assert.Error(t, cfg.Validate())
}

func TestValidate_ProductionRejectsMockEmail(t *testing.T) {
	cfg := Load()
	cfg.Environment = "production"
	cfg.JWTSecret = "a-real-secret"

	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsUnknownEmailProvider(t *testing.T) {
	cfg := Load()
	cfg.EmailProvider = "carrier-pigeon"

	assert.Error(t, cfg.Validate())
}

func TestValidate_S3RequiresCredentials(t *testing.T) {
	cfg := Load()
	cfg.UseS3 = true
	cfg.AWSAccessKeyID = ""

	assert.Error(t, cfg.Validate())
}
