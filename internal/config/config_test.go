package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Port:      "8480",
		JWTSecret: "dev-secret-change-in-production",
		Env:       "development",
	}
}

func TestValidate_Development(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_MissingRequired(t *testing.T) {
	cfg := validConfig()
	cfg.Port = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.JWTSecret = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_ProductionHardening(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	assert.Error(t, cfg.Validate(), "default JWT secret must be rejected in production")

	cfg.JWTSecret = "short"
	assert.Error(t, cfg.Validate(), "short JWT secret must be rejected in production")

	cfg.JWTSecret = "a-sufficiently-long-production-secret-value"
	cfg.DBPassword = "password"
	assert.Error(t, cfg.Validate(), "default DB password must be rejected in production")

	cfg.DBPassword = "s3cure-db-password"
	assert.NoError(t, cfg.Validate())
}
