// internal/pkg/config/validators_test.go
package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productionConfig() *Config {
	cfg := &Config{}
	cfg.Database.Password = "s3cr3t-db-pass"
	cfg.Database.SSLMode = "require"
	cfg.Security.JWTSecret = "a-very-long-production-secret-value-123456"
	cfg.Security.SecureHeaders = true
	cfg.Security.CSRFProtection = true
	cfg.Security.AllowedOrigins = []string{"https://brecho.example.com"}
	return cfg
}

func TestProductionValidator(t *testing.T) {
	validator := &ProductionValidator{}

	t.Run("accepts_complete_config", func(t *testing.T) {
		require.NoError(t, validator.Validate(productionConfig()))
	})

	t.Run("rejects_unresolved_database_password", func(t *testing.T) {
		cfg := productionConfig()
		cfg.Database.Password = "MISSING_DB_PASSWORD"

		err := validator.Validate(cfg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingRequiredConfig))
		assert.Contains(t, err.Error(), "database password")
	})

	t.Run("rejects_unresolved_jwt_secret", func(t *testing.T) {
		cfg := productionConfig()
		cfg.Security.JWTSecret = "MISSING_JWT_SECRET"

		err := validator.Validate(cfg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingRequiredConfig))
	})

	t.Run("rejects_disabled_ssl", func(t *testing.T) {
		cfg := productionConfig()
		cfg.Database.SSLMode = "disable"

		require.Error(t, validator.Validate(cfg))
	})
}
