package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		jwtSecret   string
		dbPassword  string
		port        string
		expectError bool
	}{
		{"Development with defaults", "development", "your-secret-key-change-in-production", "password", "8480", false},
		{"Production with default secret", "production", "your-secret-key-change-in-production", "secure-password", "8480", true},
		{"Production with short secret", "production", "too-short", "secure-password", "8480", true},
		{"Production with default db password", "production", "secure-secret-at-least-32-chars-long", "password", "8480", true},
		{"Production fully configured", "production", "secure-secret-at-least-32-chars-long", "secure-password", "8480", false},
		{"Prod alias fully configured", "prod", "secure-secret-at-least-32-chars-long", "secure-password", "8480", false},
		{"Missing port", "development", "secret", "password", "", true},
		{"Missing JWT secret", "development", "", "password", "8480", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Env:        tt.env,
				JWTSecret:  tt.jwtSecret,
				DBPassword: tt.dbPassword,
				DBSSLMode:  "require",
				Port:       tt.port,
				RedisURL:   "redis://localhost:6379",
			}

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "8480", c.Port)
	assert.Equal(t, "inkwell", c.DBName)
	assert.Equal(t, "development", c.Env)
	assert.False(t, c.IsProduction())
}
