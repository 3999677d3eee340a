package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: "8000"},
		Database: DatabaseConfig{URL: "postgres://localhost/receiptly"},
		JWT:      JWTConfig{SecretKey: "secret", Expiration: time.Hour},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errorString string
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Server.Port = "abc" },
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Server.Port = "70000" },
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "missing database url",
			mutate:      func(c *Config) { c.Database.URL = " " },
			errorString: "DATABASE_URL is required",
		},
		{
			name:        "missing secret",
			mutate:      func(c *Config) { c.JWT.SecretKey = "" },
			errorString: "SECRET_KEY is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.errorString, err.Error())
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "HOST", "DEBUG", "CORS_ORIGINS", "JWT_EXPIRATION_HOURS", "GIGACHAT_API_KEY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiration)
	assert.False(t, cfg.GigaChat.Enabled())
	assert.Equal(t, []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"https://receiptly.leonberkemeier.de",
	}, cfg.Server.AllowedOrigins())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEBUG", "false")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("OCR_LANGUAGES", "eng,deu")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.False(t, cfg.Server.Debug)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins())
	assert.Equal(t, []string{"eng", "deu"}, cfg.OCR.Languages)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "0")

	_, err := Load()
	assert.EqualError(t, err, "invalid port 0: must be between 1 and 65535")
}
