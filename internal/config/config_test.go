package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "tablefolk", cfg.Database.Namespace)
	assert.Equal(t, 15, cfg.JWT.ExpirationMins)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocode.BaseURL)
	assert.Equal(t, 512, cfg.Geocode.CacheSize)
	assert.False(t, cfg.Push.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_ENV", "test")
	t.Setenv("DB_NAMESPACE", "custom")
	t.Setenv("JWT_EXPIRATION_MINS", "60")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("GEOCODE_CACHE_SIZE", "64")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.Env)
	assert.Equal(t, "custom", cfg.Database.Namespace)
	assert.Equal(t, 60, cfg.JWT.ExpirationMins)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 64, cfg.Geocode.CacheSize)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, _ := Load()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "default config is valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid env",
			mutate:  func(c *Config) { c.Server.Env = "staging" },
			wantErr: "SERVER_ENV",
		},
		{
			name:    "missing db host",
			mutate:  func(c *Config) { c.Database.Host = "" },
			wantErr: "DB_HOST",
		},
		{
			name:    "non-positive jwt expiration",
			mutate:  func(c *Config) { c.JWT.ExpirationMins = 0 },
			wantErr: "JWT_EXPIRATION_MINS",
		},
		{
			name: "production requires jwt keys",
			mutate: func(c *Config) {
				c.Server.Env = "production"
				c.JWT.PrivateKeyPath = ""
			},
			wantErr: "JWT_PRIVATE_KEY_PATH",
		},
		{
			name: "push enabled requires credentials",
			mutate: func(c *Config) {
				c.Push.Enabled = true
				c.Push.CredentialsPath = ""
			},
			wantErr: "PUSH_CREDENTIALS_PATH",
		},
		{
			name: "partial google oauth config",
			mutate: func(c *Config) {
				c.OAuth.Google.ClientID = "abc"
			},
			wantErr: "GOOGLE_CLIENT_SECRET",
		},
		{
			name:    "zero geocode cache",
			mutate:  func(c *Config) { c.Geocode.CacheSize = 0 },
			wantErr: "GEOCODE_CACHE_SIZE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
