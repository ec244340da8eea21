package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ApplyPlatformDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://platform/db")
	t.Setenv("PORT", "9090")

	cfg := Config{Addr: defaultAddr}
	cfg.applyPlatformDefaults()
	assert.Equal(t, "postgres://platform/db", cfg.DatabaseURL)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr)

	custom := Config{Addr: "127.0.0.1:7000", DatabaseURL: "postgres://own/db"}
	custom.applyPlatformDefaults()
	assert.Equal(t, "postgres://own/db", custom.DatabaseURL)
	assert.Equal(t, "127.0.0.1:7000", custom.Addr)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			DatabaseURL:  "postgres://localhost/db",
			APIKeyPepper: "pepper",
			RateLimit:    RateLimitConfig{Rate: 10, Burst: 20},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: "database URL is required"},
		{name: "no pepper", mutate: func(c *Config) { c.APIKeyPepper = "" }, wantErr: "pepper is required"},
		{name: "zero rate", mutate: func(c *Config) { c.RateLimit.Rate = 0 }, wantErr: "rate limit must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
