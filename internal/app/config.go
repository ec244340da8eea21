package app

import (
	"io/fs"
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (CATALOG_ prefix), a .env file, flags, or YAML
// config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string `usage:"PostgreSQL connection URL (CATALOG_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	ImageBaseURL string `default:"https://orbitmediasolutions.com/" usage:"Base URL joined with relative image paths" flag:"image-base-url"`
	APIKeyPepper string `usage:"HMAC pepper for API key hashing (CATALOG_API_KEY_PEPPER)" flag:"api-key-pepper"`
	Content      ContentConfig
	Catalog      CatalogConfig
	Reachability ReachabilityConfig
	RateLimit    RateLimitConfig
	Graceful     GracefulConfig
}

// ContentConfig controls the content origin client.
type ContentConfig struct {
	BaseURL      string        `default:"https://orbitmediasolutions.com/" usage:"Content origin base URL" flag:"content-base-url"`
	Timeout      time.Duration `default:"0s" usage:"Per-request timeout, 0 disables it" flag:"content-timeout"`
	MaxBodyBytes int64         `default:"8388608" usage:"Maximum response body size" flag:"content-max-body"`
}

// CatalogConfig controls catalog refreshes.
type CatalogConfig struct {
	RefreshSchedule string `default:"@every 5m" usage:"Cron schedule of background refreshes, empty disables them" flag:"refresh-schedule"`
	Supersede       bool   `default:"false" usage:"Drop refresh results overtaken by a newer refresh" flag:"supersede"`
}

// ReachabilityConfig controls the content origin reachability monitor.
type ReachabilityConfig struct {
	Interval    time.Duration `default:"10s" usage:"Probe interval" flag:"reachability-interval"`
	DialTimeout time.Duration `default:"3s"  usage:"Probe dial timeout" flag:"reachability-dial-timeout"`
}

// RateLimitConfig controls the per-client token bucket rate limiter.
type RateLimitConfig struct {
	Rate  float64 `default:"10" usage:"Sustained requests per second per client"`
	Burst int     `default:"20" usage:"Rate limit burst size"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from .env, environment variables and YAML
// config files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CATALOG",
		Files:     []string{"config.yaml", "/etc/catalog/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database URL is required: set CATALOG_DATABASE_URL or DATABASE_URL")
	}
	if c.APIKeyPepper == "" {
		return errors.New("API key pepper is required: set CATALOG_API_KEY_PEPPER")
	}
	if c.RateLimit.Rate <= 0 {
		return errors.Errorf("rate limit must be positive, got %v", c.RateLimit.Rate)
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's CATALOG_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
