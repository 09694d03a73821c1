package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (CHEB_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"Storefront listen address"`
	UpstreamURL string `default:"http://localhost:5023/api" usage:"Restaurant API base URL" flag:"upstream-url"`
	RedisURL    string `usage:"Redis connection URL; empty keeps cart and session in process memory" flag:"redis-url"`
	RedisPrefix string `default:"cheburek" usage:"Key prefix for Redis storage slots" flag:"redis-prefix"`
	Probe       ProbeConfig
	Checkout    CheckoutConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// ProbeConfig controls the upstream availability prober and catalog fetches.
type ProbeConfig struct {
	Interval     time.Duration `default:"30s" usage:"Availability probe interval"`
	Timeout      time.Duration `default:"5s"  usage:"Availability probe timeout"`
	FetchTimeout time.Duration `default:"10s" usage:"Catalog fetch timeout before falling back" flag:"fetch-timeout"`
}

// CheckoutConfig controls order submission.
type CheckoutConfig struct {
	ProcessingDelay time.Duration `default:"1500ms" usage:"Simulated order processing delay" flag:"processing-delay"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CHEB",
		Files:     []string{"config.yaml", "/etc/cheburek/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like REDIS_URL and PORT to the
// application's CHEB_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.RedisURL == "" {
		if v := os.Getenv("REDIS_URL"); v != "" {
			c.RedisURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
