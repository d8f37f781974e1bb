package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultUserAgent is the desktop browser agent sent to the search provider.
// The provider degrades or blocks its HTML page for non-browser agents.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// DefaultSearchTimeout is the per-attempt provider timeout. A fetch makes at
// most two attempts, so a search is bounded by twice this value.
// SEARCH_HTTP_TIMEOUT may override it, but 15s is the documented contract.
const DefaultSearchTimeout = 15 * time.Second

// Config holds the environment driven configuration for the waves server.
// Proxy settings are intentionally absent: they are resolved on every search
// through the configsource package.
type Config struct {
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"waves-server"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"PORT" envDefault:"8000"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"` // json or console
	QueryPIILevel   string        `env:"LOG_QUERY_PII_LEVEL" envDefault:"hashed"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Search provider
	SearchProviderURL string        `env:"SEARCH_PROVIDER_URL" envDefault:"https://duckduckgo.com/html/"`
	SearchUserAgent   string        `env:"SEARCH_USER_AGENT"`
	SearchHTTPTimeout time.Duration `env:"SEARCH_HTTP_TIMEOUT" envDefault:"15s"`
	ProxyConfigFile   string        `env:"PROXY_CONFIG_FILE"`

	// Document store
	RedisURL       string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"waves:"`
	DatabaseName   string `env:"DATABASE_NAME"`

	// Observability
	EnableTracing     bool    `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint      string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTLPHeaders       string  `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	TracingSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	MCPEnabled bool `env:"MCP_ENABLED" envDefault:"true"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if strings.TrimSpace(cfg.SearchUserAgent) == "" {
		cfg.SearchUserAgent = DefaultUserAgent
	}
	if cfg.SearchHTTPTimeout <= 0 {
		cfg.SearchHTTPTimeout = DefaultSearchTimeout
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.HTTPPort)
	}
	if _, err := url.ParseRequestURI(cfg.SearchProviderURL); err != nil {
		return nil, fmt.Errorf("SEARCH_PROVIDER_URL is invalid: %w", err)
	}
	if cfg.TracingSampleRate < 0 || cfg.TracingSampleRate > 1 {
		cfg.TracingSampleRate = 1.0
	}

	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
