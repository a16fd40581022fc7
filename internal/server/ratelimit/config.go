package ratelimit

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (a trailing "/" enables prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// env is the RATE_LIMIT_* environment.
type env struct {
	Enabled         bool          `envconfig:"ENABLED" default:"true"`
	DefaultLimit    int           `envconfig:"DEFAULT_LIMIT" default:"1000"`
	DefaultWindow   time.Duration `envconfig:"DEFAULT_WINDOW" default:"1m"`
	CleanupInterval time.Duration `envconfig:"CLEANUP_INTERVAL" default:"5m"`
	Whitelist       []string      `envconfig:"WHITELIST"`
	Blacklist       []string      `envconfig:"BLACKLIST"`
}

// LoadConfig loads rate limiting configuration from RATE_LIMIT_* environment variables.
func LoadConfig() (*Config, error) {
	var e env
	if err := envconfig.Process("RATE_LIMIT", &e); err != nil {
		return nil, fmt.Errorf("failed to read rate limit environment: %w", err)
	}
	if !e.Enabled {
		return &Config{Enabled: false}, nil
	}
	if e.DefaultLimit <= 0 || e.DefaultWindow <= 0 {
		return nil, fmt.Errorf("rate limit default limit and window must be positive")
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    e.DefaultLimit,
		DefaultWindow:   e.DefaultWindow,
		CleanupInterval: e.CleanupInterval,
		Whitelist:       toSet(e.Whitelist),
		Blacklist:       toSet(e.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}, nil
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Credential endpoints
		{Path: "/auth/login", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},
		{Path: "/auth/register", Method: "POST", Limit: 10, Window: time.Hour, Burst: 3},

		// Résumé uploads and invitations run extraction and screening
		{Path: "/jobs/", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},

		// Writes
		{Path: "/jobs", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/candidates/", Method: "PATCH", Limit: 300, Window: time.Minute, Burst: 30},

		// Reads use the default limit; /health and /metrics are unlimited
	}
}

// toSet builds a lookup set from a list of addresses, ignoring blanks.
func toSet(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, ip := range list {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
