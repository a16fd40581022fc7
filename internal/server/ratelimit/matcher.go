package ratelimit

import (
	"strings"
)

// unlimited is returned for endpoints that are never limited.
var unlimited = EndpointConfig{Path: "unlimited"}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Exact paths win over prefixes ("/jobs/" matches "/jobs/{id}/candidates"),
// and the longest matching prefix wins among prefixes. Returns nil if nothing matches.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "GET" && (path == "/health" || path == "/metrics") {
		return &unlimited
	}

	for i := range configs {
		if configs[i].Path == path && configs[i].Method == method {
			return &configs[i]
		}
	}

	var best *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method || !strings.HasSuffix(c.Path, "/") || !strings.HasPrefix(path, c.Path) {
			continue
		}
		if best == nil || len(c.Path) > len(best.Path) {
			best = c
		}
	}
	return best
}
