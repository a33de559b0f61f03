package ratelimit

import "strings"

var unlimited = &EndpointConfig{}

// MatchEndpoint finds the configuration for a request. Exact paths win over
// prefixes. Health and metrics probes are never limited. Returns nil when no
// configuration matches.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "GET" && (path == "/health" || path == "/metrics") {
		return unlimited
	}

	for i := range configs {
		if configs[i].Path == path && configs[i].Method == method {
			return &configs[i]
		}
	}

	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}
	return nil
}
