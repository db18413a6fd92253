package ratelimit

import (
	"strings"
)

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Returns the matching EndpointConfig or nil if no match is found.
// Configs with Suffix set match the end of the path (for routes with path
// parameters like /users/{id}/subjects/{subject}/lessons/generate); paths
// ending with "/" match as prefixes.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	// Health check endpoint is unlimited
	if path == "/health" && method == "GET" {
		return &EndpointConfig{}
	}

	// Exact match first
	for i := range configs {
		config := &configs[i]
		if !config.Suffix && config.Path == path && config.Method == method {
			return config
		}
	}

	// Suffix match
	for i := range configs {
		config := &configs[i]
		if config.Suffix && config.Method == method && strings.HasSuffix(path, config.Path) {
			return config
		}
	}

	// Prefix match (for paths ending with "/")
	for i := range configs {
		config := &configs[i]
		if config.Method == method && strings.HasSuffix(config.Path, "/") {
			if strings.HasPrefix(path, config.Path) {
				return config
			}
		}
	}

	return nil
}
