package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is off.
// Methods lists the HTTP methods to cache. KeyStrategy determines which
// parts of the request contribute to the cache key. Skip lists route
// patterns that are never cached even when the method matches.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
	Skip         map[string]bool
}

// LoadCacheConfig reads the CACHE_* variables. Seat maps and the live feed
// change on every sale, so their routes are skipped by default.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseList(envStr("CACHE_METHODS", "GET"), strings.ToUpper),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
		Skip:         parseList(envStr("CACHE_SKIP_ROUTES", "/v1/sessions/:id,/v1/sessions/:id/seats,/v1/sessions/:id/live"), strings.TrimSpace),
	}
}

func parseList(s string, norm func(string) string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = norm(strings.TrimSpace(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
