package config

import "time"

// CacheConfig defines tuning for the response cache middleware.  The
// on/off state of caching itself is not configured here: it lives on
// the settings row (services.cacheService) so admins can flip it at
// runtime.  DefaultTTL applies when the settings row carries no TTL;
// MaxBodyBytes bounds the size of a response body worth caching.
type CacheConfig struct {
	DefaultTTL   time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		DefaultTTL:   envDur("CACHE_TTL", 5*time.Minute),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
