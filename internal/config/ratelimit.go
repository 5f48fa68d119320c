package config

import (
	"strings"
	"time"
)

// RateLimitConfig describes the Redis token bucket applied to the API.
// Capacity tokens are available up front and RefillTokens are added every
// RefillInterval. Buckets idle for TTL are dropped by Redis.
//
// StrictRoutes ("METHOD /path" as registered) draw from a separate, smaller
// bucket of StrictCapacity tokens: credential checks and booking creation.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	StrictCapacity int
	StrictRoutes   map[string]bool
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string // ip, user, route, ip_user, ip_route, user_route, ip_user_route
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables and clamps them to sane
// minimums.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		StrictCapacity: envInt("RATE_LIMIT_STRICT_CAPACITY", 10),
		StrictRoutes:   routeSet(envStr("RATE_LIMIT_STRICT_ROUTES", defaultStrictRoutes)),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "tb:rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	return cfg.normalized()
}

const defaultStrictRoutes = "POST /v1/auth/login,POST /v1/auth/register,POST /v1/auth/refresh," +
	"GET /v1/auth/google/callback,POST /v1/bookings,POST /v1/reviews"

func routeSet(s string) map[string]bool {
	out := map[string]bool{}
	for _, r := range splitList(s) {
		if method, path, ok := strings.Cut(r, " "); ok {
			out[strings.ToUpper(method)+" "+strings.TrimSpace(path)] = true
		}
	}
	return out
}

func (c RateLimitConfig) normalized() RateLimitConfig {
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.StrictCapacity < 1 || c.StrictCapacity > c.Capacity {
		c.StrictCapacity = c.Capacity
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	// a bucket must outlive at least a few refills or it never drains
	if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
		c.TTL = minTTL
	}
	return c
}
