package config

import (
	"testing"
	"time"
)

func TestLoadRateLimitConfigClampsValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Fatalf("capacity = %d, want 1", cfg.Capacity)
	}
	if cfg.RefillTokens != 1 {
		t.Fatalf("refill tokens = %d, want 1", cfg.RefillTokens)
	}
	if cfg.TTL != 10*time.Second {
		t.Fatalf("ttl = %s, want 10s", cfg.TTL)
	}
	if cfg.StrictCapacity != 1 {
		t.Fatalf("strict capacity = %d, must not exceed capacity", cfg.StrictCapacity)
	}
}

func TestStrictRoutes(t *testing.T) {
	t.Setenv("RATE_LIMIT_STRICT_ROUTES", "post /v1/auth/login, GET /v1/auth/google/callback,bogus")
	cfg := LoadRateLimitConfig()
	if len(cfg.StrictRoutes) != 2 || !cfg.StrictRoutes["POST /v1/auth/login"] || !cfg.StrictRoutes["GET /v1/auth/google/callback"] {
		t.Fatalf("strict routes = %v", cfg.StrictRoutes)
	}

	t.Setenv("RATE_LIMIT_STRICT_ROUTES", "")
	if cfg := LoadRateLimitConfig(); !cfg.StrictRoutes["POST /v1/bookings"] {
		t.Fatalf("default strict routes = %v", cfg.StrictRoutes)
	}
}

func TestLoadCacheConfigDefaults(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	cfg := LoadCacheConfig()
	if !cfg.Methods["GET"] || !cfg.Methods["HEAD"] {
		t.Fatalf("methods = %v", cfg.Methods)
	}
	if cfg.KeyStrategy != "route_query_lang" {
		t.Fatalf("key strategy = %q", cfg.KeyStrategy)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("X_FLAG", "off")
	if envBool("X_FLAG", true) {
		t.Fatal("expected false for off")
	}
	t.Setenv("X_FLAG", "maybe")
	if !envBool("X_FLAG", true) {
		t.Fatal("expected default for unknown value")
	}
}

func TestRabbitURLFallbacks(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://u:p@broker:5672/")
	if got := RabbitURL(); got != "amqp://u:p@broker:5672/" {
		t.Fatalf("RabbitURL() = %q", got)
	}
}

func TestLoadWorkerConfig(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "amqp://w:p@mq:5672/")
	t.Setenv("BOOKING_LOG_DIR", "/var/log/bookings")
	w := LoadWorkerConfig()
	if w.RabbitURL != "amqp://w:p@mq:5672/" || w.BookingLogDir != "/var/log/bookings" {
		t.Fatalf("LoadWorkerConfig() = %+v", w)
	}

	t.Setenv("BOOKING_LOG_DIR", "")
	if w := LoadWorkerConfig(); w.BookingLogDir != "logs" {
		t.Fatalf("default log dir = %q", w.BookingLogDir)
	}
}
