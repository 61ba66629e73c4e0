package config

import (
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"SERVER_PORT", "LOG_LEVEL", "ENV", "SENTRY_DSN",
		"DB_DRIVER", "DB_DSN",
		"OSS_ENDPOINT", "OSS_BUCKET", "OSS_ACCESS_KEY_ID", "OSS_ACCESS_KEY_SECRET", "OSS_PUBLIC_BASE_URL",
		"RATE_LIMIT_BURST", "RATE_LIMIT_RPS",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ServerPort != defaultServerPort {
		t.Errorf("expected default server port %d, got %d", defaultServerPort, cfg.ServerPort)
	}

	if cfg.LogLevel != defaultLogLevel {
		t.Errorf("expected default log level %q, got %q", defaultLogLevel, cfg.LogLevel)
	}

	if cfg.DBDriver != defaultDBDriver {
		t.Errorf("expected default DB driver %q, got %q", defaultDBDriver, cfg.DBDriver)
	}

	if cfg.DBDSN != defaultDBDSN {
		t.Errorf("expected default DB DSN %q, got %q", defaultDBDSN, cfg.DBDSN)
	}

	if cfg.Storage.Bucket != "memorial-images" {
		t.Errorf("expected default bucket memorial-images, got %q", cfg.Storage.Bucket)
	}

	if cfg.ShutdownGrace != defaultShutdownGrace {
		t.Errorf("expected shutdown grace %s, got %s", defaultShutdownGrace, cfg.ShutdownGrace)
	}

	if cfg.RateLimit.Burst != defaultRateLimitBurst {
		t.Errorf("expected default rate limit burst %d, got %d", defaultRateLimitBurst, cfg.RateLimit.Burst)
	}
}

func TestLoadWithExplicitValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ENV", "production")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "host=localhost user=memorial dbname=memorial")
	t.Setenv("OSS_ENDPOINT", "oss-eu-central-1.aliyuncs.com")
	t.Setenv("OSS_BUCKET", "keepsakes")
	t.Setenv("OSS_PUBLIC_BASE_URL", "https://cdn.example.com/memorial-images")
	t.Setenv("RATE_LIMIT_BURST", "50")
	t.Setenv("RATE_LIMIT_RPS", "12.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("expected server port 9090, got %d", cfg.ServerPort)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.LogLevel)
	}

	if cfg.Environment != "production" {
		t.Errorf("expected environment production, got %q", cfg.Environment)
	}

	if cfg.DBDriver != "postgres" {
		t.Errorf("expected DB driver postgres, got %q", cfg.DBDriver)
	}

	if cfg.Storage.Endpoint != "oss-eu-central-1.aliyuncs.com" {
		t.Errorf("unexpected storage endpoint %q", cfg.Storage.Endpoint)
	}

	if cfg.Storage.Bucket != "keepsakes" {
		t.Errorf("unexpected storage bucket %q", cfg.Storage.Bucket)
	}

	if cfg.Storage.PublicBaseURL != "https://cdn.example.com/memorial-images" {
		t.Errorf("unexpected public base URL %q", cfg.Storage.PublicBaseURL)
	}

	if cfg.RateLimit.Burst != 50 {
		t.Errorf("expected rate limit burst 50, got %d", cfg.RateLimit.Burst)
	}

	if cfg.RateLimit.RequestsPerSecond != 12.5 {
		t.Errorf("expected rate limit rps 12.5, got %f", cfg.RateLimit.RequestsPerSecond)
	}
}

func TestLoadInvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "invalid")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for invalid port, got nil")
	}

	if !strings.Contains(err.Error(), "invalid SERVER_PORT value") {
		t.Fatalf("expected error to mention invalid SERVER_PORT value, got %v", err)
	}
}

func TestLoadUnsupportedDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for unsupported driver, got nil")
	}

	if !strings.Contains(err.Error(), "unsupported DB_DRIVER value") {
		t.Fatalf("expected error to mention unsupported DB_DRIVER value, got %v", err)
	}
}

func TestLoadMissingJWTSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing, got nil")
	}

	if !strings.Contains(err.Error(), "JWT_SECRET is required") {
		t.Fatalf("expected error to mention JWT_SECRET, got %v", err)
	}
}
