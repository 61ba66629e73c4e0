package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// Config holds runtime configuration values for the memorial server.
type Config struct {
	ServerPort    int
	LogLevel      string
	Environment   string
	SentryDSN     string
	ShutdownGrace time.Duration

	DBDriver string
	DBDSN    string

	JWTSecret string

	Storage StorageConfig

	RateLimit RateLimitConfig
}

// StorageConfig describes the object storage bucket holding memorial images.
type StorageConfig struct {
	Endpoint        string
	Bucket          string
	AccessKeyID     string
	AccessKeySecret string
	// PublicBaseURL overrides the URL prefix public object URLs are served
	// under. Empty means "derive from endpoint and bucket".
	PublicBaseURL string
}

// RateLimitConfig configures the per-client HTTP rate limiter.
type RateLimitConfig struct {
	Burst             int
	RequestsPerSecond float64
	ClientTTL         time.Duration
}

const (
	defaultServerPort    = 8080
	defaultLogLevel      = "info"
	defaultDBDriver      = "sqlite"
	defaultDBDSN         = "./data/memorials.db"
	defaultShutdownGrace = 10 * time.Second

	defaultRateLimitBurst = 20
	defaultRateLimitRPS   = 5.0
	defaultRateLimitTTL   = 10 * time.Minute
)

// Load reads configuration values from environment variables, applying defaults where necessary.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:      getEnv("LOG_LEVEL", defaultLogLevel),
		Environment:   os.Getenv("ENV"),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		ShutdownGrace: defaultShutdownGrace,
		DBDriver:      getEnv("DB_DRIVER", defaultDBDriver),
		DBDSN:         getEnv("DB_DSN", defaultDBDSN),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		Storage: StorageConfig{
			Endpoint:        os.Getenv("OSS_ENDPOINT"),
			Bucket:          getEnv("OSS_BUCKET", "memorial-images"),
			AccessKeyID:     os.Getenv("OSS_ACCESS_KEY_ID"),
			AccessKeySecret: os.Getenv("OSS_ACCESS_KEY_SECRET"),
			PublicBaseURL:   os.Getenv("OSS_PUBLIC_BASE_URL"),
		},
		RateLimit: RateLimitConfig{
			Burst:             defaultRateLimitBurst,
			RequestsPerSecond: defaultRateLimitRPS,
			ClientTTL:         defaultRateLimitTTL,
		},
	}

	portValue := getEnv("SERVER_PORT", strconv.Itoa(defaultServerPort))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid SERVER_PORT value: %s", portValue)
	}
	cfg.ServerPort = port

	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		return nil, eris.Errorf("unsupported DB_DRIVER value: %s", cfg.DBDriver)
	}

	if cfg.JWTSecret == "" {
		return nil, eris.New("JWT_SECRET is required")
	}

	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		parsed, err := strconv.Atoi(burst)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid RATE_LIMIT_BURST value: %s", burst)
		}
		cfg.RateLimit.Burst = parsed
	}

	if rps := os.Getenv("RATE_LIMIT_RPS"); rps != "" {
		parsed, err := strconv.ParseFloat(rps, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid RATE_LIMIT_RPS value: %s", rps)
		}
		cfg.RateLimit.RequestsPerSecond = parsed
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
