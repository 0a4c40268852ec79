package config

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/halvets/tunerank/errors"
)

// Request limit defaults
const (
	DefaultMaxCatalogSize  = 10000
	DefaultMaxRequestBytes = 10 << 20
	DefaultRankTopK        = 10
	DefaultRecommendTopK   = 20
)

type Config struct {
	Port     string
	LogLevel string

	RateLimitEnabled bool
	RateLimitRPS     int
	RateLimitBurst   int

	CORSEnabled      bool
	CORSAllowOrigins []string

	SecurityHeadersEnabled bool

	MaxCatalogSize   int
	MaxRequestBytes  int64
	RankTopKDefault  int
	RecommendDefault int
}

func New() *Config {
	var (
		port             = flag.String("port", getEnvOrDefault("PORT", "8080"), "HTTP server port")
		logLevel         = flag.String("log-level", getEnvOrDefault("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
		rateLimitEnabled = flag.Bool("rate-limit", getEnvBoolOrDefault("RATE_LIMIT_ENABLED", true), "Enable request rate limiting")
		rateLimitRPS     = flag.Int("rate-limit-rps", getEnvIntOrDefault("RATE_LIMIT_RPS", 100), "Rate limit requests per second")
		rateLimitBurst   = flag.Int("rate-limit-burst", getEnvIntOrDefault("RATE_LIMIT_BURST", 200), "Rate limit burst size")
		corsEnabled      = flag.Bool("cors", getEnvBoolOrDefault("CORS_ENABLED", false), "Enable CORS headers")
		corsOrigins      = flag.String("cors-origins", getEnvOrDefault("CORS_ORIGINS", "*"), "Comma-separated allowed CORS origins")
		securityHeaders  = flag.Bool("security-headers", getEnvBoolOrDefault("SECURITY_HEADERS_ENABLED", true), "Enable security headers middleware")
		maxCatalogSize   = flag.Int("max-catalog-size", getEnvIntOrDefault("MAX_CATALOG_SIZE", DefaultMaxCatalogSize), "Maximum number of songs accepted per request")
		maxRequestBytes  = flag.Int64("max-request-bytes", getEnvInt64OrDefault("MAX_REQUEST_BYTES", DefaultMaxRequestBytes), "Maximum request body size in bytes")
	)
	flag.Parse()

	return &Config{
		Port:                   *port,
		LogLevel:               *logLevel,
		RateLimitEnabled:       *rateLimitEnabled,
		RateLimitRPS:           *rateLimitRPS,
		RateLimitBurst:         *rateLimitBurst,
		CORSEnabled:            *corsEnabled,
		CORSAllowOrigins:       splitAndTrim(*corsOrigins),
		SecurityHeadersEnabled: *securityHeaders,
		MaxCatalogSize:         *maxCatalogSize,
		MaxRequestBytes:        *maxRequestBytes,
		RankTopKDefault:        DefaultRankTopK,
		RecommendDefault:       DefaultRecommendTopK,
	}
}

func (c *Config) Validate() error {
	portNum, err := strconv.Atoi(c.Port)
	if err != nil || portNum < 1 || portNum > 65535 {
		return errors.ErrInvalidPort.WithContext("port", c.Port)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.ErrInvalidLogLevel.WithContext("log_level", c.LogLevel)
	}

	if c.RateLimitEnabled {
		if c.RateLimitRPS < 1 || c.RateLimitBurst < 1 {
			return errors.ErrInvalidRateLimit.
				WithContext("rps", c.RateLimitRPS).
				WithContext("burst", c.RateLimitBurst)
		}
	}

	if c.MaxCatalogSize < 1 {
		return errors.ErrInvalidCatalogLimit.WithContext("max_catalog_size", c.MaxCatalogSize)
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
