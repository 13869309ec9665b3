// Package config loads application configuration from environment
// variables. A .env file in the working directory is read first when present.
package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Catalog sources.
const (
	CatalogDB   = "db"
	CatalogFile = "file"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env            string // application environment (dev, prod)
	Port           string // HTTP port to listen on
	DBUser         string
	DBPass         string // empty allowed
	DBHost         string
	DBPort         string
	DBName         string
	JWTSecret      string // secret used to sign access tokens
	AccessTTLMin   int    // access token lifetime in minutes
	RefreshTTLDays int    // refresh token lifetime in days
	BcryptCost     int
	// SchemaPath, when set, is applied to MySQL at startup.
	SchemaPath string

	LogLevel slog.Level

	// RabbitMQURL enables the tickets.issued publisher and consumer when set.
	RabbitMQURL string
	// AnalyticsDatabaseURL switches the consumer sink from the ticket log
	// file to Postgres.
	AnalyticsDatabaseURL string
	TicketLogPath        string

	CartTTL       time.Duration
	CatalogSource string // "db" or "file"
	CatalogPath   string // YAML seed used when CatalogSource is "file"
	// DemoOccupancy is the share of seats shown as already sold in every
	// session. 0 turns it off.
	DemoOccupancy float64

	Redis     RedisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// Load reads configuration values from the environment. Required variables
// are enforced by must and missing values stop the program.
func Load() Config {
	_ = godotenv.Load() // .env is optional

	level, err := parseLogLevel(envStr("LOG_LEVEL", "info"))
	if err != nil {
		log.Fatal(err)
	}
	source := strings.ToLower(envStr("CATALOG_SOURCE", CatalogDB))
	if source != CatalogDB && source != CatalogFile {
		log.Fatalf("invalid CATALOG_SOURCE %q (want %s or %s)", source, CatalogDB, CatalogFile)
	}
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		SchemaPath:     os.Getenv("DB_SCHEMA_PATH"),

		LogLevel: level,

		RabbitMQURL:          firstEnv("RABBITMQ_URL", "AMQP_URL"),
		AnalyticsDatabaseURL: os.Getenv("ANALYTICS_DATABASE_URL"),
		TicketLogPath:        envStr("TICKET_LOG_PATH", "logs/tickets.log"),

		CartTTL:       envDur("CART_TTL", 30*time.Minute),
		CatalogSource: source,
		CatalogPath:   envStr("CATALOG_PATH", "configs/catalog.yaml"),
		DemoOccupancy: envFloat("DEMO_OCCUPANCY", 0),

		Redis:     LoadRedisConfig(),
		Cache:     LoadCacheConfig(),
		RateLimit: LoadRateLimitConfig(),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must but converts the value into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
}
