package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// SnapWin public configuration, required (see Validate)
	PublicURL    string
	PublicAPIKey string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// List queries
	LookupLimit    int
	LookupCacheTTL time.Duration

	// Realtime refresh
	RefreshDebounce time.Duration

	// Support chat
	TypingIdle      time.Duration
	TypingExpiry    time.Duration
	ReconcileWindow time.Duration

	// Remote functions
	FunctionTimeout time.Duration

	// Rate limiting
	RateLimitPerMinute int

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// SnapWin public endpoint
		PublicURL:    getEnv("SNAPWIN_PUBLIC_URL", ""),
		PublicAPIKey: getEnv("SNAPWIN_PUBLIC_API_KEY", ""),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// List queries
		LookupLimit:    getEnvAsInt("LOOKUP_LIMIT", 50),
		LookupCacheTTL: getEnvAsDuration("LOOKUP_CACHE_TTL", "30s"),

		// Realtime refresh
		RefreshDebounce: getEnvAsDuration("REFRESH_DEBOUNCE", "300ms"),

		// Support chat
		TypingIdle:      getEnvAsDuration("TYPING_IDLE", "1400ms"),
		TypingExpiry:    getEnvAsDuration("TYPING_EXPIRY", "2s"),
		ReconcileWindow: getEnvAsDuration("RECONCILE_WINDOW", "5s"),

		// Remote functions
		FunctionTimeout: getEnvAsDuration("FUNCTION_TIMEOUT", "30s"),

		// Rate limiting
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

// Validate reports the configuration errors that must stop startup.
// Without the public function host values every draw and campaign call
// would fail at request time, so their absence is fatal.
func (c *Config) Validate() error {
	if c.PublicURL == "" {
		return fmt.Errorf("config: SNAPWIN_PUBLIC_URL is required")
	}
	if c.PublicAPIKey == "" {
		return fmt.Errorf("config: SNAPWIN_PUBLIC_API_KEY is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
