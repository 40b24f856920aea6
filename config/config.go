package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"raffler/database"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// HTTP configuration
	HTTPAddr       string
	TrustedProxies []string

	// Database configuration
	DatabaseURL      string
	DatabaseName     string
	StatementTimeout time.Duration // caps statement execution and lock waits

	// Raffle configuration
	ManagerIPs     []string // callers allowed to create, draw and delete
	SecretHashCost int      // bcrypt cost for verification codes
	ListCacheTTL   time.Duration

	// NATS configuration
	NATSServers string // empty disables publishing

	// Discord announcer configuration
	DiscordToken             string
	DiscordAnnounceChannelID string

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelServiceName          string
	OTelExportIntervalMillis int

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Environment
	Environment string // "development" or "production"
}

const (
	defaultHTTPAddr         = ":8000"
	defaultSecretHashCost   = 10
	defaultStatementTimeout = 5 * time.Second
	defaultListCacheTTL     = 15 * time.Minute
)

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// NATSEnabled reports whether events should be published to NATS
func (c *Config) NATSEnabled() bool {
	return c.NATSServers != ""
}

// DiscordEnabled reports whether drawing results are announced on Discord
func (c *Config) DiscordEnabled() bool {
	return c.DiscordToken != "" && c.DiscordAnnounceChannelID != ""
}

// LoadDotEnv loads variables from .env files that exist. Variables already
// set in the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	var present []string
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			present = append(present, file)
		}
	}
	if len(present) == 0 {
		return nil
	}

	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// HTTP
		HTTPAddr:       getEnvWithDefault("HTTP_ADDR", defaultHTTPAddr),
		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),

		// Database
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DatabaseName:     os.Getenv("DATABASE_NAME"),
		StatementTimeout: defaultStatementTimeout,

		// Raffles
		ManagerIPs:     splitList(os.Getenv("MANAGER_IPS")),
		SecretHashCost: defaultSecretHashCost,
		ListCacheTTL:   defaultListCacheTTL,

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// Discord
		DiscordToken:             os.Getenv("DISCORD_TOKEN"),
		DiscordAnnounceChannelID: os.Getenv("DISCORD_ANNOUNCE_CHANNEL_ID"),

		// OpenTelemetry
		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "none"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "localhost:4317"),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "raffler"),
		OTelExportIntervalMillis: 15000,

		// Logging
		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		// Environment
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
	}

	// Override defaults if environment variables are set
	if cost := os.Getenv("SECRET_HASH_COST"); cost != "" {
		parsed, err := strconv.Atoi(cost)
		if err != nil {
			return nil, fmt.Errorf("invalid SECRET_HASH_COST %q: %w", cost, err)
		}
		config.SecretHashCost = parsed
	}
	if timeout := os.Getenv("DB_STATEMENT_TIMEOUT"); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_STATEMENT_TIMEOUT %q: %w", timeout, err)
		}
		config.StatementTimeout = parsed
	}
	if ttl := os.Getenv("LIST_CACHE_TTL"); ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid LIST_CACHE_TTL %q: %w", ttl, err)
		}
		config.ListCacheTTL = parsed
	}
	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil && parsed > 0 {
			config.OTelExportIntervalMillis = parsed
		}
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.LogFormat != "text" && config.LogFormat != "json" {
			return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", config.LogFormat)
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:      "test",
		HTTPAddr:         defaultHTTPAddr,
		ManagerIPs:       []string{"127.0.0.1"},
		SecretHashCost:   4, // bcrypt.MinCost keeps tests fast
		StatementTimeout: defaultStatementTimeout,
		ListCacheTTL:     defaultListCacheTTL,
		OTelExporterType: "none",
		OTelServiceName:  "raffler-test",
		LogLevel:         "debug",
		LogFormat:        "text",
	}
}
