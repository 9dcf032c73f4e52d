package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"nebulines/database"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
)

// Event sink choices for domain events leaving the process
const (
	EventSinkNone  = "none"
	EventSinkNATS  = "nats"
	EventSinkKafka = "kafka"
)

// KafkaConfig configures the Kafka event sink
type KafkaConfig struct {
	Brokers string `env:"BROKERS" envDefault:"kafka:9092"`
	Topic   string `env:"TOPIC" envDefault:"nebulines.domain-events"`
}

// MetricsConfig configures OpenTelemetry metrics
type MetricsConfig struct {
	Enabled          bool   `env:"ENABLED" envDefault:"true"`
	ServiceName      string `env:"SERVICE_NAME" envDefault:"nebulines"`
	ExporterType     string `env:"EXPORTER_TYPE" envDefault:"prometheus"` // prometheus, console, otlp or none
	OTLPEndpoint     string `env:"OTLP_ENDPOINT" envDefault:"otel-collector:4317"`
	ExportIntervalMs int    `env:"EXPORT_INTERVAL_MS" envDefault:"15000"`
}

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseName string `env:"DATABASE_NAME"`

	// HTTP configuration
	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":8080"`
	JWTSecret string `env:"JWT_SECRET"`

	// Bank configuration
	StartingBalance int64 `env:"STARTING_BALANCE" envDefault:"1000"`

	// Users allowed to resolve any event in addition to its creator
	ResolverUserIDs []uuid.UUID `env:"RESOLVER_USER_IDS" envSeparator:","`

	// Domain event fan-out
	EventSink   string      `env:"EVENT_SINK" envDefault:"none"`
	NATSServers string      `env:"NATS_SERVERS" envDefault:"nats://nats:4222"`
	Kafka       KafkaConfig `envPrefix:"KAFKA_"`
	RedisAddr   string      `env:"REDIS_ADDR"` // empty disables pool broadcasts

	// Cron spec (with seconds) for the ledger reconciliation job
	LedgerAuditSchedule string `env:"LEDGER_AUDIT_SCHEDULE" envDefault:"0 */15 * * * *"`

	Metrics MetricsConfig `envPrefix:"OTEL_"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development", "production" or "test"
}

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

// load loads configuration from environment variables
func load() (*Config, error) {
	config, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	switch c.EventSink {
	case EventSinkNone, EventSinkNATS, EventSinkKafka:
	default:
		return fmt.Errorf("unknown EVENT_SINK %q", c.EventSink)
	}
	if c.StartingBalance < 0 {
		return fmt.Errorf("STARTING_BALANCE cannot be negative")
	}

	if c.Environment == "test" {
		return nil
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	// If DatabaseName is provided, ensure it's not empty
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	return nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:         "test",
		JWTSecret:           "test-secret",
		StartingBalance:     1000,
		EventSink:           EventSinkNone,
		LedgerAuditSchedule: "0 */15 * * * *",
		LogLevel:            "debug",
		ResolverUserIDs: []uuid.UUID{
			uuid.MustParse("99999999-9999-4999-8999-999999999999"),
		},
		Metrics: MetricsConfig{ExporterType: "none", ServiceName: "nebulines-test"},
	}
}
