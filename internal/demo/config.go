// Package demo wires the checkout toolkit into a runnable merchant-side
// server: one session-driven component fronted by an HTTP API for input
// updates, submission and the redirect return endpoint.
package demo

import (
	"fmt"

	"github.com/utafrali/checkout-go/api"
	pkgconfig "github.com/utafrali/checkout-go/pkg/config"
	"github.com/utafrali/checkout-go/pkg/validator"
	redisstore "github.com/utafrali/checkout-go/store/redis"
)

// State store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the demo server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"CHECKOUT_HTTP_PORT" envDefault:"8090"`

	// Checkout API
	APIBaseURL string `env:"CHECKOUT_API_BASE_URL" validate:"required,url"`
	ClientKey  string `env:"CHECKOUT_CLIENT_KEY" validate:"required"`

	// Session to drive
	SessionID   string `env:"CHECKOUT_SESSION_ID" validate:"required"`
	SessionData string `env:"CHECKOUT_SESSION_DATA" validate:"required"`
	ReturnURL   string `env:"CHECKOUT_RETURN_URL" envDefault:"http://localhost:8090/return"`

	// State persistence
	StateBackend string `env:"CHECKOUT_STATE_BACKEND" envDefault:"memory" validate:"oneof=memory redis postgres"`

	// Redis (state backend)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// PostgreSQL (state backend)
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"checkout"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"checkout_secret"`
	PostgresDB   string `env:"CHECKOUT_DB_NAME" envDefault:"checkout"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Kafka result publication
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaTopic   string   `env:"CHECKOUT_RESULTS_TOPIC" envDefault:"checkout.results"`

	// Tracing
	TracingEnabled  bool    `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSample   float64 `env:"TRACING_SAMPLE_RATIO" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load demo config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	return validator.Validate(c)
}

// APIConfig returns the checkout API client configuration.
func (c *Config) APIConfig() api.Config {
	return api.Config{BaseURL: c.APIBaseURL, ClientKey: c.ClientKey}
}

// RedisConfig returns the redis store configuration.
func (c *Config) RedisConfig() redisstore.Config {
	cfg := redisstore.DefaultConfig()
	cfg.Host = c.RedisHost
	cfg.Port = c.RedisPort
	cfg.Password = c.RedisPassword
	cfg.DB = c.RedisDB
	return cfg
}
