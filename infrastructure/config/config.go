package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	// DefaultConfigBucket holds one configuration document per environment
	DefaultConfigBucket = "ci-office-notification"

	// DefaultDraftsCollection is where drafts are upserted
	DefaultDraftsCollection = "drafts"
)

// Config holds the process settings read from the environment. The database
// connection parameters live in Configuration and are fetched lazily.
type Config struct {
	// ENV selects the configuration document, e.g. "production" -> production.json
	Environment string

	// AWS configuration
	AWSRegion    string
	ConfigBucket string
	EventBusName string

	// Local configuration source; takes precedence over S3 when set
	ConfigFile string

	// Persistence
	DraftsCollection   string
	BreakerMaxFailures int
	BreakerOpenTimeout time.Duration

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// Local server
	ServerAddress string

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	OTLPEndpoint  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	functionName := getEnv("AWS_LAMBDA_FUNCTION_NAME", "")

	cfg := &Config{
		Environment:  getEnv("ENV", getEnv("ENVIRONMENT", "development")),
		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		ConfigBucket: getEnv("CONFIG_BUCKET", DefaultConfigBucket),
		EventBusName: getEnv("EVENT_BUS_NAME", ""),
		ConfigFile:   getEnv("CONFIG_FILE", ""),

		DraftsCollection:   getEnv("DRAFTS_COLLECTION", DefaultDraftsCollection),
		BreakerMaxFailures: getEnvInt("BREAKER_MAX_FAILURES", 5),
		BreakerOpenTimeout: time.Duration(getEnvInt("BREAKER_OPEN_SECONDS", 30)) * time.Second,

		IsLambda:           functionName != "" || getEnvBool("IS_LAMBDA", false),
		LambdaFunctionName: functionName,

		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		OTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("ENV is required")
	}
	if c.ConfigFile == "" && c.ConfigBucket == "" {
		return fmt.Errorf("CONFIG_BUCKET or CONFIG_FILE is required")
	}
	if c.DraftsCollection == "" {
		return fmt.Errorf("DRAFTS_COLLECTION must not be empty")
	}
	if c.BreakerMaxFailures < 0 {
		return fmt.Errorf("BREAKER_MAX_FAILURES must not be negative")
	}
	return nil
}

// ConfigKey is the object name of this environment's configuration document
func (c *Config) ConfigKey() string {
	return c.Environment + ".json"
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
