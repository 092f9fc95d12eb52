package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Database holds the connection settings consumed by the storage gateway.
type Database struct {
	Dialect  string `validate:"oneof=sqlite mysql postgres"`
	Username string
	Password string
	Hostname string `validate:"required_unless=Dialect sqlite"`
	Port     string `validate:"omitempty,numeric"`
	Name     string `validate:"required"`
	DataDir  string `validate:"required_if=Dialect sqlite"`
	// DSN overrides the connection string composed from the fields above.
	DSN string
}

// App holds runtime configuration derived from env vars.
type App struct {
	Environment string `validate:"oneof=development production"`
	LogLevel    string
	LogEncoding string `validate:"oneof=json console"`
	LogFile     string
	APIPort     string `validate:"required,numeric"`
	CORSOrigins []string

	Database Database

	KafkaBrokers string
	KafkaTopic   string `validate:"required"`
	KafkaGroupID string `validate:"required"`

	RetentionMaxAge   time.Duration `validate:"gte=0"`
	RetentionSchedule string

	// envErrs collects variables FromEnv could not parse; Validate reports them.
	envErrs []error
}

var (
	validate *validator.Validate
	once     sync.Once
)

// FromEnv loads the application configuration from environment variables.
func FromEnv() App {
	var envErrs []error
	app := App{
		Environment: getEnv("ENVIRONMENT", "production"),
		LogLevel:    getEnv("LOG_LEVEL", getEnv("LOG2SQL_LOG_LEVEL", "info")),
		LogEncoding: getEnv("LOG_ENCODING", "json"),
		LogFile:     os.Getenv("LOG_FILE"),
		APIPort:     getEnv("API_PORT", "8080"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		Database: Database{
			Dialect:  normalizeDialect(getEnv("LOG2SQL_DB_DIALECT", "sqlite")),
			Username: os.Getenv("LOG2SQL_DB_USERNAME"),
			Password: os.Getenv("LOG2SQL_DB_PASSWORD"),
			Hostname: getEnv("LOG2SQL_DB_HOSTNAME", "localhost"),
			Port:     os.Getenv("LOG2SQL_DB_PORT"),
			Name:     getEnv("LOG2SQL_DB_NAME", "log2sql.db"),
			DataDir:  getEnv("LOG2SQL_DB_DATA_DIR", "./data"),
			DSN:      os.Getenv("LOG2SQL_DB_DSN"),
		},
		KafkaBrokers:      os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "log-records"),
		KafkaGroupID:      getEnv("KAFKA_GROUP_ID", "log2sql-ingest"),
		RetentionMaxAge:   getDuration("RETENTION_MAX_AGE", 0, &envErrs),
		RetentionSchedule: getEnv("RETENTION_SCHEDULE", "@hourly"),
	}
	app.envErrs = envErrs
	return app
}

// Validate checks the configuration for values the services cannot run with.
func (a App) Validate() error {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	if len(a.envErrs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(a.envErrs...))
	}
	a.Database.Dialect = normalizeDialect(a.Database.Dialect)
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// normalizeDialect folds the accepted aliases onto sqlite, mysql and postgres.
func normalizeDialect(name string) string {
	switch name = strings.ToLower(strings.TrimSpace(name)); name {
	case "", "sqlite3":
		return "sqlite"
	case "postgresql":
		return "postgres"
	default:
		return name
	}
}

// Brokers returns the Kafka broker list, empty when ingestion is disabled.
func (a App) Brokers() []string {
	return splitList(a.KafkaBrokers)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
