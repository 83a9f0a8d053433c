package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/homefix/service-booking/internal/domain/booking"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const envPrefix = "BOOKING"

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// KafkaConfig holds broker settings. No brokers disables publishing and consuming.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// TracingConfig holds OTLP trace export settings.
type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

// BookingConfig holds the lifecycle rules that operators may tune.
type BookingConfig struct {
	MaxRetries                    int
	EnforceManualAssignmentChecks bool
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port               string
	AppEnv             string
	SeedOnStart        bool
	CORSAllowedOrigins []string
	DBConfig           DatabaseConfig
	KafkaConfig        KafkaConfig
	TracingConfig      TracingConfig
	BookingConfig      BookingConfig
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *ServiceConfig) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load reads an optional .env file and then environment variables prefixed with BOOKING_.
func Load() (*ServiceConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", ":8004")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SEED_ON_START", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "booking_db")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_GROUP_PREFIX", "")

	v.SetDefault("MAX_RETRIES", 3)
	v.SetDefault("ENFORCE_MANUAL_ASSIGNMENT_CHECKS", false)

	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	return v
}

// FromViper builds a ServiceConfig from an already populated viper instance.
func FromViper(v *viper.Viper) (*ServiceConfig, error) {
	port := v.GetString("SERVICE_PORT")
	if port == "" {
		return nil, errors.New("SERVICE_PORT must not be empty")
	}
	if !strings.Contains(port, ":") {
		port = ":" + port
	}

	dbPort, err := intValue(v, "DB_PORT")
	if err != nil {
		return nil, err
	}
	maxOpen, err := intValue(v, "DB_MAX_OPEN_CONNS")
	if err != nil {
		return nil, err
	}
	maxIdle, err := intValue(v, "DB_MAX_IDLE_CONNS")
	if err != nil {
		return nil, err
	}
	maxRetries, err := intValue(v, "MAX_RETRIES")
	if err != nil {
		return nil, err
	}
	if maxRetries < 1 || maxRetries > booking.DefaultMaxRetries {
		return nil, fmt.Errorf("MAX_RETRIES must be between 1 and %d, got %d", booking.DefaultMaxRetries, maxRetries)
	}

	seed, err := boolValue(v, "SEED_ON_START")
	if err != nil {
		return nil, err
	}
	enforce, err := boolValue(v, "ENFORCE_MANUAL_ASSIGNMENT_CHECKS")
	if err != nil {
		return nil, err
	}
	tracing, err := boolValue(v, "TRACING_ENABLED")
	if err != nil {
		return nil, err
	}

	return &ServiceConfig{
		Port:               port,
		AppEnv:             v.GetString("APP_ENV"),
		SeedOnStart:        seed,
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		DBConfig: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         dbPort,
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			DBName:       v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: maxOpen,
			MaxIdleConns: maxIdle,
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		TracingConfig: TracingConfig{
			Enabled:  tracing,
			Endpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
		BookingConfig: BookingConfig{
			MaxRetries:                    maxRetries,
			EnforceManualAssignmentChecks: enforce,
		},
	}, nil
}

// intValue parses key strictly; viper's GetInt returns 0 for unparseable input.
func intValue(v *viper.Viper, key string) (int, error) {
	n, err := cast.ToIntE(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s_%s: %w", envPrefix, key, err)
	}
	return n, nil
}

func boolValue(v *viper.Viper, key string) (bool, error) {
	b, err := cast.ToBoolE(v.Get(key))
	if err != nil {
		return false, fmt.Errorf("invalid %s_%s: %w", envPrefix, key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
