package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env string `validate:"required,oneof=development stage production"`

	Target Target `validate:"required"`
	Load   Load   `validate:"required"`

	Metrics Metrics
	Cors    CORS

	Results  Results
	Postgres Postgres `validate:"required"`
	Kafka    Kafka    `validate:"required"`
}

type Target struct {
	Host string `validate:"required,hostname|ip"`
	Port string `validate:"required,gt=0,lte=65535"`

	// 0 means no timeout: a hung server stalls its batch.
	RequestTimeout time.Duration `validate:"gte=0"`
}

type Load struct {
	// Workers caps in-flight invocations; BatchMax may not exceed it,
	// otherwise batches larger than the pool would silently queue.
	Workers  int `validate:"required,gte=1"`
	BatchMin int `validate:"required,gte=1"`
	BatchMax int `validate:"required,gtefield=BatchMin,ltefield=Workers"`
}

type Metrics struct {
	Enabled bool
	Host    string `validate:"required,hostname|ip"`
	Port    string `validate:"required,gt=0,lte=65535"`
}

type CORS struct {
	AllowedOrigins []string `validate:"required,min=1,dive,url"`
}

type Results struct {
	Backends []string `validate:"dive,oneof=postgres kafka"`
}

type Postgres struct {
	Host     string `validate:"required,hostname|ip"`
	Port     int    `validate:"required,gt=0,lte=65535"`
	DBName   string `validate:"required"`
	User     string
	Password string

	SSLMode string `validate:"required,oneof=disable require verify-ca verify-full"`

	MaxOpenConns    int           `validate:"gte=1"`
	MaxIdleConns    int           `validate:"gte=0"`
	ConnMaxLifetime time.Duration `validate:"gte=0"`
}

type Kafka struct {
	Brokers []string `validate:"required,min=1,dive,hostname_port"`
	Topic   string   `validate:"required"`

	BatchTimeout time.Duration `validate:"gte=0"`
}

func New() Config {
	return Config{
		Env: env("ENV", "development"),

		Target: Target{
			Host:           env("TARGET_HOST", "127.0.0.1"),
			Port:           env("TARGET_PORT", "8080"),
			RequestTimeout: envDuration("REQUEST_TIMEOUT", 0),
		},

		Load: Load{
			Workers:  envInt("WORKERS", 20),
			BatchMin: envInt("BATCH_MIN", 10),
			BatchMax: envInt("BATCH_MAX", 20),
		},

		Metrics: Metrics{
			Enabled: envBool("METRICS_ENABLED", false),
			Host:    env("METRICS_HOST", "localhost"),
			Port:    env("METRICS_PORT", "9090"),
		},

		Cors: CORS{
			AllowedOrigins: strings.Split(env("ALLOWED_CORS_ORIGINS", "http://localhost:3000"), ","),
		},

		Results: Results{
			Backends: splitNonEmpty(env("RESULTS_BACKENDS", "")),
		},

		Postgres: Postgres{
			Port:     envInt("POSTGRES_PORT", 5432),
			Host:     env("POSTGRES_HOST", "localhost"),
			DBName:   env("POSTGRES_DB", "loadgen"),
			User:     env("POSTGRES_USER", ""),
			Password: env("POSTGRES_PASSWORD", ""),

			SSLMode: env("POSTGRES_SSL_MODE", "disable"),

			MaxOpenConns:    envInt("POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("POSTGRES_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: envDuration("POSTGRES_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Kafka: Kafka{
			Topic:   env("KAFKA_TOPIC", "loadgen-outcomes"),
			Brokers: strings.Split(env("KAFKA_BROKERS", "localhost:9092"), ","),

			BatchTimeout: envDuration("KAFKA_BATCH_TIMEOUT", 10*time.Millisecond),
		},
	}
}

func (c Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func (c Config) RecordsTo(backend string) bool {
	for _, b := range c.Results.Backends {
		if b == backend {
			return true
		}
	}
	return false
}

func env(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if len(fallback) == 0 {
		return ""
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
