/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/suparena/entityregistry/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ENTITYREGISTRY_"

// Config is the full process configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Identifier IdentifierConfig `yaml:"identifier"`
	Auth       AuthConfig       `yaml:"auth"`
	Events     EventsConfig     `yaml:"events"`
	Log        LogConfig        `yaml:"log"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	MetricsPath     string        `yaml:"metricsPath"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// StoreConfig selects and configures the state backend.
type StoreConfig struct {
	// Backend is one of memory, dynamodb, redis, postgres, sqlite.
	Backend  string         `yaml:"backend"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

// DynamoDBConfig configures the DynamoDB backend.
type DynamoDBConfig struct {
	Region    string `yaml:"region"`
	Table     string `yaml:"table"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	// Endpoint overrides the service endpoint, e.g. for DynamoDB Local.
	Endpoint string `yaml:"endpoint"`
	// CreateTable creates the table on startup when it is missing.
	CreateTable bool `yaml:"createTable"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	Prefix       string        `yaml:"prefix"`
	PoolSize     int           `yaml:"poolSize"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

// PostgresConfig configures the PostgreSQL backend.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	Table    string `yaml:"table"`
	MaxConns int32  `yaml:"maxConns"`
}

// SQLiteConfig configures the embedded SQLite backend.
type SQLiteConfig struct {
	Path  string `yaml:"path"`
	Table string `yaml:"table"`
}

// IdentifierConfig selects the hash used for identifier derivation.
type IdentifierConfig struct {
	Algorithm string `yaml:"algorithm"`
}

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	SigningKey string        `yaml:"signingKey"`
	Issuer     string        `yaml:"issuer"`
	Audience   string        `yaml:"audience"`
	TokenTTL   time.Duration `yaml:"tokenTTL"`
}

// EventsConfig selects where creation events are published.
type EventsConfig struct {
	// Backend is one of none, memory, kafka.
	Backend string      `yaml:"backend"`
	Buffer  int         `yaml:"buffer"`
	Kafka   KafkaConfig `yaml:"kafka"`
}

// KafkaConfig configures the Kafka publisher.
type KafkaConfig struct {
	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic"`
	ClientID string   `yaml:"clientId"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig enables the stdout span exporter.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"serviceName"`
	OutputFile  string `yaml:"outputFile"`
}

// Default returns a configuration suitable for local development.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			MetricsPath:     "/metrics",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Store: StoreConfig{
			Backend: "memory",
			Redis: RedisConfig{
				Prefix:       "entityregistry:",
				PoolSize:     10,
				DialTimeout:  5 * time.Second,
				ReadTimeout:  3 * time.Second,
				WriteTimeout: 3 * time.Second,
			},
			Postgres: PostgresConfig{Table: "entity_state", MaxConns: 4},
			SQLite:   SQLiteConfig{Path: "entityregistry.db", Table: "entity_state"},
		},
		Identifier: IdentifierConfig{Algorithm: "blake2b-256"},
		Auth: AuthConfig{
			Issuer:   "entityregistry",
			Audience: "entityregistry",
			TokenTTL: time.Hour,
		},
		Events: EventsConfig{
			Backend: "memory",
			Buffer:  1024,
			Kafka:   KafkaConfig{Topic: "entityregistry.created", ClientID: "entityregistry"},
		},
		Log:     LogConfig{Level: "info", Format: "json"},
		Tracing: TracingConfig{ServiceName: "entityregistry"},
	}
}

// Load reads an optional .env file, an optional YAML file, then applies environment
// overrides on top of the defaults.
func Load(path string) (Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case "memory":
	case "dynamodb":
		if c.Store.DynamoDB.Table == "" {
			return errors.NewValidationError("store.dynamodb.table", "required for dynamodb backend")
		}
		if c.Store.DynamoDB.Region == "" {
			return errors.NewValidationError("store.dynamodb.region", "required for dynamodb backend")
		}
	case "redis":
		if c.Store.Redis.URL == "" {
			return errors.NewValidationError("store.redis.url", "required for redis backend")
		}
	case "postgres":
		if c.Store.Postgres.DSN == "" {
			return errors.NewValidationError("store.postgres.dsn", "required for postgres backend")
		}
	case "sqlite":
		if c.Store.SQLite.Path == "" {
			return errors.NewValidationError("store.sqlite.path", "required for sqlite backend")
		}
	default:
		return errors.NewValidationError("store.backend", fmt.Sprintf("unsupported backend %q", c.Store.Backend))
	}

	switch c.Events.Backend {
	case "none", "memory":
	case "kafka":
		if len(c.Events.Kafka.Brokers) == 0 {
			return errors.NewValidationError("events.kafka.brokers", "at least one broker is required")
		}
		if c.Events.Kafka.Topic == "" {
			return errors.NewValidationError("events.kafka.topic", "required for kafka events")
		}
	default:
		return errors.NewValidationError("events.backend", fmt.Sprintf("unsupported backend %q", c.Events.Backend))
	}

	if c.Auth.SigningKey == "" {
		return errors.NewValidationError("auth.signingKey", "required")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	setString("ADDR", &cfg.Server.Addr)
	setString("STORE_BACKEND", &cfg.Store.Backend)
	setString("DDB_REGION", &cfg.Store.DynamoDB.Region)
	setString("DDB_TABLE", &cfg.Store.DynamoDB.Table)
	setString("DDB_ACCESS_KEY", &cfg.Store.DynamoDB.AccessKey)
	setString("DDB_SECRET_KEY", &cfg.Store.DynamoDB.SecretKey)
	setString("DDB_ENDPOINT", &cfg.Store.DynamoDB.Endpoint)
	setString("REDIS_URL", &cfg.Store.Redis.URL)
	setString("POSTGRES_DSN", &cfg.Store.Postgres.DSN)
	setString("SQLITE_PATH", &cfg.Store.SQLite.Path)
	setString("HASH_ALGORITHM", &cfg.Identifier.Algorithm)
	setString("JWT_SIGNING_KEY", &cfg.Auth.SigningKey)
	setString("EVENTS_BACKEND", &cfg.Events.Backend)
	setString("KAFKA_TOPIC", &cfg.Events.Kafka.Topic)
	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_FORMAT", &cfg.Log.Format)

	if v, ok := os.LookupEnv(EnvPrefix + "KAFKA_BROKERS"); ok {
		cfg.Events.Kafka.Brokers = splitList(v)
	}
	if err := setBool("TRACING_ENABLED", &cfg.Tracing.Enabled); err != nil {
		return err
	}
	if err := setBool("DDB_CREATE_TABLE", &cfg.Store.DynamoDB.CreateTable); err != nil {
		return err
	}
	return nil
}

func setBool(name string, dst *bool) error {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return errors.NewValidationError(EnvPrefix+name, err.Error())
	}
	*dst = b
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
