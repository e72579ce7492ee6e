/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entityregistry/errors"
)

func TestDefaultNeedsOnlySigningKey(t *testing.T) {
	cfg := Default()
	assert.True(t, errors.IsValidationError(cfg.Validate()))

	cfg.Auth.SigningKey = "secret"
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "blake2b-256", cfg.Identifier.Algorithm)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  shutdownTimeout: 5s
store:
  backend: sqlite
  sqlite:
    path: /var/lib/entityregistry/state.db
identifier:
  algorithm: sha3-256
auth:
  signingKey: from-file
events:
  backend: none
`), 0o600))

	t.Setenv(EnvPrefix+"JWT_SIGNING_KEY", "from-env")
	t.Setenv(EnvPrefix+"TRACING_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/var/lib/entityregistry/state.db", cfg.Store.SQLite.Path)
	assert.Equal(t, "entity_state", cfg.Store.SQLite.Table, "defaults survive partial YAML")
	assert.Equal(t, "sha3-256", cfg.Identifier.Algorithm)
	assert.Equal(t, "from-env", cfg.Auth.SigningKey)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoadErrors(t *testing.T) {
	t.Setenv(EnvPrefix+"JWT_SIGNING_KEY", "k")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [unclosed"), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv(EnvPrefix+"TRACING_ENABLED", "maybe")
	_, err = Load("")
	assert.True(t, errors.IsValidationError(err))
}

func TestEnvKafkaBrokers(t *testing.T) {
	t.Setenv(EnvPrefix+"JWT_SIGNING_KEY", "k")
	t.Setenv(EnvPrefix+"EVENTS_BACKEND", "kafka")
	t.Setenv(EnvPrefix+"KAFKA_BROKERS", " broker-1:9092, ,broker-2:9092 ")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Events.Kafka.Brokers)
}

func TestValidateBackends(t *testing.T) {
	valid := Default()
	valid.Auth.SigningKey = "k"

	tests := map[string]struct {
		mutate func(*Config)
		field  string
	}{
		"unknown backend": {func(c *Config) { c.Store.Backend = "etcd" }, "store.backend"},
		"dynamodb table":  {func(c *Config) { c.Store.Backend = "dynamodb"; c.Store.DynamoDB.Region = "us-east-1" }, "store.dynamodb.table"},
		"dynamodb region": {func(c *Config) { c.Store.Backend = "dynamodb"; c.Store.DynamoDB.Table = "t" }, "store.dynamodb.region"},
		"redis url":       {func(c *Config) { c.Store.Backend = "redis" }, "store.redis.url"},
		"postgres dsn":    {func(c *Config) { c.Store.Backend = "postgres" }, "store.postgres.dsn"},
		"sqlite path":     {func(c *Config) { c.Store.Backend = "sqlite"; c.Store.SQLite.Path = "" }, "store.sqlite.path"},
		"kafka brokers":   {func(c *Config) { c.Events.Backend = "kafka" }, "events.kafka.brokers"},
		"kafka topic": {func(c *Config) {
			c.Events.Backend = "kafka"
			c.Events.Kafka.Brokers = []string{"b"}
			c.Events.Kafka.Topic = ""
		}, "events.kafka.topic"},
		"unknown events":   {func(c *Config) { c.Events.Backend = "sns" }, "events.backend"},
		"missing auth key": {func(c *Config) { c.Auth.SigningKey = "" }, "auth.signingKey"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			var verr *errors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
