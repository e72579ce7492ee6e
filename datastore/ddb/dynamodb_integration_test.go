//go:build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entityregistry/config"
	"github.com/suparena/entityregistry/datastore"
	"github.com/suparena/entityregistry/datastore/storetest"
)

// Runs against DynamoDB Local (DDB_TEST_ENDPOINT) or a real account when
// AWS_REGION and credentials are present.
func TestDynamoDBIntegration(t *testing.T) {
	_ = godotenv.Load()

	endpoint := os.Getenv("DDB_TEST_ENDPOINT")
	region := os.Getenv("AWS_REGION")
	if endpoint == "" && region == "" {
		t.Skip("DDB_TEST_ENDPOINT or AWS_REGION not set")
	}
	if region == "" {
		region = "us-east-1"
	}
	cfg := config.DynamoDBConfig{
		Region:    region,
		Endpoint:  endpoint,
		AccessKey: os.Getenv("AWS_ACCESS_KEY"),
		SecretKey: os.Getenv("AWS_SECRET_KEY"),
	}
	if endpoint != "" && cfg.AccessKey == "" {
		cfg.AccessKey, cfg.SecretKey = "local", "local"
	}

	storetest.Run(t, func(t *testing.T) datastore.StateStore {
		cfg := cfg
		cfg.Table = "entity-registry-test-" + uuid.NewString()
		store, err := NewDynamodbDataStore(context.Background(), cfg)
		require.NoError(t, err)
		require.NoError(t, store.EnsureTable(context.Background()))
		return store
	})
}
