/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package redisstore

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/suparena/entityregistry/config"
	"github.com/suparena/entityregistry/datastore"
	"github.com/suparena/entityregistry/errors"
	"github.com/suparena/entityregistry/registry"
)

// BackendName is the name this store registers under.
const BackendName = "redis"

func init() {
	registry.RegisterBackend(BackendName, func(ctx context.Context, cfg config.StoreConfig) (datastore.StateStore, error) {
		client, err := NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return New(client, cfg.Redis.Prefix), nil
	})
}

// Store keeps each state value under its own Redis string key.
type Store struct {
	client *redis.Client
	prefix string
}

var _ datastore.StateStore = (*Store)(nil)

// NewClient creates a go-redis client from the configuration and pings it.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// New wraps an existing client. Every key is prefixed with prefix.
func New(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) redisKey(key datastore.Key) string {
	return s.prefix + string(key.Space) + ":" + key.HexID()
}

// Get reads one value.
func (s *Store) Get(ctx context.Context, key datastore.Key) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

// Apply watches every key in the batch, checks the conditions, then writes
// the batch in one MULTI/EXEC. A watched key modified in between aborts EXEC.
func (s *Store) Apply(ctx context.Context, writes []datastore.Write) error {
	if len(writes) == 0 {
		return nil
	}
	keys := make([]string, len(writes))
	for i, w := range writes {
		keys[i] = s.redisKey(w.Key)
	}

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		for i, w := range writes {
			if w.Condition == datastore.Unconditional {
				continue
			}
			current, err := tx.Get(ctx, keys[i]).Bytes()
			exists := true
			if stderrors.Is(err, redis.Nil) {
				exists = false
			} else if err != nil {
				return fmt.Errorf("redis get %s: %w", w.Key, err)
			}
			if !conditionHolds(w, current, exists) {
				return errors.NewConditionFailedError("apply", w.Key.String()+" "+w.Condition.String())
			}
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, w := range writes {
				pipe.Set(ctx, keys[i], w.Value, 0)
			}
			return nil
		})
		return err
	}, keys...)

	if stderrors.Is(err, redis.TxFailedErr) {
		return errors.NewConditionFailedError("apply", "watched key modified concurrently")
	}
	if err != nil {
		if errors.IsConditionFailed(err) {
			return err
		}
		return fmt.Errorf("redis apply %d writes: %w", len(writes), err)
	}
	return nil
}

func conditionHolds(w datastore.Write, current []byte, exists bool) bool {
	switch w.Condition {
	case datastore.MustNotExist:
		return !exists
	case datastore.MustEqual:
		return exists && bytes.Equal(current, w.Previous)
	default:
		return true
	}
}

// Close closes the Redis connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
