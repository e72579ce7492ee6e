/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entityregistry/storagemodels"
)

func TestQueuePublishConsume(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(2)

	require.NoError(t, q.Publish(ctx, storagemodels.CreatedEvent{Index: 0}))
	require.NoError(t, q.Publish(ctx, storagemodels.CreatedEvent{Index: 1}))
	assert.Equal(t, 2, q.Size())
	assert.ErrorIs(t, q.Publish(ctx, storagemodels.CreatedEvent{Index: 2}), ErrQueueFull)

	first, err := q.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), first.Index)
	second, err := q.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), second.Index)
}

func TestQueueConsumeHonorsContext(t *testing.T) {
	q := NewQueue(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Consume(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueueClose(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(4)
	require.NoError(t, q.Publish(ctx, storagemodels.CreatedEvent{Index: 9}))
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	assert.ErrorIs(t, q.Publish(ctx, storagemodels.CreatedEvent{}), ErrClosed)

	e, err := q.Consume(ctx)
	require.NoError(t, err, "buffered events survive close")
	assert.Equal(t, uint64(9), e.Index)

	_, err = q.Consume(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestQueueConcurrentPublishers(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				assert.NoError(t, q.Publish(ctx, storagemodels.CreatedEvent{Index: uint64(i*10 + j)}))
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 100, q.Size())
}
