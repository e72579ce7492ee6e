/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package memory is an in-process events.Publisher backed by a buffered channel.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/suparena/entityregistry/events"
	"github.com/suparena/entityregistry/storagemodels"
)

// DefaultBuffer is used when the configured buffer is not positive.
const DefaultBuffer = 100

var (
	// ErrQueueFull is returned by Publish when no consumer keeps up.
	ErrQueueFull = errors.New("event queue is full")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("event queue is closed")
)

// Queue buffers events until Consume takes them.
type Queue struct {
	messages chan storagemodels.CreatedEvent
	mu       sync.RWMutex
	closed   bool
}

var _ events.Publisher = (*Queue)(nil)

// NewQueue creates a queue holding at most buffer undelivered events.
func NewQueue(buffer int) *Queue {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Queue{messages: make(chan storagemodels.CreatedEvent, buffer)}
}

// Publish enqueues without blocking the caller.
func (q *Queue) Publish(ctx context.Context, event storagemodels.CreatedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case q.messages <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Consume blocks until an event is available, the queue is closed and drained,
// or ctx is done.
func (q *Queue) Consume(ctx context.Context) (storagemodels.CreatedEvent, error) {
	select {
	case e, ok := <-q.messages:
		if !ok {
			return storagemodels.CreatedEvent{}, ErrClosed
		}
		return e, nil
	case <-ctx.Done():
		return storagemodels.CreatedEvent{}, ctx.Err()
	}
}

// Size returns the number of undelivered events.
func (q *Queue) Size() int {
	return len(q.messages)
}

// Close stops accepting events. Buffered events can still be consumed.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.messages)
	}
	return nil
}
