/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package events defines how creation notifications leave the process.
package events

import (
	"context"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"

	"github.com/suparena/entityregistry/storagemodels"
)

// Publisher delivers creation events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event storagemodels.CreatedEvent) error
	Close() error
}

// NewCreatedEvent stamps a fresh event id and the creation time.
func NewCreatedEvent(caller storagemodels.Identity, id storagemodels.Hash, index uint64, at time.Time) storagemodels.CreatedEvent {
	return storagemodels.CreatedEvent{
		EventID:   uuid.NewString(),
		Type:      storagemodels.EventCreated,
		Caller:    caller,
		ID:        id,
		Index:     index,
		CreatedAt: strfmt.DateTime(at.UTC()),
	}
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, storagemodels.CreatedEvent) error { return nil }

func (Nop) Close() error { return nil }
