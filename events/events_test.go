/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entityregistry/storagemodels"
)

func TestNewCreatedEvent(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	id := storagemodels.Hash{0xab}

	e := NewCreatedEvent("alice", id, 7, at)
	assert.Equal(t, storagemodels.EventCreated, e.Type)
	assert.Equal(t, storagemodels.Identity("alice"), e.Caller)
	assert.Equal(t, id, e.ID)
	assert.Equal(t, uint64(7), e.Index)
	_, err := uuid.Parse(e.EventID)
	require.NoError(t, err)

	other := NewCreatedEvent("alice", id, 7, at)
	assert.NotEqual(t, e.EventID, other.EventID)

	raw, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":"`+id.String()+`"`)
	assert.Contains(t, string(raw), `"createdAt":"2025-03-01T12:00:00.000Z"`)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), storagemodels.CreatedEvent{}))
	assert.NoError(t, p.Close())
}
