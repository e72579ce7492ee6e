/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entityregistry/storagemodels"
)

func TestHashText(t *testing.T) {
	var h storagemodels.Hash
	h[0], h[31] = 0xab, 0x01
	s := h.String()
	assert.True(t, strings.HasPrefix(s, "0xab"))
	assert.Len(t, s, 2+storagemodels.HashSize*2)

	parsed, err := storagemodels.ParseHash(s)
	require.NoError(t, err)
	assert.Equal(t, h, parsed)

	parsed, err = storagemodels.ParseHash(strings.TrimPrefix(s, "0x"))
	require.NoError(t, err)
	assert.Equal(t, h, parsed, "prefix is optional")

	for _, bad := range []string{"", "0x", "0x1234", strings.Repeat("zz", storagemodels.HashSize)} {
		_, err := storagemodels.ParseHash(bad)
		assert.Error(t, err, bad)
	}
}

func TestHashBytes(t *testing.T) {
	h := storagemodels.Hash{9}
	b := h.Bytes()
	b[0] = 1
	assert.Equal(t, byte(9), h[0], "Bytes returns a copy")

	back, err := storagemodels.HashFromBytes(h.Bytes())
	require.NoError(t, err)
	assert.Equal(t, h, back)

	_, err = storagemodels.HashFromBytes([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestNewEntity(t *testing.T) {
	id := storagemodels.Hash{1, 2, 3}
	e := storagemodels.NewEntity(id)
	assert.Equal(t, id, e.ID)
	assert.Equal(t, id, e.DNA)
	assert.Zero(t, e.Price)
	assert.Zero(t, e.Generation)
}

func TestCreatedEventJSON(t *testing.T) {
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	ev := storagemodels.CreatedEvent{
		EventID:   "evt-1",
		Type:      storagemodels.EventCreated,
		Caller:    "alice",
		ID:        storagemodels.Hash{0xff},
		Index:     3,
		CreatedAt: strfmt.DateTime(at),
	}

	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":"0xff`)
	assert.Contains(t, string(raw), `"type":"Created"`)

	var back storagemodels.CreatedEvent
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, ev.ID, back.ID)
	assert.Equal(t, ev.Caller, back.Caller)
	assert.True(t, at.Equal(time.Time(back.CreatedAt)))
}
