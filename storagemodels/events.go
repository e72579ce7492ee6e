/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"github.com/go-openapi/strfmt"
)

// EventCreated is the type name of the creation event.
const EventCreated = "Created"

// CreatedEvent announces a successful creation to the outside world.
type CreatedEvent struct {
	// EventID uniquely identifies this notification for consumers that deduplicate.
	EventID string `json:"eventId"`
	// Type is always EventCreated.
	Type string `json:"type"`
	// Caller is the identity that created the entity.
	Caller Identity `json:"caller"`
	// ID is the identifier of the new entity.
	ID Hash `json:"id"`
	// Index is the enumeration position assigned to the entity.
	Index uint64 `json:"index"`
	// CreatedAt is when the host committed the creation.
	CreatedAt strfmt.DateTime `json:"createdAt"`
}
