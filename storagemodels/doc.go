/*
Package storagemodels defines the data structures shared by every EntityRegistry package.

Key Types:

Hash:
A 32-byte identifier rendered as 0x-prefixed hex:

	id, err := storagemodels.ParseHash("0x6c1f...")

Entity:
The immutable record stored for every identifier:

	type Entity struct {
	    ID         Hash
	    DNA        Hash
	    Price      Balance
	    Generation uint64
	}

CreatedEvent:
The notification published by the host after a successful creation:

	type CreatedEvent struct {
	    EventID   string
	    Type      string
	    Caller    Identity
	    ID        Hash
	    Index     uint64
	    CreatedAt strfmt.DateTime
	}

These types are backend-agnostic; the state package owns their binary encoding.
*/
package storagemodels
