/*
Package entityregistry maintains a registry of uniquely identified entities,
each owned by the identity that created it.

A creation derives a fresh 256-bit identifier from a per-transaction seed,
the caller and a monotonically increasing nonce, then records it in seven
state spaces kept in a datastore.StateStore:

	Entities          id -> entity record
	EntityOwner       id -> owner
	OwnedEntity       owner -> latest id (single slot)
	AllEntitiesArray  position -> id
	AllEntitiesIndex  id -> position
	AllEntitiesCount  number of entities
	Nonce             sequencer value

Creation is all-or-nothing. Every check (count headroom, nonce headroom,
identifier collision) runs before any write is staged, and the staged
writes reach the store in one Apply. Each write carries a guard derived
from what was read, so a second process writing the same store fails with
errors.ErrConditionFailed instead of corrupting it.

Basic Usage:

	store, _ := registry.Open(ctx, cfg.Store)
	reg := entityregistry.New(store)

	id, err := reg.Create(ctx, "alice", seed)
	if errors.IsCounterOverflow(err) {
	    // nothing was written
	}

	owner, _ := reg.OwnerOf(ctx, id)
	pos, _ := reg.IndexOf(ctx, id)

Backends live under datastore/ and register themselves by name; the host
package and cmd/entityregistryd wrap the registry with authentication,
events, metrics and an HTTP API.
*/
package entityregistry
