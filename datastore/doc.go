/*
Package datastore defines the persistence contract for EntityRegistry's state.

All registry state lives in seven logical spaces of a single key/value store:

	Entities          identifier -> entity record
	EntityOwner       identifier -> owner
	OwnedEntity       owner      -> identifier
	AllEntitiesArray  position   -> identifier
	AllEntitiesIndex  identifier -> position
	AllEntitiesCount  scalar
	Nonce             scalar

The main interface is StateStore:

	type StateStore interface {
	    Get(ctx context.Context, key Key) ([]byte, bool, error)
	    Apply(ctx context.Context, writes []Write) error
	    Close() error
	}

Apply is atomic. Each Write may carry a Condition (MustNotExist, MustEqual) so that
concurrent writers in other processes fail cleanly instead of interleaving.

Implementations:
  - memory: in-process maps, with fault injection for tests
  - ddb: DynamoDB single-table design using TransactWriteItems
  - redisstore: Redis with WATCH/MULTI optimistic transactions
  - postgres: PostgreSQL through pgx
  - sqlite: embedded SQLite through modernc.org/sqlite

postgres and sqlite share the sqlstore core. Every backend runs the storetest suite.
*/
package datastore
