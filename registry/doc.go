/*
Package registry manages backend registration and key layouts for EntityRegistry.

Backend Registry:
Maps backend names to open functions. Backends register themselves from init(),
so a binary only needs a blank import to make one available:

	import _ "github.com/suparena/entityregistry/datastore/ddb"

	store, err := registry.Open(ctx, cfg.Store)

Index Map Registry:
Associates state spaces with key templates used by table-oriented backends:

	registry.RegisterIndexMap(datastore.SpaceEntities, map[string]string{
	    "PK": "ENTITY#{ID}",
	    "SK": "ENTITY",
	})

Every space starts with DefaultIndexMap. The registry is thread-safe and should be
populated during initialization.
*/
package registry
