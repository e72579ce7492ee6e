/*
Package host runs registry operations on behalf of external callers.

The runtime plays the part a blockchain runtime plays for the registry:

	credential -> Authenticator -> identity
	SeedSource -> seed
	Registry.Register(identity, seed)
	Publisher.Publish(CreatedEvent)

Only the runtime and the transports above it log; the registry itself
reports everything through errors.
*/
package host
