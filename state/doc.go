/*
Package state implements the registry's stores on top of a datastore.StateStore.

A State bundles four components that share one write-staging transaction:

	RegistryStore     identifier -> entity
	OwnershipIndex    identifier <-> owner (single slot per owner)
	EnumerationIndex  position <-> identifier, plus count
	Sequencer         nonce

Every operation is a constant number of point reads and writes. Writes are staged in
the Tx and reach the backend only through Tx.Commit, as a single atomic Apply.
*/
package state
