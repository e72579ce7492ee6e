/*
Package identifier derives entity identifiers from a host-supplied seed, the caller
identity and the sequencer nonce.

	gen, err := identifier.New(identifier.Blake2b256)
	id := gen.Generate(seed, "alice", nonce)

The derivation is a pure function. It does not guarantee uniqueness; callers must
check the candidate against existing identifiers.
*/
package identifier
