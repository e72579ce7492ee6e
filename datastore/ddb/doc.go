/*
Package ddb provides a DynamoDB implementation of the datastore.StateStore interface.

Every state space lives in a single table. Keys are rendered through the
index map registered for the space, so the default layout is:

	PK: "{Space}#{ID}"   // e.g. "Entities#0a1b..."
	SK: "{Space}"

IDs are hex encoded before expansion. Values are stored as a binary
attribute named "Value".

Apply maps a batch of guarded writes onto one TransactWriteItems call:

  - MustNotExist becomes attribute_not_exists(PK)
  - MustEqual becomes "Value = :prev"

A cancelled transaction whose reasons include ConditionalCheckFailed is
reported as errors.ConditionFailedError. DynamoDB caps a transaction at
100 items; a registration writes seven.

The backend registers itself as "dynamodb"; import it for side effects:

	import _ "github.com/suparena/entityregistry/datastore/ddb"
*/
package ddb
