/*
Package redisstore implements datastore.StateStore on Redis.

Each value is a string key of the form

	<prefix><Space>:<hex id>

Apply uses optimistic locking: WATCH on every key in the batch, GET for
guarded writes, then SET everything inside MULTI/EXEC. EXEC aborting with
redis.TxFailedErr is reported as errors.ConditionFailedError.
*/
package redisstore
