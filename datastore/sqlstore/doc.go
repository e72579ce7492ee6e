// Package sqlstore implements datastore.StateStore on a single SQL table
// with columns (space, key, value). The postgres and sqlite backends share it.
package sqlstore
