// Package store defines the persistence interfaces consumed by the service
// layer, the DBTX abstraction over *sql.DB / *sql.Tx, shared store errors and
// the RunInTransaction helper that wraps multi-entity writes.
package store
