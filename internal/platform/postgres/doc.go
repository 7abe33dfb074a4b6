// Package postgres provides PostgreSQL implementations of the store
// interfaces defined in the store package.
//
// Each store accepts a store.DBTX (either a *sql.DB or a *sql.Tx), so the
// same implementation serves both standalone calls and calls participating
// in a caller-managed transaction via WithTx. Database errors are translated
// to the store package's sentinel errors through MapError so services and
// handlers never depend on driver-specific error types.
//
// Schema migrations live in the migrations subdirectory and are applied with
// goose at startup through RunMigrations.
package postgres
