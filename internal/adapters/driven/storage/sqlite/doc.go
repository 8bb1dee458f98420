// Package sqlite provides the SQLite-backed run history.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. The single Store implements driven.RunStore.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each applied version is recorded in schema_migrations, so
// opening an existing database only runs the newer files.
//
// # Data Location
//
// By default, the database is stored at <home>/data/history.db, where home
// is $MODELDOC_HOME or ~/.modeldoc.
//
// # Thread Safety
//
// All operations are safe for concurrent use. The database runs in WAL mode
// with a busy timeout.
package sqlite
