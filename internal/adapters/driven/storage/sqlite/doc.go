// Package sqlite provides the SQLite-backed build ledger.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. The ledger records:
//
//   - file hashes: the content hash of every document last inserted, so
//     unchanged documents can be skipped
//   - runs: one row per extract, insert or pack invocation
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The database is stored at <state_dir>/ledger.db inside the project.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
