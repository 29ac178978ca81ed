// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ProjectStore / ConfigStore: the project file (TOML)
//   - DialectStore: per-title script dialects (TOML)
//   - DocumentStore: translation documents (XML)
//   - Compressor: the external LZ tool
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - BuildLedger: content hashes and run history. Without it, --only-changed re-inserts everything.
//   - BackupStore: snapshots of originals. Without it, files are overwritten without a copy.
//   - DiskImageTool: image unpack/compose. Without it, the image commands fail.
//   - ChangeWatcher: used by the watch command only.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or format package
package driven
