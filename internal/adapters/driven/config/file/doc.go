// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML project file, also the ProjectStore
//   - DialectStore: TOML dialect files, cached until modified
package file
