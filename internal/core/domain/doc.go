// Package domain defines the core entities of the scenetext pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - TextDocument: the editable representation of one script or menu file
//   - TextEntry / SpeakerEntry: translatable strings with their pointer sites
//   - StructNode: one dialogue record found in a script binary
//   - ArchiveEntry: a named file inside an archive container
//   - Pool, PointerSite, Slot: relocation value types
//   - Project: the typed project configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
