package domain

// CompressionKind identifies how an archive entry is compressed.
// It is sniffed from the first content byte and is best-effort only.
type CompressionKind string

const (
	// CompressionNone indicates raw entry bytes.
	CompressionNone CompressionKind = "None"

	// CompressionLZ10 indicates an LZ77 type 0x10 stream.
	CompressionLZ10 CompressionKind = "LZ10"

	// CompressionLZ11 indicates an LZ77 type 0x11 stream.
	CompressionLZ11 CompressionKind = "LZ11"
)

// ArchiveEntry is one named file inside an archive container.
// Entries are created on parse and their bytes are replaced during repack.
type ArchiveEntry struct {
	// Name is unique within its container.
	Name string

	// Data is the raw (possibly compressed) entry content.
	Data []byte

	// Size is the byte size recorded in the container directory.
	Size int

	// Compression is the sniffed compression kind.
	Compression CompressionKind
}

// ChangeType represents the type of file change seen by the watcher.
type ChangeType int

const (
	// ChangeCreated indicates a new file.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified file.
	ChangeUpdated

	// ChangeDeleted indicates a removed file.
	ChangeDeleted
)

// String returns a lowercase name for the change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// FileChange is a change event for a translation document on disk.
type FileChange struct {
	Type ChangeType
	Path string
}
