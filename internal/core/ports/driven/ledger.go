package driven

import (
	"context"

	"github.com/custodia-labs/scenetext/internal/core/domain"
)

// BuildLedger records content hashes and runs so unchanged documents can be skipped.
type BuildLedger interface {
	// Hash returns the hash last recorded for path.
	// The boolean is false if no hash is recorded.
	Hash(ctx context.Context, path string) (string, bool, error)

	// RecordHash stores the hash for path.
	RecordHash(ctx context.Context, path, sum string) error

	// SaveRun stores or updates a run.
	SaveRun(ctx context.Context, run domain.Run) error

	// Runs returns up to limit runs, newest first.
	Runs(ctx context.Context, limit int) ([]domain.Run, error)

	// Close releases the underlying storage.
	Close() error
}

// BackupStore keeps a pristine copy of every file before it is first overwritten.
type BackupStore interface {
	// Backup snapshots path unless a snapshot already exists.
	// Returns true when a new snapshot was written.
	Backup(ctx context.Context, path string) (bool, error)

	// Restore overwrites path with its snapshot.
	// Returns domain.ErrNotFound if there is none.
	Restore(ctx context.Context, path string) error
}

// ChangeWatcher reports changes to document files under a directory.
type ChangeWatcher interface {
	// Watch streams changes until ctx is cancelled. The channel is closed on return.
	Watch(ctx context.Context, dir string) (<-chan domain.FileChange, error)
}
