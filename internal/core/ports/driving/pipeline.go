package driving

import (
	"context"

	"github.com/custodia-labs/scenetext/internal/core/domain"
)

// ExtractOptions control extraction.
type ExtractOptions struct {
	// Replace regenerates existing documents, keeping translations whose
	// pointer offsets and source text still match.
	Replace bool
}

// InsertOptions control insertion and validation.
type InsertOptions struct {
	// Stages are opt-in statuses inserted besides Done.
	Stages []domain.Status

	// OnlyChanged skips documents whose content hash matches the ledger.
	OnlyChanged bool

	// DryRun encodes and places everything without writing any file.
	DryRun bool
}

// Extractor turns game files into editable documents.
type Extractor interface {
	// ExtractArchive unpacks the story archive and decompresses its scripts.
	ExtractArchive(ctx context.Context) (*domain.Report, error)

	// ExtractStory writes one document per dialogue script.
	ExtractStory(ctx context.Context, opts ExtractOptions) (*domain.Report, error)

	// ExtractMenu writes one document per configured fixed-layout file.
	ExtractMenu(ctx context.Context, opts ExtractOptions) (*domain.Report, error)
}

// Inserter writes translated documents back into game files.
type Inserter interface {
	// InsertStory rebuilds every dialogue script from its document.
	InsertStory(ctx context.Context, opts InsertOptions) (*domain.Report, error)

	// InsertMenu patches every configured fixed-layout file.
	InsertMenu(ctx context.Context, opts InsertOptions) (*domain.Report, error)

	// PackArchive repacks the story archive from the rebuilt scripts.
	PackArchive(ctx context.Context) (*domain.Report, error)

	// InsertAll runs InsertStory, PackArchive and InsertMenu.
	InsertAll(ctx context.Context, opts InsertOptions) (*domain.Report, error)
}

// Validator checks documents without writing anything.
type Validator interface {
	// Validate encodes and places every entry, reporting every failure.
	Validate(ctx context.Context, opts InsertOptions) (*domain.Report, error)
}

// DocumentStatus is the status breakdown of one document.
type DocumentStatus struct {
	Path   string
	Counts map[domain.Status]int
}

// Total returns the number of entries in the document.
func (s DocumentStatus) Total() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// StatusReporter reports translation progress.
type StatusReporter interface {
	// Status returns the breakdown of every document, or of the one at path.
	Status(ctx context.Context, path string) ([]DocumentStatus, error)

	// Document loads the document at path for reading.
	Document(ctx context.Context, path string) (*domain.TextDocument, error)
}

// ImageService drives the disk image tool.
type ImageService interface {
	// ExtractImage unpacks the image into the original files and seeds the final files.
	ExtractImage(ctx context.Context, image string) error

	// BuildImage composes the final files into a new timestamped build and returns its path.
	BuildImage(ctx context.Context) (string, error)
}

// WatchEvent reports one re-insertion triggered by a document change.
type WatchEvent struct {
	Change domain.FileChange
	Report *domain.Report
	Err    error
}

// Watcher re-inserts documents as they change.
type Watcher interface {
	// Watch blocks until ctx is cancelled, calling notify after each pass.
	Watch(ctx context.Context, opts InsertOptions, notify func(WatchEvent)) error
}

// RunHistory lists recorded pipeline runs.
type RunHistory interface {
	// Runs returns up to limit runs, newest first.
	Runs(ctx context.Context, limit int) ([]domain.Run, error)
}
