package driven

import (
	"context"

	"github.com/custodia-labs/scenetext/internal/core/domain"
)

// DocumentStore persists text documents exchanged with the editing workflow.
// Backed by XML files, one per script or menu file.
type DocumentStore interface {
	// Load reads the document at path.
	// Returns domain.ErrNotFound if the file does not exist.
	Load(ctx context.Context, path string) (*domain.TextDocument, error)

	// Save writes the document to path, creating parent directories.
	Save(ctx context.Context, path string, doc *domain.TextDocument) error

	// Stats counts entries per status without decoding the full document.
	Stats(ctx context.Context, path string) (map[domain.Status]int, error)

	// Ext is the file extension documents are stored with.
	Ext() string
}
