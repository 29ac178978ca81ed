package xmldoc

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/antchfx/xmlquery"

	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driven"
)

// Ext is the extension of document files.
const Ext = ".xml"

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store reads and writes XML documents.
type Store struct{}

// NewStore creates an XML document store.
func NewStore() *Store {
	return &Store{}
}

// Load reads the document at path.
func (s *Store) Load(ctx context.Context, path string) (*domain.TextDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var x xmlDocument
	if err := xml.Unmarshal(raw, &x); err != nil {
		return nil, fmt.Errorf("%w: document %s: %v", domain.ErrInvalidInput, path, err)
	}
	doc, err := fromXML(x)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", path, err)
	}
	return doc, nil
}

// Save writes the document through a temporary file so readers never see a partial write.
func (s *Store) Save(ctx context.Context, path string, doc *domain.TextDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := xml.MarshalIndent(toXML(doc), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create document directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".doc-*")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

// Stats counts entries per status with an XPath query over the raw file.
// Entries without a Status element count as To Do.
func (s *Store) Stats(ctx context.Context, path string) (map[domain.Status]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	root, err := xmlquery.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w: document %s: %v", domain.ErrInvalidInput, path, err)
	}

	counts := make(map[domain.Status]int)
	for _, entry := range xmlquery.Find(root, "/SceneText/*/Entry") {
		raw := ""
		if n := entry.SelectElement("Status"); n != nil {
			raw = n.InnerText()
		}
		st, err := domain.ParseStatus(raw)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", path, err)
		}
		counts[st]++
	}
	return counts, nil
}

// Ext returns the document file extension.
func (s *Store) Ext() string {
	return Ext
}
