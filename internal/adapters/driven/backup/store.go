// Package backup keeps xz-compressed snapshots of project files before they are
// first overwritten, so a bad insertion can be rolled back.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driven"
	"github.com/custodia-labs/scenetext/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.BackupStore = (*Store)(nil)

// Store writes snapshots under dir, mirroring each file's path relative to root.
type Store struct {
	root string
	dir  string
}

// NewStore creates a backup store for files under root.
func NewStore(root, dir string) *Store {
	return &Store{root: root, dir: dir}
}

// Backup snapshots path unless a snapshot already exists.
func (s *Store) Backup(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	snap, err := s.snapshotPath(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(snap); err == nil {
		return false, nil
	}

	src, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(snap), 0o755); err != nil {
		return false, fmt.Errorf("create backup directory: %w", err)
	}
	tmp := snap + ".tmp"
	if err := compressTo(tmp, src); err != nil {
		os.Remove(tmp)
		return false, err
	}
	if err := os.Rename(tmp, snap); err != nil {
		os.Remove(tmp)
		return false, fmt.Errorf("store backup: %w", err)
	}
	logger.Debug("backed up %s", path)
	return true, nil
}

// Restore overwrites path with its snapshot.
func (s *Store) Restore(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap, err := s.snapshotPath(path)
	if err != nil {
		return err
	}
	in, err := os.Open(snap)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: no backup of %s", domain.ErrNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer in.Close()

	r, err := xz.NewReader(in)
	if err != nil {
		return fmt.Errorf("read backup of %s: %w", path, err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("restore %s: %w", path, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("restore %s: %w", path, err)
	}
	return out.Close()
}

func (s *Store) snapshotPath(path string) (string, error) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return "", fmt.Errorf("%w: %s is outside %s", domain.ErrInvalidInput, path, s.root)
	}
	return filepath.Join(s.dir, rel+".xz"), nil
}

func compressTo(dst string, src io.Reader) error {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	w, err := xz.NewWriter(out)
	if err != nil {
		out.Close()
		return fmt.Errorf("create xz writer: %w", err)
	}
	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		out.Close()
		return fmt.Errorf("compress backup: %w", err)
	}
	if err := w.Close(); err != nil {
		out.Close()
		return fmt.Errorf("compress backup: %w", err)
	}
	return out.Close()
}
