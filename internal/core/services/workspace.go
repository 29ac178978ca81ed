package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/scenetext/internal/codec"
	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driven"
	"github.com/custodia-labs/scenetext/internal/formats/fps4"
	"github.com/custodia-labs/scenetext/internal/logger"
)

// Sub-directories used for story scripts and fixed-layout files.
const (
	storyDir = "story"
	menuDir  = "menu"
)

// Workspace bundles what every service needs.
type Workspace struct {
	Project *domain.Project
	Codec   *codec.Codec
	Docs    driven.DocumentStore

	// Ledger and Backups may be nil, which disables change tracking and snapshots.
	Ledger  driven.BuildLedger
	Backups driven.BackupStore

	LZSS  driven.Compressor
	BLZ   driven.Compressor
	Image driven.DiskImageTool

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

func (w *Workspace) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *Workspace) dir(rel string, sub ...string) string {
	return filepath.Join(append([]string{w.Project.Resolve(rel)}, sub...)...)
}

func (w *Workspace) storyExtractDir() string {
	return w.dir(w.Project.Paths.ExtractedFiles, storyDir)
}

func (w *Workspace) storyStageDir() string {
	return w.dir(w.Project.Paths.State, storyDir)
}

func (w *Workspace) menuExtractDir() string {
	return w.dir(w.Project.Paths.ExtractedFiles, menuDir)
}

func (w *Workspace) docDir(sub string) string {
	return w.dir(w.Project.Paths.TranslatedFiles, sub)
}

func (w *Workspace) docPath(sub, stem string) string {
	return filepath.Join(w.docDir(sub), stem+w.Docs.Ext())
}

// archivePaths returns the story archive detail and header paths under the
// original files, plus the header path relative to that directory.
func (w *Workspace) archivePaths() (detail, header, headerRel string, err error) {
	if w.Project.Story.Archive == "" {
		return "", "", "", fmt.Errorf("%w: story.archive is not configured", domain.ErrInvalidInput)
	}
	original := w.Project.Resolve(w.Project.Paths.OriginalFiles)
	detail = filepath.Join(original, w.Project.Story.Archive)
	header, err = fps4.FindSibling(detail, w.Project.Story.HeaderExt)
	if err != nil {
		return "", "", "", err
	}
	headerRel, err = filepath.Rel(original, header)
	if err != nil {
		return "", "", "", err
	}
	return detail, header, headerRel, nil
}

func (w *Workspace) workers() int {
	if n := w.Project.Tools.Workers; n > 0 {
		return n
	}
	return 1
}

// forEach runs fn for every item, up to the configured worker count at a
// time, and merges the per-item reports in item order. fn reports per-item
// failures through its report; a returned error aborts the remaining items.
func (w *Workspace) forEach(ctx context.Context, kind domain.RunKind, items []string, fn func(ctx context.Context, item string, r *domain.Report) error) (*domain.Report, error) {
	results := make([]*domain.Report, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers())
	for i, item := range items {
		results[i] = domain.NewReport(kind)
		r := results[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, item, r)
		})
	}
	err := g.Wait()

	report := domain.NewReport(kind)
	for _, r := range results {
		report.Merge(r)
	}
	return report, err
}

// track records a run in the ledger around fn.
func (w *Workspace) track(ctx context.Context, kind domain.RunKind, target string, fn func() (*domain.Report, error)) (*domain.Report, error) {
	if w.Ledger == nil {
		return fn()
	}
	run := domain.Run{ID: uuid.NewString(), Kind: kind, Target: target, StartedAt: w.now()}
	if err := w.Ledger.SaveRun(ctx, run); err != nil {
		logger.Warn("record run: %v", err)
	}

	report, err := fn()

	run.FinishedAt = w.now()
	if report != nil {
		run.Files = len(report.Processed)
		run.Skipped = len(report.Skipped)
		run.Errors = len(report.Failures)
	}
	if err != nil && (report == nil || len(report.Failures) == 0) {
		run.Errors++
	}
	if serr := w.Ledger.SaveRun(context.WithoutCancel(ctx), run); serr != nil {
		logger.Warn("record run: %v", serr)
	}
	return report, err
}

// unchanged reports whether doc has the hash recorded for it and output exists.
// It also returns the current hash for recording after a successful pass.
func (w *Workspace) unchanged(ctx context.Context, doc, output string, set domain.InsertionSet) (bool, string, error) {
	sum, err := w.insertKey(doc, set)
	if err != nil {
		return false, "", err
	}
	if w.Ledger == nil {
		return false, sum, nil
	}
	prev, ok, err := w.Ledger.Hash(ctx, doc)
	if err != nil {
		return false, sum, err
	}
	if !ok || prev != sum {
		return false, sum, nil
	}
	if _, err := os.Stat(output); err != nil {
		return false, sum, nil
	}
	return true, sum, nil
}

func (w *Workspace) recordHash(ctx context.Context, doc, sum string) {
	if w.Ledger == nil || sum == "" {
		return
	}
	if err := w.Ledger.RecordHash(ctx, doc, sum); err != nil {
		logger.Warn("record hash of %s: %v", doc, err)
	}
}

// backup snapshots path before its first overwrite. Missing files are fine.
func (w *Workspace) backup(ctx context.Context, path string) error {
	if w.Backups == nil || !w.Project.Insert.Backup {
		return nil
	}
	created, err := w.Backups.Backup(ctx, path)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("backup %s: %w", path, err)
	}
	if created {
		logger.Debug("snapshot of %s saved", path)
	}
	return nil
}

// digest is the hex blake3 hash of a file.
// insertKey hashes a document together with what decides its output: the
// statuses that get inserted and the dialect the text is encoded with.
func (w *Workspace) insertKey(path string, set domain.InsertionSet) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	defer f.Close()
	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	stages := make([]string, 0, len(domain.AllStatuses()))
	for _, st := range set.Statuses() {
		stages = append(stages, string(st))
	}
	dialect := ""
	if w.Codec != nil {
		dialect = w.Codec.Dialect().Name
	}
	fmt.Fprintf(h, "\x00stages=%s\x00dialect=%s", strings.Join(stages, ","), dialect)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// listFiles returns the sorted names of regular files in dir ending in ext.
func listFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ext) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// writeAtomic writes data through a temporary file in the target directory.
// writeCompressed stages data under a temporary directory next to path,
// compresses the staged copy and moves it over path only once compression
// succeeded. path is left untouched on failure.
func writeCompressed(ctx context.Context, path string, data []byte, comp driven.Compressor) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	stage, err := os.MkdirTemp(dir, ".stage-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.RemoveAll(stage)

	tmp := filepath.Join(stage, filepath.Base(path))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := comp.Compress(ctx, tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".write-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func stemOf(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
