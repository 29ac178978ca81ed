package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
	"github.com/custodia-labs/scenetext/internal/formats/fps4"
	"github.com/custodia-labs/scenetext/internal/formats/menu"
	"github.com/custodia-labs/scenetext/internal/formats/tss"
	"github.com/custodia-labs/scenetext/internal/logger"
)

// Ensure ExtractService implements the interface.
var _ driving.Extractor = (*ExtractService)(nil)

// ExtractService turns game files into documents.
type ExtractService struct {
	ws *Workspace
}

// NewExtractService creates a new extract service.
func NewExtractService(ws *Workspace) *ExtractService {
	return &ExtractService{ws: ws}
}

// ExtractArchive unpacks the story archive into the extracted files,
// decompressing LZ10 entries.
func (s *ExtractService) ExtractArchive(ctx context.Context) (*domain.Report, error) {
	return s.ws.track(ctx, domain.RunExtract, "archive", func() (*domain.Report, error) {
		logger.Section("Extracting archive")
		report := domain.NewReport(domain.RunExtract)

		detail, header, _, err := s.ws.archivePaths()
		if err != nil {
			return nil, err
		}
		archive, err := fps4.Parse(header, detail)
		if err != nil {
			return nil, err
		}
		out := s.ws.storyExtractDir()
		for _, e := range archive.Entries {
			report.Processed = append(report.Processed, filepath.Join(out, e.Name))
		}
		if err := archive.ExtractAll(ctx, out, true, s.ws.LZSS); err != nil {
			report.Fail(filepath.Base(detail), err)
		}
		logger.Info("extracted %d entries to %s", len(archive.Entries), out)
		return report, report.Err()
	})
}

// ExtractStory writes a document for every dialogue script in the extracted files.
func (s *ExtractService) ExtractStory(ctx context.Context, opts driving.ExtractOptions) (*domain.Report, error) {
	return s.ws.track(ctx, domain.RunExtract, storyDir, func() (*domain.Report, error) {
		logger.Section("Extracting story")
		dir := s.ws.storyExtractDir()
		names, err := listFiles(dir, s.ws.Project.Story.ScriptExt)
		if err != nil {
			return nil, err
		}
		if len(names) == 0 {
			logger.Warn("no %s scripts in %s", s.ws.Project.Story.ScriptExt, dir)
		}

		report, err := s.ws.forEach(ctx, domain.RunExtract, names, func(ctx context.Context, name string, r *domain.Report) error {
			dst := s.ws.docPath(storyDir, stemOf(name))
			blob, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				r.Fail(name, err)
				return nil
			}
			doc, nodes, err := tss.Extract(blob, s.ws.Codec)
			if err != nil {
				r.Fail(name, err)
				return nil
			}
			logger.Debug("%s: %d structs, %d speakers", name, len(nodes), len(doc.Speakers))
			s.save(ctx, dst, doc, opts, r)
			return nil
		})
		if err != nil {
			return report, err
		}
		return report, report.Err()
	})
}

// ExtractMenu writes a document for every configured fixed-layout file.
func (s *ExtractService) ExtractMenu(ctx context.Context, opts driving.ExtractOptions) (*domain.Report, error) {
	return s.ws.track(ctx, domain.RunExtract, menuDir, func() (*domain.Report, error) {
		logger.Section("Extracting menus")
		files := s.ws.Project.Menu.Files
		names := make([]string, len(files))
		byName := make(map[string]domain.MenuFile, len(files))
		for i, f := range files {
			names[i] = f.DocName()
			byName[names[i]] = f
		}

		report, err := s.ws.forEach(ctx, domain.RunExtract, names, func(ctx context.Context, name string, r *domain.Report) error {
			file := byName[name]
			blob, err := s.loadMenuSource(ctx, file)
			if err != nil {
				r.Fail(name, err)
				return nil
			}
			doc, err := menu.Extract(blob, file, s.ws.Project.Menu.MemoryBase, s.ws.Codec)
			if err != nil {
				r.Fail(name, err)
				return nil
			}
			s.save(ctx, s.ws.docPath(menuDir, name), doc, opts, r)
			return nil
		})
		if err != nil {
			return report, err
		}
		return report, report.Err()
	})
}

// loadMenuSource reads the original bytes of a fixed-layout file. Compressed
// files are copied into the extracted files and decompressed there.
func (s *ExtractService) loadMenuSource(ctx context.Context, file domain.MenuFile) ([]byte, error) {
	src := filepath.Join(s.ws.Project.Resolve(s.ws.Project.Paths.OriginalFiles), file.Path)
	raw, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	if !file.Compressed {
		return raw, nil
	}
	work := filepath.Join(s.ws.menuExtractDir(), filepath.Base(file.Path))
	if err := writeAtomic(work, raw); err != nil {
		return nil, err
	}
	if s.ws.BLZ == nil {
		return nil, fmt.Errorf("%w: %s is compressed but no decompressor is configured", domain.ErrInvalidInput, file.Path)
	}
	if err := s.ws.BLZ.Decompress(ctx, work); err != nil {
		return nil, err
	}
	return os.ReadFile(work)
}

// save writes doc to dst. An existing document is kept unless Replace is
// set, in which case its translations are carried over.
func (s *ExtractService) save(ctx context.Context, dst string, doc *domain.TextDocument, opts driving.ExtractOptions, r *domain.Report) {
	existing, err := s.ws.Docs.Load(ctx, dst)
	switch {
	case err == nil && !opts.Replace:
		logger.Debug("keeping existing %s", dst)
		r.Skipped = append(r.Skipped, dst)
		return
	case err == nil:
		kept := MergeTranslations(doc, existing)
		logger.Debug("%s: kept %d translations", dst, kept)
	case !errors.Is(err, domain.ErrNotFound):
		r.Fail(dst, err)
		return
	}
	if err := s.ws.Docs.Save(ctx, dst, doc); err != nil {
		r.Fail(dst, err)
		return
	}
	r.Processed = append(r.Processed, dst)
}
