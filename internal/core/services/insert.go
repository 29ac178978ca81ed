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

// Ensure InsertService implements the interface.
var _ driving.Inserter = (*InsertService)(nil)

// InsertService writes translated documents back into game files.
//
// Story scripts are rebuilt into the state directory; PackArchive then
// repacks them into the final files. Fixed-layout files are patched
// straight into the final files. Every output is written only after its
// whole pass succeeded.
type InsertService struct {
	ws *Workspace
}

// NewInsertService creates a new insert service.
func NewInsertService(ws *Workspace) *InsertService {
	return &InsertService{ws: ws}
}

// InsertStory rebuilds every script that has a document.
func (s *InsertService) InsertStory(ctx context.Context, opts driving.InsertOptions) (*domain.Report, error) {
	if opts.DryRun {
		return s.insertStory(ctx, opts)
	}
	return s.ws.track(ctx, domain.RunInsert, storyDir, func() (*domain.Report, error) {
		return s.insertStory(ctx, opts)
	})
}

func (s *InsertService) insertStory(ctx context.Context, opts driving.InsertOptions) (*domain.Report, error) {
	logger.Section("Inserting story")
	set, err := s.ws.Project.InsertionSet(opts.Stages...)
	if err != nil {
		return nil, err
	}
	docs, err := listFiles(s.ws.docDir(storyDir), s.ws.Docs.Ext())
	if err != nil {
		return nil, err
	}
	scriptExt := s.ws.Project.Story.ScriptExt

	report, err := s.ws.forEach(ctx, domain.RunInsert, docs, func(ctx context.Context, name string, r *domain.Report) error {
		docPath := filepath.Join(s.ws.docDir(storyDir), name)
		script := stemOf(name) + scriptExt
		staged := filepath.Join(s.ws.storyStageDir(), script)

		var sum string
		if opts.OnlyChanged && !opts.DryRun {
			same, h, err := s.ws.unchanged(ctx, docPath, staged, set)
			if err != nil {
				r.Fail(name, err)
				return nil
			}
			if same {
				r.Skipped = append(r.Skipped, docPath)
				return nil
			}
			sum = h
		}

		doc, err := s.ws.Docs.Load(ctx, docPath)
		if err != nil {
			r.Fail(name, err)
			return nil
		}
		blob, err := os.ReadFile(filepath.Join(s.ws.storyExtractDir(), script))
		if err != nil {
			r.Fail(name, fmt.Errorf("original script: %w", err))
			return nil
		}
		out, err := tss.Rebuild(blob, doc, s.ws.Codec, set)
		if err != nil {
			r.Fail(name, err)
			return nil
		}
		if opts.DryRun {
			r.Processed = append(r.Processed, docPath)
			return nil
		}

		if err := writeAtomic(staged, out); err != nil {
			r.Fail(name, err)
			return nil
		}
		if sum == "" {
			if sum, err = s.ws.insertKey(docPath, set); err != nil {
				logger.Warn("%v", err)
			}
		}
		s.ws.recordHash(ctx, docPath, sum)
		logger.Debug("%s: rebuilt %d bytes", script, len(out))
		r.Processed = append(r.Processed, staged)
		return nil
	})
	if err != nil {
		return report, err
	}
	logger.Info("story: %d rebuilt, %d unchanged, %d failed", len(report.Processed), len(report.Skipped), len(report.Failures))
	return report, report.Err()
}

// InsertMenu patches every configured fixed-layout file that has a document.
func (s *InsertService) InsertMenu(ctx context.Context, opts driving.InsertOptions) (*domain.Report, error) {
	if opts.DryRun {
		return s.insertMenu(ctx, opts)
	}
	return s.ws.track(ctx, domain.RunInsert, menuDir, func() (*domain.Report, error) {
		return s.insertMenu(ctx, opts)
	})
}

func (s *InsertService) insertMenu(ctx context.Context, opts driving.InsertOptions) (*domain.Report, error) {
	logger.Section("Inserting menus")
	set, err := s.ws.Project.InsertionSet(opts.Stages...)
	if err != nil {
		return nil, err
	}
	files := s.ws.Project.Menu.Files
	names := make([]string, len(files))
	byName := make(map[string]domain.MenuFile, len(files))
	for i, f := range files {
		names[i] = f.DocName()
		byName[names[i]] = f
	}
	final := s.ws.Project.Resolve(s.ws.Project.Paths.FinalFiles)

	report, err := s.ws.forEach(ctx, domain.RunInsert, names, func(ctx context.Context, name string, r *domain.Report) error {
		file := byName[name]
		docPath := s.ws.docPath(menuDir, name)
		dest := filepath.Join(final, file.Path)

		var sum string
		if opts.OnlyChanged && !opts.DryRun {
			same, h, err := s.ws.unchanged(ctx, docPath, dest, set)
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			if err != nil {
				r.Fail(name, err)
				return nil
			}
			if same {
				r.Skipped = append(r.Skipped, docPath)
				return nil
			}
			sum = h
		}

		doc, err := s.ws.Docs.Load(ctx, docPath)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("menu %s has no document", name)
			return nil
		}
		if err != nil {
			r.Fail(name, err)
			return nil
		}
		blob, err := s.menuSource(file)
		if err != nil {
			r.Fail(name, err)
			return nil
		}
		pass := menu.Insert
		if opts.DryRun {
			pass = menu.Check
		}
		res, err := pass(blob, file, s.ws.Project.Menu.MemoryBase, doc, s.ws.Codec, set)
		if err != nil {
			r.Fail(name, err)
			return nil
		}
		r.Placements += len(res.Placements)
		r.Diagnostics = append(r.Diagnostics, res.Diagnostics...)
		if opts.DryRun {
			r.Processed = append(r.Processed, docPath)
			return nil
		}

		if err := s.ws.backup(ctx, dest); err != nil {
			r.Fail(name, err)
			return nil
		}
		if file.Compressed {
			err = writeCompressed(ctx, dest, res.Data, s.ws.BLZ)
		} else {
			err = writeAtomic(dest, res.Data)
		}
		if err != nil {
			r.Fail(name, err)
			return nil
		}
		if sum == "" {
			if sum, err = s.ws.insertKey(docPath, set); err != nil {
				logger.Warn("%v", err)
			}
		}
		s.ws.recordHash(ctx, docPath, sum)
		r.Processed = append(r.Processed, dest)
		return nil
	})
	if err != nil {
		return report, err
	}
	logger.Info("menus: %d patched, %d relocated entries, %d diagnostics", len(report.Processed), report.Placements, len(report.Diagnostics))
	return report, report.Err()
}

// menuSource returns the uncompressed original bytes of a fixed-layout file.
func (s *InsertService) menuSource(file domain.MenuFile) ([]byte, error) {
	if file.Compressed {
		if s.ws.BLZ == nil {
			return nil, fmt.Errorf("%w: %s is compressed but no compressor is configured", domain.ErrInvalidInput, file.Path)
		}
		path := filepath.Join(s.ws.menuExtractDir(), filepath.Base(file.Path))
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("decompressed %s (run extract menu first): %w", file.Path, err)
		}
		return raw, nil
	}
	return os.ReadFile(filepath.Join(s.ws.Project.Resolve(s.ws.Project.Paths.OriginalFiles), file.Path))
}

// PackArchive repacks the story archive from the rebuilt scripts into the final files.
func (s *InsertService) PackArchive(ctx context.Context) (*domain.Report, error) {
	return s.ws.track(ctx, domain.RunPack, "archive", func() (*domain.Report, error) {
		logger.Section("Packing archive")
		defer logger.Timed("repack")()
		report := domain.NewReport(domain.RunPack)

		detail, header, headerRel, err := s.ws.archivePaths()
		if err != nil {
			return nil, err
		}
		archive, err := fps4.Parse(header, detail)
		if err != nil {
			return nil, err
		}

		final := s.ws.Project.Resolve(s.ws.Project.Paths.FinalFiles)
		outDetail := filepath.Join(final, s.ws.Project.Story.Archive)
		outHeader := filepath.Join(final, headerRel)
		for _, p := range []string{outDetail, outHeader} {
			if err := s.ws.backup(ctx, p); err != nil {
				return nil, err
			}
		}

		res, err := archive.Repack(ctx, s.ws.storyStageDir(), outDetail, outHeader, s.ws.LZSS)
		if res == nil {
			return nil, err
		}
		if err != nil {
			report.Fail(filepath.Base(outDetail), err)
		}
		report.Processed = append(report.Processed, res.Updated...)
		logger.Info("archive: %d entries updated, %d kept", len(res.Updated), len(res.Kept))
		return report, report.Err()
	})
}

// InsertAll rebuilds the story, repacks the archive and patches the menus.
// A failing step does not stop the later ones.
func (s *InsertService) InsertAll(ctx context.Context, opts driving.InsertOptions) (*domain.Report, error) {
	report := domain.NewReport(domain.RunInsert)
	var errs []error

	story, err := s.InsertStory(ctx, opts)
	report.Merge(story)
	if err != nil {
		errs = append(errs, err)
	}
	if !opts.DryRun && s.ws.Project.Story.Archive != "" {
		packed, err := s.PackArchive(ctx)
		report.Merge(packed)
		if err != nil {
			errs = append(errs, err)
		}
	}
	menus, err := s.InsertMenu(ctx, opts)
	report.Merge(menus)
	if err != nil {
		errs = append(errs, err)
	}
	return report, errors.Join(errs...)
}
