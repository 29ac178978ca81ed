package fps4

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driven"
	"github.com/custodia-labs/scenetext/internal/logger"
)

// ExtractAll writes every entry to outputDir/name. With decompress set,
// LZ10 entries are decompressed in place by comp. A failure on one entry
// is recorded and the remaining entries are still written.
func (a *Archive) ExtractAll(ctx context.Context, outputDir string, decompress bool, comp driven.Compressor) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var errs []error
	for _, e := range a.Entries {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		path := filepath.Join(outputDir, e.Name)
		if err := os.WriteFile(path, e.Data, 0o644); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", e.Name, err))
			continue
		}
		logger.Debug("fps4: extracted %s (%d bytes, %s)", e.Name, e.Size, e.Compression)

		if decompress && e.Compression == domain.CompressionLZ10 && comp != nil {
			if err := comp.Decompress(ctx, path); err != nil {
				logger.Warn("fps4: decompress %s: %v", e.Name, err)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RepackResult lists what Repack did per entry.
type RepackResult struct {
	Updated []string
	Kept    []string
}

// Repack rebuilds the archive from updatedDir. Every entry with a file of
// the same name in updatedDir is compressed by comp and replaces the
// entry's bytes; other entries keep their current bytes. The new detail and
// header streams are written to outDetail and outHeader, which must differ.
//
// A compression failure keeps that entry's previous bytes and is returned
// joined with any others once the archive has been written.
func (a *Archive) Repack(ctx context.Context, updatedDir, outDetail, outHeader string, comp driven.Compressor) (*RepackResult, error) {
	if outHeader == "" || outHeader == outDetail {
		return nil, fmt.Errorf("%w: header and detail outputs must be separate files", domain.ErrInvalidInput)
	}
	work, err := os.MkdirTemp("", "fps4-repack-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(work)

	res := &RepackResult{}
	var errs []error
	for i := range a.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e := &a.Entries[i]
		data, ok, err := compressUpdated(ctx, filepath.Join(updatedDir, e.Name), filepath.Join(work, e.Name), comp)
		if err != nil {
			logger.Warn("fps4: keeping previous bytes of %s: %v", e.Name, err)
			errs = append(errs, err)
			res.Kept = append(res.Kept, e.Name)
			continue
		}
		if !ok {
			res.Kept = append(res.Kept, e.Name)
			continue
		}
		e.Data = data
		e.Size = len(data)
		e.Compression = Sniff(data)
		res.Updated = append(res.Updated, e.Name)
	}

	header, detail, err := Build(a.Entries)
	if err != nil {
		return nil, err
	}
	if err := writeStreams(header, detail, outDetail, outHeader); err != nil {
		return nil, err
	}
	a.HeaderPath, a.DetailPath = outHeader, outDetail
	a.BodyOffset, a.Stride = 0, recordStride
	return res, errors.Join(errs...)
}

// compressUpdated copies src into the work dir and compresses the copy.
// It reports false when src does not exist.
func compressUpdated(ctx context.Context, src, dst string, comp driven.Compressor) ([]byte, bool, error) {
	raw, err := os.ReadFile(src)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", src, err)
	}
	if comp == nil {
		return raw, true, nil
	}
	if err := os.WriteFile(dst, raw, 0o644); err != nil {
		return nil, false, fmt.Errorf("stage %s: %w", dst, err)
	}
	if err := comp.Compress(ctx, dst); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		return nil, false, fmt.Errorf("reload %s: %w", dst, err)
	}
	return data, true, nil
}

func writeStreams(header, detail []byte, outDetail, outHeader string) error {
	if err := writeFile(outDetail, detail); err != nil {
		return err
	}
	return writeFile(outHeader, header)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
