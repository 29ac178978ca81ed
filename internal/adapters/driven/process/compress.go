package process

import (
	"context"
	"path/filepath"

	"github.com/custodia-labs/scenetext/internal/core/ports/driven"
)

// Ensure the compressors implement the interface.
var (
	_ driven.Compressor = (*LZSS)(nil)
	_ driven.Compressor = (*BLZ)(nil)
)

// LZSS wraps the LZ10 compressor used for archive entries.
// It works in place on a file name relative to the file's directory.
type LZSS struct {
	runner *Runner
	exe    string
}

// NewLZSS creates the LZ10 collaborator.
func NewLZSS(runner *Runner, exe string) *LZSS {
	return &LZSS{runner: runner, exe: exe}
}

// Decompress runs "lzss -d name" next to the file.
func (c *LZSS) Decompress(ctx context.Context, path string) error {
	return c.runner.Run(ctx, path, filepath.Dir(path), c.exe, "-d", filepath.Base(path))
}

// Compress runs "lzss -evn name" next to the file.
func (c *LZSS) Compress(ctx context.Context, path string) error {
	return c.runner.Run(ctx, path, filepath.Dir(path), c.exe, "-evn", filepath.Base(path))
}

// BLZ wraps the bottom-up LZ compressor used for the main program binary.
type BLZ struct {
	runner *Runner
	exe    string
}

// NewBLZ creates the BLZ collaborator.
func NewBLZ(runner *Runner, exe string) *BLZ {
	return &BLZ{runner: runner, exe: exe}
}

// Decompress runs "blz -d path".
func (c *BLZ) Decompress(ctx context.Context, path string) error {
	return c.runner.Run(ctx, path, filepath.Dir(path), c.exe, "-d", path)
}

// Compress runs "blz -en path".
func (c *BLZ) Compress(ctx context.Context, path string) error {
	return c.runner.Run(ctx, path, filepath.Dir(path), c.exe, "-en", path)
}
