package process

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/scenetext/internal/core/ports/driven"
)

// Ensure NDSTool implements the interface.
var _ driven.DiskImageTool = (*NDSTool)(nil)

// NDSTool wraps the disk image composer.
type NDSTool struct {
	runner *Runner
	exe    string
}

// NewNDSTool creates the disk image collaborator.
func NewNDSTool(runner *Runner, exe string) *NDSTool {
	return &NDSTool{runner: runner, exe: exe}
}

// Extract unpacks image into dir.
func (t *NDSTool) Extract(ctx context.Context, image, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create extraction directory: %w", err)
	}
	return t.runner.Run(ctx, image, filepath.Dir(image), t.exe, RegionArgs("-x", image, dir)...)
}

// Build composes dir into image.
func (t *NDSTool) Build(ctx context.Context, dir, image string) error {
	if err := os.MkdirAll(filepath.Dir(image), 0o755); err != nil {
		return fmt.Errorf("create build directory: %w", err)
	}
	return t.runner.Run(ctx, image, filepath.Dir(image), t.exe, RegionArgs("-c", image, dir)...)
}

// RegionArgs returns the tool arguments naming every image region under dir.
func RegionArgs(mode, image, dir string) []string {
	return []string{
		mode, image,
		"-9", filepath.Join(dir, "arm9.bin"),
		"-7", filepath.Join(dir, "arm7.bin"),
		"-y9", filepath.Join(dir, "y9.bin"),
		"-y7", filepath.Join(dir, "y7.bin"),
		"-d", filepath.Join(dir, "data"),
		"-y", filepath.Join(dir, "overlay"),
		"-t", filepath.Join(dir, "banner.bin"),
		"-h", filepath.Join(dir, "header.bin"),
	}
}
