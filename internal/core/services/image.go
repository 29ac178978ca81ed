package services

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
	"github.com/custodia-labs/scenetext/internal/logger"
)

// keepBuilds is how many timestamped builds stay in the builds directory.
const keepBuilds = 4

// buildStamp formats build timestamps as YYYYMMDDHHMM.
const buildStamp = "200601021504"

// Ensure ImageService implements the interface.
var _ driving.ImageService = (*ImageService)(nil)

// ImageService drives the disk image tool.
type ImageService struct {
	ws *Workspace
}

// NewImageService creates a new image service.
func NewImageService(ws *Workspace) *ImageService {
	return &ImageService{ws: ws}
}

// ExtractImage unpacks image into the original files, then copies them to
// the final files so patching starts from a complete tree.
func (s *ImageService) ExtractImage(ctx context.Context, image string) error {
	if image == "" {
		image = s.ws.Project.Resolve(s.ws.Project.Image.Path)
	}
	if image == "" {
		return fmt.Errorf("%w: no disk image given and image.path is not set", domain.ErrInvalidInput)
	}
	logger.Section("Extracting image")

	original := s.ws.Project.Resolve(s.ws.Project.Paths.OriginalFiles)
	if err := s.ws.Image.Extract(ctx, image, original); err != nil {
		return err
	}
	final := s.ws.Project.Resolve(s.ws.Project.Paths.FinalFiles)
	if err := copyTree(original, final); err != nil {
		return fmt.Errorf("seed final files: %w", err)
	}
	logger.Info("extracted %s into %s", image, original)
	return nil
}

// BuildImage composes the final files into <name>_YYYYMMDDHHMM.nds and
// prunes older builds.
func (s *ImageService) BuildImage(ctx context.Context) (string, error) {
	logger.Section("Building image")
	defer logger.Timed("image build")()
	name := s.ws.Project.Name
	if name == "" {
		name = "build"
	}
	builds := s.ws.Project.Resolve(s.ws.Project.Paths.GameBuilds)
	out := filepath.Join(builds, fmt.Sprintf("%s_%s.nds", name, s.ws.now().Format(buildStamp)))

	final := s.ws.Project.Resolve(s.ws.Project.Paths.FinalFiles)
	if err := s.ws.Image.Build(ctx, final, out); err != nil {
		return "", err
	}
	if err := pruneBuilds(builds, keepBuilds); err != nil {
		logger.Warn("prune builds: %v", err)
	}
	return out, nil
}

// pruneBuilds deletes all but the keep newest images. Build names sort by time.
func pruneBuilds(dir string, keep int) error {
	names, err := listFiles(dir, ".nds")
	if err != nil {
		return err
	}
	sort.Strings(names)
	if len(names) <= keep {
		return nil
	}
	for _, n := range names[:len(names)-keep] {
		logger.Debug("deleting old build %s", n)
		if err := os.Remove(filepath.Join(dir, n)); err != nil {
			return err
		}
	}
	return nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
