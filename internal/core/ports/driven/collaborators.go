package driven

import "context"

// Compressor runs the external LZ compression tool on a file in place.
// Failures are reported as *domain.ProcessError scoped to that file.
type Compressor interface {
	// Decompress replaces the file with its decompressed content.
	Decompress(ctx context.Context, path string) error

	// Compress replaces the file with its compressed content.
	Compress(ctx context.Context, path string) error
}

// DiskImageTool unpacks and rebuilds the console disk image.
type DiskImageTool interface {
	// Extract unpacks image into dir.
	Extract(ctx context.Context, image, dir string) error

	// Build composes dir into image.
	Build(ctx context.Context, dir, image string) error
}
