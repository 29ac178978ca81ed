package process

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scenetext/internal/core/domain"
)

type call struct {
	dir  string
	name string
	args []string
}

// recorder is a Command that records launches instead of starting processes.
type recorder struct {
	mu    sync.Mutex
	calls []call
	out   []byte
	err   error
}

func (r *recorder) run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{dir: dir, name: name, args: args})
	return r.out, r.err
}

func TestLZSS_Arguments(t *testing.T) {
	rec := &recorder{}
	lz := NewLZSS(NewRunner(0, rec.run), "lzss")
	path := filepath.Join("work", "tss", "VOICE_0001.tss")

	require.NoError(t, lz.Decompress(context.Background(), path))
	require.NoError(t, lz.Compress(context.Background(), path))

	require.Len(t, rec.calls, 2)
	assert.Equal(t, call{dir: filepath.Join("work", "tss"), name: "lzss", args: []string{"-d", "VOICE_0001.tss"}}, rec.calls[0])
	assert.Equal(t, []string{"-evn", "VOICE_0001.tss"}, rec.calls[1].args)
}

func TestBLZ_Arguments(t *testing.T) {
	rec := &recorder{}
	blz := NewBLZ(NewRunner(0, rec.run), "blz")
	path := filepath.Join("patched", "arm9.bin")

	require.NoError(t, blz.Decompress(context.Background(), path))
	require.NoError(t, blz.Compress(context.Background(), path))

	assert.Equal(t, []string{"-d", path}, rec.calls[0].args)
	assert.Equal(t, []string{"-en", path}, rec.calls[1].args)
}

func TestNDSTool_Arguments(t *testing.T) {
	rec := &recorder{}
	tool := NewNDSTool(NewRunner(0, rec.run), "ndstool")
	dir := t.TempDir()
	image := filepath.Join(dir, "builds", "game.nds")
	files := filepath.Join(dir, "files")

	require.NoError(t, tool.Extract(context.Background(), image, files))
	require.NoError(t, tool.Build(context.Background(), files, image))

	require.Len(t, rec.calls, 2)
	assert.Equal(t, "-x", rec.calls[0].args[0])
	assert.Equal(t, "-c", rec.calls[1].args[0])
	assert.Equal(t, image, rec.calls[1].args[1])
	assert.Contains(t, rec.calls[0].args, filepath.Join(files, "arm9.bin"))
	assert.Contains(t, rec.calls[0].args, filepath.Join(files, "header.bin"))
	assert.Len(t, rec.calls[0].args, 18)
	assert.DirExists(t, files)
	assert.DirExists(t, filepath.Dir(image))
}

func TestRunner_FailureIsScopedToFile(t *testing.T) {
	rec := &recorder{out: []byte("  bad header\n"), err: errors.New("exit status 1")}
	lz := NewLZSS(NewRunner(0, rec.run), "lzss")

	err := lz.Decompress(context.Background(), "a/b.tss")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProcess)

	var pe *domain.ProcessError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "lzss", pe.Tool)
	assert.Equal(t, "a/b.tss", pe.File)
	assert.Equal(t, "bad header", pe.Output)
}

func TestRunner_CancelledContext(t *testing.T) {
	rec := &recorder{}
	runner := NewRunner(1, rec.run)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runner.Run(ctx, "f", ".", "lzss")
	assert.Error(t, err)
	assert.Empty(t, rec.calls)
}

func TestTrimOutput(t *testing.T) {
	long := strings.Repeat("x", maxOutput+10)
	assert.Equal(t, maxOutput+3, len(trimOutput([]byte(long))))
	assert.Equal(t, "ok", trimOutput([]byte(" ok \n")))
}

func TestExec_MissingBinary(t *testing.T) {
	runner := NewRunner(0, nil)
	err := runner.Run(context.Background(), "f", t.TempDir(), "scenetext-no-such-tool")
	assert.ErrorIs(t, err, domain.ErrProcess)
}
