package fps4

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scenetext/internal/core/domain"
)

// fakeCompressor marks compressed files with a leading 0x10 byte.
type fakeCompressor struct {
	fail       map[string]bool
	compressed []string
}

func (f *fakeCompressor) Compress(_ context.Context, path string) error {
	if f.fail[filepath.Base(path)] {
		return &domain.ProcessError{Tool: "lzss", File: path}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	f.compressed = append(f.compressed, filepath.Base(path))
	return os.WriteFile(path, append([]byte{0x10}, data...), 0o644)
}

func (f *fakeCompressor) Decompress(_ context.Context, path string) error {
	if f.fail[filepath.Base(path)] {
		return &domain.ProcessError{Tool: "lzss", File: path}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data[1:], 0o644)
}

func sampleEntries() []domain.ArchiveEntry {
	return []domain.ArchiveEntry{
		{Name: "VOICE_00.tss", Data: []byte{0x10, 1, 2, 3, 4, 5, 6, 7, 8}},
		{Name: "SKIT.bin", Data: []byte("plain bytes here")},
		{Name: "MAP.lz", Data: []byte{0x11, 9, 9, 9, 9, 9, 9, 9, 9, 9}},
	}
}

func TestBuild_Layout(t *testing.T) {
	header, detail, err := Build(sampleEntries())
	require.NoError(t, err)

	assert.Equal(t, Magic, string(header[:4]))
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(header[4:]))
	assert.Equal(t, uint32(0x1C), binary.LittleEndian.Uint32(header[8:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(header[12:]))
	assert.Equal(t, uint16(0x2C), binary.LittleEndian.Uint16(header[16:]))
	assert.Equal(t, layoutConstants, header[18:0x1C])
	assert.Len(t, header, 0x1C+3*0x2C+16)

	// second record starts at offset 9 with size 16 and reserved size-8
	rec := 0x1C + 0x2C
	assert.Equal(t, uint32(9), binary.LittleEndian.Uint32(header[rec:]))
	assert.Equal(t, uint32(16), binary.LittleEndian.Uint32(header[rec+4:]))
	assert.Equal(t, uint32(8), binary.LittleEndian.Uint32(header[rec+8:]))
	assert.Equal(t, "SKIT.bin", strings.TrimRight(string(header[rec+12:rec+0x2C]), "\x00"))

	// sentinel holds the total body size
	sentinel := 0x1C + 3*0x2C
	assert.Equal(t, uint32(len(detail)), binary.LittleEndian.Uint32(header[sentinel:]))
	assert.Equal(t, make([]byte, 12), header[sentinel+4:])
	assert.Len(t, detail, 9+16+10)
}

func TestBuild_ParseRoundTrip(t *testing.T) {
	entries := sampleEntries()
	header, detail, err := Build(entries)
	require.NoError(t, err)

	a, err := ParseBytes(header, detail)
	require.NoError(t, err)
	require.Len(t, a.Entries, len(entries))
	for i, e := range entries {
		assert.Equal(t, e.Name, a.Entries[i].Name)
		assert.Equal(t, e.Data, a.Entries[i].Data)
		assert.Equal(t, len(e.Data), a.Entries[i].Size)
	}
	assert.Equal(t, domain.CompressionLZ10, a.Entries[0].Compression)
	assert.Equal(t, domain.CompressionNone, a.Entries[1].Compression)
	assert.Equal(t, domain.CompressionLZ11, a.Entries[2].Compression)
}

func TestBuild_RejectsBadNames(t *testing.T) {
	_, _, err := Build([]domain.ArchiveEntry{{Name: strings.Repeat("a", 32), Data: []byte{1}}})
	assert.True(t, domain.IsFormat(err))

	_, _, err = Build([]domain.ArchiveEntry{{Name: "a", Data: []byte{1}}, {Name: "a", Data: []byte{2}}})
	assert.True(t, domain.IsFormat(err))
}

func TestParseBytes_Errors(t *testing.T) {
	header, detail, err := Build(sampleEntries())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header []byte
		detail []byte
	}{
		{"short header", header[:10], detail},
		{"bad magic", append([]byte("FPS3"), header[4:]...), detail},
		{"truncated records", header[:0x1C+0x2C], detail},
		{"short detail", header, detail[:20]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes(tt.header, tt.detail)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrFormat)
		})
	}
}

func TestParseBytes_SmallStride(t *testing.T) {
	header, detail, err := Build(sampleEntries())
	require.NoError(t, err)
	bad := append([]byte(nil), header...)
	binary.LittleEndian.PutUint16(bad[16:], 8)

	_, err = ParseBytes(bad, detail)
	assert.True(t, domain.IsFormat(err))
}

func TestSniff(t *testing.T) {
	assert.Equal(t, domain.CompressionNone, Sniff(nil))
	assert.Equal(t, domain.CompressionLZ10, Sniff([]byte{0x10}))
	assert.Equal(t, domain.CompressionLZ11, Sniff([]byte{0x11, 0}))
	assert.Equal(t, domain.CompressionNone, Sniff([]byte{0x12}))
}

func writeArchive(t *testing.T, dir string) (string, string) {
	t.Helper()
	header, detail, err := Build(sampleEntries())
	require.NoError(t, err)
	headerPath := filepath.Join(dir, "scenario.b")
	detailPath := filepath.Join(dir, "scenario.dat")
	require.NoError(t, os.WriteFile(headerPath, header, 0o644))
	require.NoError(t, os.WriteFile(detailPath, detail, 0o644))
	return headerPath, detailPath
}

func TestParse_FromFiles(t *testing.T) {
	headerPath, detailPath := writeArchive(t, t.TempDir())

	found, err := FindSibling(detailPath, ".b")
	require.NoError(t, err)
	assert.Equal(t, headerPath, found)

	a, err := Parse(found, detailPath)
	require.NoError(t, err)
	assert.Len(t, a.Entries, 3)
	assert.Equal(t, detailPath, a.DetailPath)

	e, ok := a.Entry("SKIT.bin")
	require.True(t, ok)
	assert.Equal(t, []byte("plain bytes here"), e.Data)
}

func TestParse_FormatErrorCarriesPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.b")
	require.NoError(t, os.WriteFile(path, []byte("NOPE and more bytes here"), 0o644))

	_, err := Parse(path, "")
	var fe *domain.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, path, fe.Path)
}

func TestFindSibling_NotFound(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lonely.dat")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := FindSibling(path, ".b")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExtractAll_DecompressesLZ10Only(t *testing.T) {
	headerPath, detailPath := writeArchive(t, t.TempDir())
	a, err := Parse(headerPath, detailPath)
	require.NoError(t, err)
	out := t.TempDir()

	err = a.ExtractAll(context.Background(), out, true, &fakeCompressor{})
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(out, "VOICE_00.tss"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, got)

	got, err = os.ReadFile(filepath.Join(out, "MAP.lz"))
	require.NoError(t, err)
	assert.Equal(t, byte(0x11), got[0])
}

func TestExtractAll_FailureScopedToFile(t *testing.T) {
	headerPath, detailPath := writeArchive(t, t.TempDir())
	a, err := Parse(headerPath, detailPath)
	require.NoError(t, err)
	out := t.TempDir()

	err = a.ExtractAll(context.Background(), out, true, &fakeCompressor{fail: map[string]bool{"VOICE_00.tss": true}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProcess)

	for _, name := range []string{"VOICE_00.tss", "SKIT.bin", "MAP.lz"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
}

func TestRepack(t *testing.T) {
	dir := t.TempDir()
	headerPath, detailPath := writeArchive(t, dir)
	a, err := Parse(headerPath, detailPath)
	require.NoError(t, err)

	updated := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(updated, "VOICE_00.tss"), []byte("new script"), 0o644))
	outDetail := filepath.Join(dir, "out", "scenario.dat")
	outHeader := filepath.Join(dir, "out", "scenario.b")
	comp := &fakeCompressor{}

	res, err := a.Repack(context.Background(), updated, outDetail, outHeader, comp)
	require.NoError(t, err)
	assert.Equal(t, []string{"VOICE_00.tss"}, res.Updated)
	assert.Equal(t, []string{"SKIT.bin", "MAP.lz"}, res.Kept)
	assert.Equal(t, []string{"VOICE_00.tss"}, comp.compressed)

	// the updated source file is left untouched
	src, err := os.ReadFile(filepath.Join(updated, "VOICE_00.tss"))
	require.NoError(t, err)
	assert.Equal(t, []byte("new script"), src)

	rebuilt, err := Parse(outHeader, outDetail)
	require.NoError(t, err)
	require.Len(t, rebuilt.Entries, 3)
	assert.Equal(t, append([]byte{0x10}, "new script"...), rebuilt.Entries[0].Data)
	assert.Equal(t, []byte("plain bytes here"), rebuilt.Entries[1].Data)

	detail, err := os.ReadFile(outDetail)
	require.NoError(t, err)
	total := 0
	for _, e := range rebuilt.Entries {
		total += e.Size
	}
	assert.Equal(t, len(detail), total)
}

func TestRepack_CompressionFailureKeepsPreviousBytes(t *testing.T) {
	dir := t.TempDir()
	headerPath, detailPath := writeArchive(t, dir)
	a, err := Parse(headerPath, detailPath)
	require.NoError(t, err)
	original := append([]byte(nil), a.Entries[1].Data...)

	updated := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(updated, "SKIT.bin"), []byte("changed"), 0o644))
	comp := &fakeCompressor{fail: map[string]bool{"SKIT.bin": true}}

	res, err := a.Repack(context.Background(), updated, filepath.Join(dir, "o.dat"), filepath.Join(dir, "o.b"), comp)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProcess)
	require.NotNil(t, res)
	assert.Contains(t, res.Kept, "SKIT.bin")

	rebuilt, err := Parse(filepath.Join(dir, "o.b"), filepath.Join(dir, "o.dat"))
	require.NoError(t, err)
	assert.Equal(t, original, rebuilt.Entries[1].Data)
}

func TestRepack_RequiresSeparateOutputs(t *testing.T) {
	dir := t.TempDir()
	headerPath, detailPath := writeArchive(t, dir)
	a, err := Parse(headerPath, detailPath)
	require.NoError(t, err)

	_, err = a.Repack(context.Background(), dir, detailPath, detailPath, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
