package services

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scenetext/internal/adapters/driven/document/xmldoc"
	"github.com/custodia-labs/scenetext/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/scenetext/internal/codec"
	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
	"github.com/custodia-labs/scenetext/internal/formats/fps4"
	"github.com/custodia-labs/scenetext/internal/formats/tss"
	"github.com/custodia-labs/scenetext/internal/relocator"
)

const menuBase = 0x02000000

// fakeCompressor marks compressed files with a leading 0x10 byte.
// A non-nil err makes Compress fail without touching the file.
type fakeCompressor struct {
	mu         sync.Mutex
	compressed []string
	err        error
}

func (f *fakeCompressor) Compress(_ context.Context, path string) error {
	if f.err != nil {
		return f.err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.compressed = append(f.compressed, filepath.Base(path))
	f.mu.Unlock()
	return os.WriteFile(path, append([]byte{0x10}, data...), 0o644)
}

func (f *fakeCompressor) Decompress(_ context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data[1:], 0o644)
}

// fakeBackups records which files were snapshotted.
type fakeBackups struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeBackups) Backup(_ context.Context, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	return true, nil
}

func (f *fakeBackups) Restore(_ context.Context, _ string) error {
	return domain.ErrNotFound
}

// fakeImageTool writes a marker file instead of running the composer.
type fakeImageTool struct {
	extracted map[string][]byte
	built     []string
}

func (f *fakeImageTool) Extract(_ context.Context, _, dir string) error {
	for name, data := range f.extracted {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeImageTool) Build(_ context.Context, _, image string) error {
	f.built = append(f.built, image)
	if err := os.MkdirAll(filepath.Dir(image), 0o755); err != nil {
		return err
	}
	return os.WriteFile(image, []byte("NDS"), 0o644)
}

// fakeWatcher replays a fixed list of changes.
type fakeWatcher struct {
	changes []domain.FileChange
	dir     string
}

func (f *fakeWatcher) Watch(_ context.Context, dir string) (<-chan domain.FileChange, error) {
	f.dir = dir
	ch := make(chan domain.FileChange, len(f.changes))
	for _, c := range f.changes {
		ch <- c
	}
	close(ch)
	return ch, nil
}

func newCodec(t *testing.T) *codec.Codec {
	t.Helper()
	c, err := codec.New(codec.TalesDialect())
	require.NoError(t, err)
	return c
}

// buildScript lays out a one-record script: header, signature with its
// pointer site, then the strings section holding speaker, text and record.
func buildScript(t *testing.T, c *codec.Codec, speaker, text string) []byte {
	t.Helper()
	blob := make([]byte, 0x10)
	blob = append(blob, 0x0E, 0x10, 0x00, 0x0C, 0x04)
	site := len(blob)
	blob = append(blob, 0, 0, 0xFF)
	for len(blob)%4 != 0 {
		blob = append(blob, 0)
	}
	base := len(blob)
	binary.LittleEndian.PutUint32(blob[0x0C:], uint32(base))

	spOff := len(blob)
	sp, err := c.EncodeTerminated(speaker)
	require.NoError(t, err)
	blob = append(blob, sp...)
	txtOff := len(blob)
	txt, err := c.EncodeTerminated(text)
	require.NoError(t, err)
	blob = append(blob, txt...)
	for len(blob)%4 != 0 {
		blob = append(blob, 0)
	}

	rec := len(blob)
	blob = binary.LittleEndian.AppendUint32(blob, 1)
	blob = binary.LittleEndian.AppendUint32(blob, 2)
	blob = binary.LittleEndian.AppendUint32(blob, uint32(spOff-base))
	blob = binary.LittleEndian.AppendUint32(blob, uint32(txtOff-base))
	binary.LittleEndian.PutUint16(blob[site:], uint16(rec-base))
	return blob
}

// menuBlob holds a pointer table, a hi/lo pair, three strings and a free pool.
func menuBlob(t *testing.T) []byte {
	t.Helper()
	blob := make([]byte, 0x60)
	binary.LittleEndian.PutUint32(blob[0x00:], menuBase+0x20)
	binary.LittleEndian.PutUint32(blob[0x04:], menuBase+0x28)
	binary.LittleEndian.PutUint32(blob[0x08:], menuBase+0x20)
	binary.LittleEndian.PutUint32(blob[0x10:], 0x3C010000)
	binary.LittleEndian.PutUint32(blob[0x14:], 0x24210000)
	require.NoError(t, relocator.PatchSite(blob, domain.PointerSite{Kind: domain.SiteHiLo, Offset: 0x10, LoOffset: 0x14}, menuBase+0x30))
	copy(blob[0x20:], "Item")
	copy(blob[0x28:], "Save")
	copy(blob[0x30:], "Load")
	return blob
}

type harness struct {
	ws      *Workspace
	ledger  *memory.Ledger
	lzss    *fakeCompressor
	blz     *fakeCompressor
	backups *fakeBackups
	image   *fakeImageTool
	script  []byte
}

func (h *harness) path(rel ...string) string {
	return filepath.Join(append([]string{h.ws.Project.Root}, rel...)...)
}

// newHarness lays out a project with a story archive holding one
// compressed script and one other file, plus one fixed-layout menu file.
func newHarness(t *testing.T) *harness {
	t.Helper()
	c := newCodec(t)
	project := domain.DefaultProject()
	project.Root = t.TempDir()
	project.Name = "hearts"
	project.Story.Archive = "scenario.dat"
	project.Menu.MemoryBase = menuBase
	project.Menu.Files = []domain.MenuFile{{
		Name:          "arm9",
		Path:          "arm9.bin",
		Strategy:      domain.StrategyPool,
		PointerTables: []domain.PointerTable{{Start: 0x00, End: 0x0C, Stride: 4}},
		SplitPointers: []domain.SplitPointer{{Hi: 0x10, Lo: 0x14}},
		Pools:         [][]int{{0x40, 0x20}},
	}}

	h := &harness{
		ledger:  memory.NewLedger(),
		lzss:    &fakeCompressor{},
		blz:     &fakeCompressor{},
		backups: &fakeBackups{},
		image:   &fakeImageTool{},
		script:  buildScript(t, c, "Yuri", "Hello<Bubble>World"),
	}
	h.ws = &Workspace{
		Project: &project,
		Codec:   c,
		Docs:    xmldoc.NewStore(),
		Ledger:  h.ledger,
		Backups: h.backups,
		LZSS:    h.lzss,
		BLZ:     h.blz,
		Image:   h.image,
		Now:     func() time.Time { return time.Date(2026, 10, 16, 12, 30, 0, 0, time.UTC) },
	}

	header, detail, err := fps4.Build([]domain.ArchiveEntry{
		{Name: "VOICE_01.tss", Data: append([]byte{0x10}, h.script...)},
		{Name: "SKIT.bin", Data: []byte("plain bytes here")},
	})
	require.NoError(t, err)
	original := h.path(project.Paths.OriginalFiles)
	require.NoError(t, os.MkdirAll(original, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(original, "scenario.dat"), detail, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(original, "scenario.b"), header, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(original, "arm9.bin"), menuBlob(t), 0o644))
	return h
}

func (h *harness) storyDoc() string {
	return h.ws.docPath(storyDir, "VOICE_01")
}

func (h *harness) menuDoc() string {
	return h.ws.docPath(menuDir, "arm9")
}

// edit loads a document, applies fn and saves it back.
func (h *harness) edit(t *testing.T, path string, fn func(doc *domain.TextDocument)) {
	t.Helper()
	ctx := context.Background()
	doc, err := h.ws.Docs.Load(ctx, path)
	require.NoError(t, err)
	fn(doc)
	require.NoError(t, h.ws.Docs.Save(ctx, path, doc))
}

func translate(doc *domain.TextDocument, id int, text string) {
	for i := range doc.Strings {
		if doc.Strings[i].ID == id {
			doc.Strings[i].TranslatedText = text
			doc.Strings[i].Status = domain.StatusDone
		}
	}
}

func (h *harness) extractStory(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	ex := NewExtractService(h.ws)
	_, err := ex.ExtractArchive(ctx)
	require.NoError(t, err)
	_, err = ex.ExtractStory(ctx, driving.ExtractOptions{})
	require.NoError(t, err)
}

// TestStory_RoundTrip tests extraction, rebuild and repack of the story archive.
func TestStory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	ex := NewExtractService(h.ws)

	report, err := ex.ExtractArchive(ctx)
	require.NoError(t, err)
	assert.Len(t, report.Processed, 2)
	extracted, err := os.ReadFile(h.path(h.ws.Project.Paths.ExtractedFiles, storyDir, "VOICE_01.tss"))
	require.NoError(t, err)
	assert.Equal(t, h.script, extracted)

	report, err = ex.ExtractStory(ctx, driving.ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{h.storyDoc()}, report.Processed)

	h.edit(t, h.storyDoc(), func(doc *domain.TextDocument) {
		require.Len(t, doc.Strings, 2)
		require.Len(t, doc.Speakers, 1)
		translate(doc, doc.Strings[0].ID, "Hi")
		doc.Speakers[0].TranslatedText = "Yuri L."
		doc.Speakers[0].Status = domain.StatusDone
	})

	in := NewInsertService(h.ws)
	report, err = in.InsertStory(ctx, driving.InsertOptions{})
	require.NoError(t, err)
	staged := h.path(h.ws.Project.Paths.State, storyDir, "VOICE_01.tss")
	assert.Equal(t, []string{staged}, report.Processed)

	rebuilt, err := os.ReadFile(staged)
	require.NoError(t, err)
	doc, _, err := tss.Extract(rebuilt, h.ws.Codec)
	require.NoError(t, err)
	require.Len(t, doc.Strings, 2)
	assert.Equal(t, "Hi", doc.Strings[0].SourceText)
	assert.Equal(t, "World", doc.Strings[1].SourceText)
	assert.Equal(t, "Yuri L.", doc.Speakers[0].SourceText)

	report, err = in.PackArchive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"VOICE_01.tss"}, report.Processed)

	final := h.path(h.ws.Project.Paths.FinalFiles)
	archive, err := fps4.Parse(filepath.Join(final, "scenario.b"), filepath.Join(final, "scenario.dat"))
	require.NoError(t, err)
	entry, ok := archive.Entry("VOICE_01.tss")
	require.True(t, ok)
	assert.Equal(t, append([]byte{0x10}, rebuilt...), entry.Data)
	skit, ok := archive.Entry("SKIT.bin")
	require.True(t, ok)
	assert.Equal(t, []byte("plain bytes here"), skit.Data)

	assert.ElementsMatch(t, []string{
		filepath.Join(final, "scenario.dat"),
		filepath.Join(final, "scenario.b"),
	}, h.backups.paths)

	runs, err := h.ledger.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 4)
}

// TestInsertStory_OnlyChanged tests that unchanged documents are skipped.
func TestInsertStory_OnlyChanged(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.extractStory(t)
	in := NewInsertService(h.ws)
	opts := driving.InsertOptions{OnlyChanged: true}

	report, err := in.InsertStory(ctx, opts)
	require.NoError(t, err)
	assert.Len(t, report.Processed, 1)

	report, err = in.InsertStory(ctx, opts)
	require.NoError(t, err)
	assert.Empty(t, report.Processed)
	assert.Equal(t, []string{h.storyDoc()}, report.Skipped)

	h.edit(t, h.storyDoc(), func(doc *domain.TextDocument) {
		translate(doc, doc.Strings[0].ID, "Hey")
	})
	report, err = in.InsertStory(ctx, opts)
	require.NoError(t, err)
	assert.Len(t, report.Processed, 1)
	assert.Empty(t, report.Skipped)

	// a missing output forces a rebuild
	require.NoError(t, os.RemoveAll(h.path(h.ws.Project.Paths.State, storyDir)))
	report, err = in.InsertStory(ctx, opts)
	require.NoError(t, err)
	assert.Len(t, report.Processed, 1)
}

// TestInsertStory_OnlyChangedFollowsStages tests that widening the inserted
// statuses rebuilds documents whose content did not change.
func TestInsertStory_OnlyChangedFollowsStages(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.extractStory(t)
	h.edit(t, h.storyDoc(), func(doc *domain.TextDocument) {
		doc.Strings[0].TranslatedText = "Hey"
		doc.Strings[0].Status = domain.StatusEditing
	})
	in := NewInsertService(h.ws)
	staged := filepath.Join(h.ws.storyStageDir(), "VOICE_01.tss")

	report, err := in.InsertStory(ctx, driving.InsertOptions{OnlyChanged: true})
	require.NoError(t, err)
	assert.Len(t, report.Processed, 1)
	plain, err := os.ReadFile(staged)
	require.NoError(t, err)

	editing := driving.InsertOptions{OnlyChanged: true, Stages: []domain.Status{domain.StatusEditing}}
	report, err = in.InsertStory(ctx, editing)
	require.NoError(t, err)
	assert.Len(t, report.Processed, 1)
	assert.Empty(t, report.Skipped)
	withEditing, err := os.ReadFile(staged)
	require.NoError(t, err)
	assert.NotEqual(t, plain, withEditing)

	report, err = in.InsertStory(ctx, editing)
	require.NoError(t, err)
	assert.Empty(t, report.Processed)
	assert.Len(t, report.Skipped, 1)
}

// TestInsertStory_DryRun tests that a dry run writes nothing and records no run.
func TestInsertStory_DryRun(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.extractStory(t)
	before, err := h.ledger.Runs(ctx, 0)
	require.NoError(t, err)

	report, err := NewInsertService(h.ws).InsertStory(ctx, driving.InsertOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []string{h.storyDoc()}, report.Processed)

	_, err = os.Stat(h.path(h.ws.Project.Paths.State, storyDir))
	assert.True(t, os.IsNotExist(err))
	after, err := h.ledger.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

// TestInsertStory_MissingScript tests that a failure is scoped to its document.
func TestInsertStory_MissingScript(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.extractStory(t)

	orphan := h.ws.docPath(storyDir, "VOICE_99")
	require.NoError(t, h.ws.Docs.Save(ctx, orphan, domain.NewTextDocument(domain.SectionStory)))

	report, err := NewInsertService(h.ws).InsertStory(ctx, driving.InsertOptions{})
	require.Error(t, err)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "VOICE_99.xml", report.Failures[0].File)
	assert.Len(t, report.Processed, 1)
}

// TestExtractStory_KeepsOrMerges tests re-extraction over existing documents.
func TestExtractStory_KeepsOrMerges(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.extractStory(t)
	h.edit(t, h.storyDoc(), func(doc *domain.TextDocument) {
		translate(doc, doc.Strings[1].ID, "Earth")
		doc.Strings[1].Notes = "pun"
	})
	ex := NewExtractService(h.ws)

	report, err := ex.ExtractStory(ctx, driving.ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{h.storyDoc()}, report.Skipped)

	report, err = ex.ExtractStory(ctx, driving.ExtractOptions{Replace: true})
	require.NoError(t, err)
	assert.Equal(t, []string{h.storyDoc()}, report.Processed)

	doc, err := h.ws.Docs.Load(ctx, h.storyDoc())
	require.NoError(t, err)
	assert.Equal(t, "Earth", doc.Strings[1].TranslatedText)
	assert.Equal(t, "pun", doc.Strings[1].Notes)
	assert.Equal(t, domain.StatusDone, doc.Strings[1].Status)
	assert.Empty(t, doc.Strings[0].TranslatedText)
}

// TestExtractArchive_NotConfigured tests the error without a story archive.
func TestExtractArchive_NotConfigured(t *testing.T) {
	h := newHarness(t)
	h.ws.Project.Story.Archive = ""

	_, err := NewExtractService(h.ws).ExtractArchive(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestMenu_RoundTrip tests extraction and pool relocation of a fixed-layout file.
func TestMenu_RoundTrip(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	report, err := NewExtractService(h.ws).ExtractMenu(ctx, driving.ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{h.menuDoc()}, report.Processed)
	h.edit(t, h.menuDoc(), func(doc *domain.TextDocument) {
		require.Len(t, doc.Strings, 3)
		assert.Empty(t, doc.Speakers)
		translate(doc, 2, "Save game")
	})

	report, err = NewInsertService(h.ws).InsertMenu(ctx, driving.InsertOptions{})
	require.NoError(t, err)
	dest := h.path(h.ws.Project.Paths.FinalFiles, "arm9.bin")
	assert.Equal(t, []string{dest}, report.Processed)
	assert.Equal(t, 1, report.Placements)
	assert.Equal(t, []string{dest}, h.backups.paths)

	out, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, uint32(menuBase+0x40), binary.LittleEndian.Uint32(out[0x04:]))
	assert.Equal(t, []byte("Save game\x00"), out[0x40:0x4A])

	// the original is untouched
	orig, err := os.ReadFile(h.path(h.ws.Project.Paths.OriginalFiles, "arm9.bin"))
	require.NoError(t, err)
	assert.Equal(t, menuBlob(t), orig)
}

// TestMenu_Compressed tests that compressed files are decompressed for
// extraction and recompressed after patching.
func TestMenu_Compressed(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.ws.Project.Menu.Files[0].Compressed = true
	src := h.path(h.ws.Project.Paths.OriginalFiles, "arm9.bin")
	require.NoError(t, os.WriteFile(src, append([]byte{0x10}, menuBlob(t)...), 0o644))

	_, err := NewExtractService(h.ws).ExtractMenu(ctx, driving.ExtractOptions{})
	require.NoError(t, err)
	work, err := os.ReadFile(h.path(h.ws.Project.Paths.ExtractedFiles, menuDir, "arm9.bin"))
	require.NoError(t, err)
	assert.Equal(t, menuBlob(t), work)

	h.edit(t, h.menuDoc(), func(doc *domain.TextDocument) {
		translate(doc, 1, "Itm")
	})
	_, err = NewInsertService(h.ws).InsertMenu(ctx, driving.InsertOptions{})
	require.NoError(t, err)

	out, err := os.ReadFile(h.path(h.ws.Project.Paths.FinalFiles, "arm9.bin"))
	require.NoError(t, err)
	require.Len(t, out, 0x61)
	assert.Equal(t, byte(0x10), out[0])
	assert.Equal(t, []byte("Itm\x00"), out[0x21:0x25])
	assert.Equal(t, []string{"arm9.bin"}, h.blz.compressed)
}

// TestMenu_CompressFailureKeepsFinal tests that a failed recompression leaves
// the previous final file in place and no staging leftovers.
func TestMenu_CompressFailureKeepsFinal(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.ws.Project.Menu.Files[0].Compressed = true
	src := h.path(h.ws.Project.Paths.OriginalFiles, "arm9.bin")
	require.NoError(t, os.WriteFile(src, append([]byte{0x10}, menuBlob(t)...), 0o644))
	_, err := NewExtractService(h.ws).ExtractMenu(ctx, driving.ExtractOptions{})
	require.NoError(t, err)

	in := NewInsertService(h.ws)
	h.edit(t, h.menuDoc(), func(doc *domain.TextDocument) {
		translate(doc, 1, "Itm")
	})
	_, err = in.InsertMenu(ctx, driving.InsertOptions{})
	require.NoError(t, err)
	dest := h.path(h.ws.Project.Paths.FinalFiles, "arm9.bin")
	before, err := os.ReadFile(dest)
	require.NoError(t, err)

	h.blz.err = &domain.ProcessError{Tool: "blz", File: "arm9.bin", Output: "crashed"}
	h.edit(t, h.menuDoc(), func(doc *domain.TextDocument) {
		translate(doc, 1, "Bag")
	})
	report, err := in.InsertMenu(ctx, driving.InsertOptions{})

	require.Error(t, err)
	assert.Len(t, report.Failures, 1)
	after, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(dest), ".stage-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

// TestInsertMenu_NoDocument tests that files without a document are left alone.
func TestInsertMenu_NoDocument(t *testing.T) {
	h := newHarness(t)

	report, err := NewInsertService(h.ws).InsertMenu(context.Background(), driving.InsertOptions{})
	require.NoError(t, err)
	assert.Empty(t, report.Processed)
	assert.Empty(t, report.Failures)
}

// TestInsertAll tests that every pass runs and outputs land in the final files.
func TestInsertAll(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.extractStory(t)
	_, err := NewExtractService(h.ws).ExtractMenu(ctx, driving.ExtractOptions{})
	require.NoError(t, err)

	report, err := NewInsertService(h.ws).InsertAll(ctx, driving.InsertOptions{})
	require.NoError(t, err)
	assert.Len(t, report.Processed, 3)

	for _, name := range []string{"scenario.dat", "scenario.b", "arm9.bin"} {
		assert.FileExists(t, h.path(h.ws.Project.Paths.FinalFiles, name))
	}
}

// TestValidate tests that validation reports encoding errors without writing.
func TestValidate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.extractStory(t)
	_, err := NewExtractService(h.ws).ExtractMenu(ctx, driving.ExtractOptions{})
	require.NoError(t, err)
	h.edit(t, h.menuDoc(), func(doc *domain.TextDocument) {
		translate(doc, 3, "<Unknown>")
	})

	report, err := NewValidateService(h.ws).Validate(ctx, driving.InsertOptions{OnlyChanged: true})
	require.Error(t, err)
	var ee *domain.EncodingError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 3, ee.EntryID)
	assert.Equal(t, []string{h.storyDoc()}, report.Processed)
	require.Len(t, report.Failures, 1)

	assert.NoDirExists(t, h.path(h.ws.Project.Paths.FinalFiles))
	assert.NoDirExists(t, h.path(h.ws.Project.Paths.State, storyDir))
}

// TestValidate_CountsPlacements tests that a dry run sizes pool relocations.
func TestValidate_CountsPlacements(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	_, err := NewExtractService(h.ws).ExtractMenu(ctx, driving.ExtractOptions{})
	require.NoError(t, err)
	h.edit(t, h.menuDoc(), func(doc *domain.TextDocument) {
		translate(doc, 2, "Save game")
	})

	report, err := NewValidateService(h.ws).Validate(ctx, driving.InsertOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Placements)
	assert.Equal(t, []string{h.menuDoc()}, report.Processed)
	assert.NoDirExists(t, h.path(h.ws.Project.Paths.FinalFiles))
}

// TestStatus tests per-document status counts.
func TestStatus(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.extractStory(t)
	_, err := NewExtractService(h.ws).ExtractMenu(ctx, driving.ExtractOptions{})
	require.NoError(t, err)
	h.edit(t, h.menuDoc(), func(doc *domain.TextDocument) {
		translate(doc, 1, "Itm")
	})
	svc := NewStatusService(h.ws)

	all, err := svc.Status(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, h.storyDoc(), all[0].Path)
	assert.Equal(t, 3, all[0].Total())
	assert.Equal(t, h.menuDoc(), all[1].Path)
	assert.Equal(t, 1, all[1].Counts[domain.StatusDone])
	assert.Equal(t, 2, all[1].Counts[domain.StatusToDo])

	one, err := svc.Status(ctx, h.menuDoc())
	require.NoError(t, err)
	require.Len(t, one, 1)

	_, err = svc.Status(ctx, h.ws.docPath(menuDir, "missing"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	doc, err := svc.Document(ctx, h.menuDoc())
	require.NoError(t, err)
	assert.Equal(t, "Itm", doc.Strings[0].TranslatedText)
}

// TestExtractImage tests that the unpacked tree seeds the final files.
func TestExtractImage(t *testing.T) {
	h := newHarness(t)
	h.image.extracted = map[string][]byte{"data/font.bin": []byte("font")}

	require.NoError(t, NewImageService(h.ws).ExtractImage(context.Background(), "game.nds"))

	data, err := os.ReadFile(h.path(h.ws.Project.Paths.FinalFiles, "data", "font.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte("font"), data)
	assert.FileExists(t, h.path(h.ws.Project.Paths.FinalFiles, "arm9.bin"))
}

// TestExtractImage_NoImage tests the error when no image is known.
func TestExtractImage_NoImage(t *testing.T) {
	h := newHarness(t)

	err := NewImageService(h.ws).ExtractImage(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestBuildImage tests build naming and pruning of old builds.
func TestBuildImage(t *testing.T) {
	h := newHarness(t)
	builds := h.path(h.ws.Project.Paths.GameBuilds)
	require.NoError(t, os.MkdirAll(builds, 0o755))
	old := []string{
		"hearts_202601010000.nds",
		"hearts_202602010000.nds",
		"hearts_202603010000.nds",
		"hearts_202604010000.nds",
	}
	for _, n := range old {
		require.NoError(t, os.WriteFile(filepath.Join(builds, n), nil, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(builds, "notes.txt"), nil, 0o644))

	out, err := NewImageService(h.ws).BuildImage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(builds, "hearts_202610161230.nds"), out)
	assert.Equal(t, []string{out}, h.image.built)

	names, err := listFiles(builds, ".nds")
	require.NoError(t, err)
	assert.Equal(t, append(old[1:], "hearts_202610161230.nds"), names)
	assert.FileExists(t, filepath.Join(builds, "notes.txt"))
}

// TestWatch tests that document changes trigger only-changed passes.
func TestWatch(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.extractStory(t)
	root := h.path(h.ws.Project.Paths.TranslatedFiles)
	watcher := &fakeWatcher{changes: []domain.FileChange{
		{Type: domain.ChangeDeleted, Path: h.storyDoc()},
		{Type: domain.ChangeUpdated, Path: h.storyDoc()},
		{Type: domain.ChangeCreated, Path: filepath.Join(root, "notes.xml")},
		{Type: domain.ChangeUpdated, Path: h.storyDoc()},
	}}

	var events []driving.WatchEvent
	err := NewWatchService(h.ws, watcher).Watch(ctx, driving.InsertOptions{}, func(ev driving.WatchEvent) {
		events = append(events, ev)
	})
	require.NoError(t, err)
	assert.Equal(t, root, watcher.dir)

	require.Len(t, events, 2)
	require.NoError(t, events[0].Err)
	assert.Len(t, events[0].Report.Processed, 1)
	assert.Equal(t, []string{h.storyDoc()}, events[1].Report.Skipped)
}

// TestRuns tests that passes are recorded newest first.
func TestRuns(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	tick := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	h.ws.Now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	h.extractStory(t)

	runs, err := NewRunService(h.ws).Runs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.RunExtract, runs[0].Kind)
	assert.Equal(t, storyDir, runs[0].Target)
	assert.Equal(t, 1, runs[0].Files)
	assert.Equal(t, time.Second, runs[0].Duration())

	h.ws.Ledger = nil
	runs, err = NewRunService(h.ws).Runs(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
