package tss

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/custodia-labs/scenetext/internal/codec"
	"github.com/custodia-labs/scenetext/internal/core/domain"
)

// Rebuild rewrites the strings section of blob from doc and returns the new
// script. blob itself is not modified.
//
// Writing starts at the lowest record, speaker or text offset found by
// Scan. Speakers come first, then one shared empty string if any record
// has no speaker, then each struct in ascending id order: its panes joined
// by the pane delimiter and terminated, padding to 4 bytes, and the record
// itself. Every pointer site of the struct is patched to the new record.
// Bytes past the written region are left as they were.
func Rebuild(blob []byte, doc *domain.TextDocument, c *codec.Codec, set domain.InsertionSet) ([]byte, error) {
	base, err := StringsBase(blob)
	if err != nil {
		return nil, err
	}
	nodes, err := Scan(blob, c.Signatures())
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return append([]byte(nil), blob...), nil
	}

	w := &writer{buf: append([]byte(nil), blob...), pos: startOffset(nodes)}
	var errs []error

	speakerPtr := make(map[int]uint32, len(doc.Speakers))
	for _, sp := range doc.Speakers {
		b, err := c.Encode(set.Select(sp.Status, sp.SourceText, sp.TranslatedText))
		if err != nil {
			errs = append(errs, withEntry(err, sp.ID))
			continue
		}
		speakerPtr[sp.ID] = uint32(w.pos - base)
		w.write(b)
		w.write([]byte{codec.Terminator})
	}

	structIDs := doc.StructIDs()
	emptyPtr := uint32(0)
	if needsEmptySpeaker(doc, structIDs) {
		emptyPtr = uint32(w.pos - base)
		w.write([]byte{codec.Terminator})
	}

	for _, id := range structIDs {
		panes := doc.EntriesForStruct(id)
		textPtr := uint32(w.pos - base)

		for i, e := range panes {
			if i > 0 {
				w.write([]byte{codec.PaneDelimiter})
			}
			text := codec.WithVoice(e.VoiceID, set.Select(e.Status, e.SourceText, e.TranslatedText))
			b, err := c.Encode(text)
			if err != nil {
				errs = append(errs, withEntry(err, e.ID))
				continue
			}
			w.write(b)
		}
		w.write([]byte{codec.Terminator})
		w.align(4)

		head := panes[0]
		spPtr := emptyPtr
		if head.SpeakerID != nil {
			p, ok := speakerPtr[*head.SpeakerID]
			if !ok {
				errs = append(errs, fmt.Errorf("%w: struct %d references unknown speaker %d", domain.ErrInvalidInput, id, *head.SpeakerID))
				continue
			}
			spPtr = p
		}

		recPtr := w.pos - base
		w.u32(deref(head.Unknown1))
		w.u32(deref(head.Unknown2))
		w.u32(spPtr)
		w.u32(textPtr)

		for _, site := range structSites(panes) {
			if err := patchSite(w.buf, site, recPtr); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return w.buf, nil
}

// startOffset is the lowest offset any record or its strings occupy.
func startOffset(nodes []domain.StructNode) int {
	start := nodes[0].RecordOffset
	for _, n := range nodes {
		start = min(start, n.RecordOffset, n.SpeakerOffset, n.TextOffset)
	}
	return start
}

func needsEmptySpeaker(doc *domain.TextDocument, structIDs []int) bool {
	for _, id := range structIDs {
		if panes := doc.EntriesForStruct(id); len(panes) > 0 && panes[0].SpeakerID == nil {
			return true
		}
	}
	return false
}

// structSites collects the distinct pointer sites of a struct's panes.
func structSites(panes []domain.TextEntry) []int {
	seen := make(map[int]bool)
	var sites []int
	for _, e := range panes {
		for _, off := range e.PointerOffsets {
			if !seen[off] {
				seen[off] = true
				sites = append(sites, off)
			}
		}
	}
	sort.Ints(sites)
	return sites
}

func patchSite(buf []byte, site, rel int) error {
	if rel < 0 || rel > 0xFFFF {
		return fmt.Errorf("%w: record offset 0x%X at site 0x%X exceeds 16 bits", domain.ErrPointerRange, rel, site)
	}
	if site < 0 || site+siteSize > len(buf) {
		return &domain.FormatError{Offset: site, Reason: "pointer site out of bounds"}
	}
	binary.LittleEndian.PutUint16(buf[site:], uint16(rel))
	return nil
}

func withEntry(err error, id int) error {
	var ee *domain.EncodingError
	if errors.As(err, &ee) {
		ee.EntryID = id
	}
	return err
}

func deref(p *uint32) uint32 {
	if p == nil {
		return 0
	}
	return *p
}

// writer overwrites buf from pos onwards, growing it when needed.
type writer struct {
	buf []byte
	pos int
}

func (w *writer) write(b []byte) {
	if end := w.pos + len(b); end > len(w.buf) {
		w.buf = append(w.buf, make([]byte, end-len(w.buf))...)
	}
	copy(w.buf[w.pos:], b)
	w.pos += len(b)
}

func (w *writer) u32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.write(tmp[:])
}

func (w *writer) align(n int) {
	if rem := w.pos % n; rem != 0 {
		w.write(make([]byte, n-rem))
	}
}
