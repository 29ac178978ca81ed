// Package menu extracts and inserts text in fixed-layout binaries whose
// strings are referenced from pointer tables and split hi/lo instruction
// pairs.
package menu

import (
	"errors"
	"fmt"
	"sort"

	"github.com/custodia-labs/scenetext/internal/codec"
	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/logger"
	"github.com/custodia-labs/scenetext/internal/relocator"
)

// Sites enumerates the pointer sites configured for a file, tables first.
func Sites(file domain.MenuFile) []domain.PointerSite {
	var sites []domain.PointerSite
	for _, t := range file.PointerTables {
		stride := t.Stride
		if stride <= 0 {
			stride = 4
		}
		for off := t.Start; off+4 <= t.End; off += stride {
			sites = append(sites, domain.PointerSite{Kind: domain.SiteAbsolute32, Offset: off})
		}
	}
	for _, sp := range file.SplitPointers {
		sites = append(sites, domain.PointerSite{Kind: domain.SiteHiLo, Offset: sp.Hi, LoOffset: sp.Lo})
	}
	return sites
}

// target resolves the file offset a site points to. It reports false for
// null pointers and addresses outside the file.
func target(blob []byte, site domain.PointerSite, base uint32) (int, bool, error) {
	addr, err := relocator.ReadSite(blob, site)
	if err != nil {
		return 0, false, err
	}
	if addr < base || int(addr-base) >= len(blob) {
		return 0, false, nil
	}
	return int(addr - base), true, nil
}

// Extract decodes every string referenced by the file's pointer sites into a
// Menu document. Sites pointing at the same string share one entry.
func Extract(blob []byte, file domain.MenuFile, sharedBase uint32, c *codec.Codec) (*domain.TextDocument, error) {
	base := file.Base(sharedBase)
	doc := domain.NewTextDocument(domain.SectionMenu)
	byText := make(map[int]int)

	for _, site := range Sites(file) {
		off, ok, err := target(blob, site, base)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file.Name, err)
		}
		if !ok {
			logger.Debug("menu: %s site 0x%X points outside the file, skipped", file.Name, site.Offset)
			continue
		}
		if idx, seen := byText[off]; seen {
			doc.Strings[idx].PointerOffsets = append(doc.Strings[idx].PointerOffsets, site.Offset)
			continue
		}
		text, _ := c.Decode(blob, off)
		doc.AddText(domain.TextEntry{PointerOffsets: []int{site.Offset}, SourceText: text})
		byText[off] = len(doc.Strings) - 1
	}
	return doc, nil
}

// Result is the outcome of an insertion pass.
type Result struct {
	Data        []byte
	Placements  []domain.Placement
	Diagnostics []domain.Diagnostic

	// PoolFree is what the pools have left after relocation.
	PoolFree int
}

// Insert writes the selected text of every entry back into a copy of blob.
//
// Entries whose encoding fits the slot of the original string are written
// in place. With the pool strategy longer entries are moved to the file's
// pools and their sites repointed; with the slot strategy they are
// truncated and reported as diagnostics. Encoding failures and pool
// exhaustion abort the pass and leave blob untouched.
func Insert(blob []byte, file domain.MenuFile, sharedBase uint32, doc *domain.TextDocument, c *codec.Codec, set domain.InsertionSet) (*Result, error) {
	return insert(blob, file, sharedBase, doc, c, set, true)
}

// Check runs the same pass as Insert without copying or writing anything.
// The result has no Data; its placements and diagnostics are the ones
// Insert would produce.
func Check(blob []byte, file domain.MenuFile, sharedBase uint32, doc *domain.TextDocument, c *codec.Codec, set domain.InsertionSet) (*Result, error) {
	return insert(blob, file, sharedBase, doc, c, set, false)
}

func insert(blob []byte, file domain.MenuFile, sharedBase uint32, doc *domain.TextDocument, c *codec.Codec, set domain.InsertionSet, write bool) (*Result, error) {
	base := file.Base(sharedBase)
	res := &Result{}
	var out []byte
	if write {
		out = append([]byte(nil), blob...)
	}

	index := make(map[int]domain.PointerSite)
	for _, s := range Sites(file) {
		index[s.Offset] = s
	}

	type pending struct {
		entry domain.TextEntry
		data  []byte
		slot  domain.Slot
		sites []domain.PointerSite
	}
	var work []pending
	var encErrs []error
	bounds := boundaries(blob, file, base)

	for _, e := range doc.Strings {
		data, err := c.Encode(set.Select(e.Status, e.SourceText, e.TranslatedText))
		if err != nil {
			encErrs = append(encErrs, entryErr(err, e.ID))
			continue
		}
		p := pending{entry: e, data: data}
		for _, off := range e.PointerOffsets {
			s, ok := index[off]
			if !ok {
				return nil, fmt.Errorf("%w: %s entry %d references unconfigured site 0x%X", domain.ErrInvalidInput, file.Name, e.ID, off)
			}
			p.sites = append(p.sites, s)
		}
		if len(p.sites) == 0 {
			continue
		}
		textOff, ok, err := target(blob, p.sites[0], base)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &domain.FormatError{Offset: p.sites[0].Offset, Reason: fmt.Sprintf("entry %d site points outside the file", e.ID)}
		}
		p.slot = domain.Slot{Offset: textOff, Length: relocator.SlotLength(blob, textOff, nextBoundary(bounds, textOff, len(blob)))}
		work = append(work, p)
	}
	if len(encErrs) > 0 {
		return nil, errors.Join(encErrs...)
	}

	var moved []relocator.Item
	for _, p := range work {
		fits := len(p.data)+1 <= p.slot.Length
		if fits || file.Strategy == domain.StrategySlot {
			var err error
			if write {
				err = relocator.WriteSlot(out, p.slot, p.data, p.entry.ID, c.Cut)
			} else if !fits {
				err = &domain.CapacityError{EntryID: p.entry.ID, Offset: p.slot.Offset, Need: len(p.data) + 1, Have: p.slot.Length}
			}
			if err != nil {
				if !domain.IsCapacity(err) {
					return nil, err
				}
				logger.Warn("menu: %s: %v", file.Name, err)
				res.Diagnostics = append(res.Diagnostics, domain.Diagnostic{File: file.Name, Err: err})
			}
			continue
		}
		moved = append(moved, relocator.Item{
			EntryID: p.entry.ID,
			Data:    append(append([]byte(nil), p.data...), codec.Terminator),
			Sites:   p.sites,
		})
	}

	if len(moved) > 0 {
		pools := relocator.NewPoolSet(file.PoolList(), file.Align)
		var placements []domain.Placement
		var err error
		if write {
			placements, err = relocator.PlacePools(out, moved, pools, base)
		} else {
			placements, err = relocator.SizePools(moved, pools, base)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file.Name, err)
		}
		res.Placements = placements
		res.PoolFree = pools.Free()
		logger.Debug("menu: %s: %d entries relocated, %d pool bytes left", file.Name, len(placements), res.PoolFree)
	}
	res.Data = out
	return res, nil
}

func entryErr(err error, id int) error {
	var ee *domain.EncodingError
	if errors.As(err, &ee) {
		ee.EntryID = id
	}
	return err
}

// boundaries lists the offsets a slot may not extend past: every string
// referenced by a site and every pool start.
func boundaries(blob []byte, file domain.MenuFile, base uint32) []int {
	var out []int
	for _, s := range Sites(file) {
		if off, ok, err := target(blob, s, base); err == nil && ok {
			out = append(out, off)
		}
	}
	for _, p := range file.PoolList() {
		out = append(out, p.Start)
	}
	sort.Ints(out)
	return out
}

func nextBoundary(bounds []int, off, limit int) int {
	i := sort.SearchInts(bounds, off+1)
	if i < len(bounds) && bounds[i] < limit {
		return bounds[i]
	}
	return limit
}
