package relocator

import (
	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/logger"
)

// Item is one encoded entry and the sites that reference it.
type Item struct {
	EntryID int

	// Data is the encoded text including its terminator.
	Data  []byte
	Sites []domain.PointerSite
}

// PlacePools writes every item into the pool set and patches its sites
// with base + file offset. It stops at the first item no pool can hold.
// buf is modified in place; callers pass a copy when the pass may fail.
func PlacePools(buf []byte, items []Item, pools *PoolSet, base uint32) ([]domain.Placement, error) {
	placements := make([]domain.Placement, 0, len(items))
	for _, it := range items {
		off, err := pools.Place(it.EntryID, len(it.Data))
		if err != nil {
			return placements, err
		}
		if err := check(buf, off, len(it.Data)); err != nil {
			return placements, err
		}
		copy(buf[off:], it.Data)

		addr := base + uint32(off)
		for _, site := range it.Sites {
			if err := PatchSite(buf, site, addr); err != nil {
				return placements, err
			}
		}
		logger.Debug("relocator: entry %d -> 0x%X (%d bytes)", it.EntryID, addr, len(it.Data))
		placements = append(placements, placement(it, off, base))
	}
	return placements, nil
}

// SizePools runs pool placement without writing and returns the placements
// PlacePools would make.
func SizePools(items []Item, pools *PoolSet, base uint32) ([]domain.Placement, error) {
	placements := make([]domain.Placement, 0, len(items))
	for _, it := range items {
		off, err := pools.Place(it.EntryID, len(it.Data))
		if err != nil {
			return placements, err
		}
		placements = append(placements, placement(it, off, base))
	}
	return placements, nil
}

func placement(it Item, off int, base uint32) domain.Placement {
	return domain.Placement{EntryID: it.EntryID, Offset: off, Address: base + uint32(off), Length: len(it.Data)}
}
