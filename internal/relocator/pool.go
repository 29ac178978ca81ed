package relocator

import (
	"sort"

	"github.com/custodia-labs/scenetext/internal/core/domain"
)

// PoolSet allocates space from free areas.
//
// Pools are ordered once, ascending by capacity (stable for ties), and
// every request takes the first pool in that order with enough room,
// consuming from its low end. The order is never recomputed as pools
// shrink.
type PoolSet struct {
	pools []domain.Pool
	align int
}

// NewPoolSet copies pools into a new set. With align set, every allocation
// is rounded up to 4 bytes.
func NewPoolSet(pools []domain.Pool, align bool) *PoolSet {
	ps := &PoolSet{pools: append([]domain.Pool(nil), pools...), align: 1}
	if align {
		ps.align = 4
	}
	sort.SliceStable(ps.pools, func(i, j int) bool {
		return ps.pools[i].Capacity < ps.pools[j].Capacity
	})
	return ps
}

// Place reserves length bytes for an entry and returns the file offset.
func (ps *PoolSet) Place(entryID, length int) (int, error) {
	need := roundUp(length, ps.align)
	for i := range ps.pools {
		p := &ps.pools[i]
		if p.Capacity >= need {
			off := p.Start
			p.Start += need
			p.Capacity -= need
			return off, nil
		}
	}
	return 0, &domain.PoolExhaustedError{EntryID: entryID, Length: need, Remaining: ps.Remaining()}
}

// Remaining returns the free bytes of each pool in allocation order.
func (ps *PoolSet) Remaining() []int {
	out := make([]int, len(ps.pools))
	for i, p := range ps.pools {
		out[i] = p.Capacity
	}
	return out
}

// Free returns the total free bytes.
func (ps *PoolSet) Free() int {
	total := 0
	for _, p := range ps.pools {
		total += p.Capacity
	}
	return total
}

func roundUp(n, to int) int {
	if to <= 1 {
		return n
	}
	return (n + to - 1) / to * to
}
