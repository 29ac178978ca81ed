package relocator

import (
	"github.com/custodia-labs/scenetext/internal/core/domain"
)

// Cutter returns how many leading bytes of data to keep when at most limit
// fit. It must return a value in [0, limit].
type Cutter func(data []byte, limit int) int

// WriteSlot writes terminated text into a fixed-length slot in place and
// zero-fills the rest of the slot. data must not include the terminator.
//
// Text that does not fit is truncated to at most Length-1 bytes plus the
// terminator and a *domain.CapacityError is returned. cut picks the
// truncation point so no character is split; a nil cut keeps Length-1
// bytes. That error is a diagnostic: the slot has still been written.
func WriteSlot(buf []byte, slot domain.Slot, data []byte, entryID int, cut Cutter) error {
	if slot.Length <= 0 || slot.Offset < 0 || slot.Offset+slot.Length > len(buf) {
		return &domain.FormatError{Offset: slot.Offset, Reason: "slot out of bounds"}
	}
	region := buf[slot.Offset : slot.Offset+slot.Length]

	var diag error
	if len(data)+1 > slot.Length {
		diag = &domain.CapacityError{EntryID: entryID, Offset: slot.Offset, Need: len(data) + 1, Have: slot.Length}
		keep := slot.Length - 1
		if cut != nil {
			keep = min(max(cut(data, keep), 0), keep)
		}
		data = data[:keep]
	}
	n := copy(region, data)
	clear(region[n:])
	return diag
}

// SlotLength measures the slot an existing string occupies: its bytes, the
// terminator and any zero padding up to the next non-zero byte or limit.
func SlotLength(buf []byte, offset, limit int) int {
	end := offset
	for end < len(buf) && end < limit && buf[end] != 0 {
		end++
	}
	for end < len(buf) && end < limit && buf[end] == 0 {
		end++
	}
	return end - offset
}
