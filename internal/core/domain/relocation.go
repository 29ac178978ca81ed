package domain

// Pool is a pre-declared free byte range ("safe area") in a fixed-layout file.
type Pool struct {
	// Start is the file offset of the first free byte.
	Start int

	// Capacity is the number of free bytes remaining.
	Capacity int
}

// SiteKind selects how a pointer site encodes its address.
type SiteKind int

const (
	// SiteAbsolute32 is a little-endian 32-bit absolute address.
	SiteAbsolute32 SiteKind = iota

	// SiteHiLo is a 32-bit address split across two instruction words.
	SiteHiLo

	// SiteRelative16 is a little-endian 16-bit offset from a strings base.
	SiteRelative16
)

// PointerSite is a location in a binary that references text.
type PointerSite struct {
	Kind SiteKind

	// Offset is the file offset of the pointer (the high word for SiteHiLo).
	Offset int

	// LoOffset is the file offset of the low word for SiteHiLo.
	LoOffset int
}

// Slot is a fixed-length region that text is written into in place.
type Slot struct {
	Offset int
	Length int
}

// Placement records where an entry was written.
type Placement struct {
	EntryID int
	Offset  int
	Address uint32
	Length  int
}

// Diagnostic is a recoverable problem reported during a pass.
type Diagnostic struct {
	File string
	Err  error
}

func (d Diagnostic) String() string {
	if d.File == "" {
		return d.Err.Error()
	}
	return d.File + ": " + d.Err.Error()
}
