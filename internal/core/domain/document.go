package domain

import "sort"

// Section names used by the document sections.
const (
	SectionSpeaker = "Speaker"
	SectionStory   = "Story"
	SectionMenu    = "Menu"
)

// ExtraAttr is an attribute of an unrecognised document element.
type ExtraAttr struct {
	Name  string
	Value string
}

// ExtraField is an unrecognised element carried through verbatim.
// The editing workflow may add fields the pipeline does not know about.
type ExtraField struct {
	Name  string
	Attrs []ExtraAttr
	Inner string
}

// TextEntry is one translatable string and every pointer site referencing it.
type TextEntry struct {
	// ID is unique within the document and assigned in scan order.
	ID int

	// PointerOffsets are the file offsets of the pointer sites (at least one).
	PointerOffsets []int

	// SourceText is the original-language tagged markup.
	SourceText string

	// TranslatedText is empty until a translator fills it in.
	TranslatedText string

	Notes  string
	Status Status

	// VoiceID is the voice tag body stripped from the start of the text.
	VoiceID string

	// SpeakerID references a SpeakerEntry; nil when the record has no speaker.
	SpeakerID *int

	// StructID groups the panes split from one dialogue record.
	StructID *int

	// Unknown1 and Unknown2 are the opaque record fields, copied through unmodified.
	Unknown1 *uint32
	Unknown2 *uint32

	Extra []ExtraField
}

// SpeakerEntry is a speaker name shared by every record that uses the same text.
type SpeakerEntry struct {
	ID             int
	PointerOffsets []int
	SourceText     string
	TranslatedText string
	Notes          string
	Status         Status
	Extra          []ExtraField
}

// TextDocument is the intermediate representation exchanged with the
// external editing workflow.
type TextDocument struct {
	// Section is the Strings section name (Story or Menu).
	Section  string
	Speakers []SpeakerEntry
	Strings  []TextEntry

	nextID        int
	nextSpeakerID int
	nextStructID  int
}

// NewTextDocument creates an empty document for the given Strings section.
func NewTextDocument(section string) *TextDocument {
	return &TextDocument{
		Section:       section,
		nextID:        1,
		nextSpeakerID: 1,
		nextStructID:  1,
	}
}

// AddSpeaker registers a speaker occurrence and returns its id.
// A repeat of an existing text appends the pointer offset to that entry.
func (d *TextDocument) AddSpeaker(pointerOffset int, text string) int {
	d.ensureCounters()
	for i := range d.Speakers {
		if d.Speakers[i].SourceText == text {
			d.Speakers[i].PointerOffsets = append(d.Speakers[i].PointerOffsets, pointerOffset)
			return d.Speakers[i].ID
		}
	}
	id := d.nextSpeakerID
	d.nextSpeakerID++
	d.Speakers = append(d.Speakers, SpeakerEntry{
		ID:             id,
		PointerOffsets: []int{pointerOffset},
		SourceText:     text,
		Status:         StatusToDo,
	})
	return id
}

// AddText appends an entry, assigning the next id, and returns that id.
func (d *TextDocument) AddText(e TextEntry) int {
	d.ensureCounters()
	e.ID = d.nextID
	d.nextID++
	if e.Status == "" {
		e.Status = StatusToDo
	}
	d.Strings = append(d.Strings, e)
	return e.ID
}

// NextStructID reserves a struct id. It increments once per dialogue record.
func (d *TextDocument) NextStructID() int {
	d.ensureCounters()
	id := d.nextStructID
	d.nextStructID++
	return id
}

// Speaker returns the speaker with the given id.
func (d *TextDocument) Speaker(id int) (*SpeakerEntry, bool) {
	for i := range d.Speakers {
		if d.Speakers[i].ID == id {
			return &d.Speakers[i], true
		}
	}
	return nil, false
}

// StructIDs returns the distinct struct ids in ascending order.
func (d *TextDocument) StructIDs() []int {
	seen := make(map[int]bool)
	var ids []int
	for _, e := range d.Strings {
		if e.StructID == nil || seen[*e.StructID] {
			continue
		}
		seen[*e.StructID] = true
		ids = append(ids, *e.StructID)
	}
	sort.Ints(ids)
	return ids
}

// EntriesForStruct returns the panes of one struct in document order.
func (d *TextDocument) EntriesForStruct(id int) []TextEntry {
	var out []TextEntry
	for _, e := range d.Strings {
		if e.StructID != nil && *e.StructID == id {
			out = append(out, e)
		}
	}
	return out
}

// Counts returns the number of entries (speakers included) per status.
func (d *TextDocument) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, s := range d.Speakers {
		counts[s.Status]++
	}
	for _, e := range d.Strings {
		counts[e.Status]++
	}
	return counts
}

// Reindex resets the id counters past the highest ids present.
// Call after loading a document that was built elsewhere.
func (d *TextDocument) Reindex() {
	d.nextID, d.nextSpeakerID, d.nextStructID = 1, 1, 1
	for _, s := range d.Speakers {
		if s.ID >= d.nextSpeakerID {
			d.nextSpeakerID = s.ID + 1
		}
	}
	for _, e := range d.Strings {
		if e.ID >= d.nextID {
			d.nextID = e.ID + 1
		}
		if e.StructID != nil && *e.StructID >= d.nextStructID {
			d.nextStructID = *e.StructID + 1
		}
	}
}

func (d *TextDocument) ensureCounters() {
	if d.nextID == 0 || d.nextSpeakerID == 0 || d.nextStructID == 0 {
		d.Reindex()
	}
}
