package domain

// StructNode is one in-binary dialogue record found by the extractor.
type StructNode struct {
	// ID is the struct id, shared by every pane of the record.
	ID int

	// PointerOffset is the site holding the 16-bit pointer to the record.
	PointerOffset int

	// RecordOffset is the absolute file offset of the record.
	RecordOffset int

	// Unknown1 and Unknown2 are opaque fields reproduced byte-for-byte.
	Unknown1 uint32
	Unknown2 uint32

	// SpeakerPointerOffset is the file offset of the speaker pointer field.
	SpeakerPointerOffset int

	// SpeakerOffset and TextOffset are absolute file offsets of the strings.
	SpeakerOffset int
	TextOffset    int

	// SpeakerText is empty when the record has no speaker.
	SpeakerText string
	SpeakerID   *int

	// Panes are the text segments split on the pane delimiter.
	Panes []string
}

// HasSpeaker reports whether the record names a speaker.
func (n *StructNode) HasSpeaker() bool {
	return n.SpeakerText != ""
}
