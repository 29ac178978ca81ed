package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

// TestTextDocument_AddSpeakerDedup tests that equal speaker text shares one entry
func TestTextDocument_AddSpeakerDedup(t *testing.T) {
	doc := NewTextDocument(SectionStory)

	a := doc.AddSpeaker(0x10, "Yuri")
	b := doc.AddSpeaker(0x30, "Estelle")
	c := doc.AddSpeaker(0x50, "Yuri")

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, a, c)
	require.Len(t, doc.Speakers, 2)
	assert.Equal(t, []int{0x10, 0x50}, doc.Speakers[0].PointerOffsets)
	assert.Equal(t, StatusToDo, doc.Speakers[0].Status)
}

// TestTextDocument_AddSpeakerExactMatch tests that dedup is case sensitive
func TestTextDocument_AddSpeakerExactMatch(t *testing.T) {
	doc := NewTextDocument(SectionStory)

	a := doc.AddSpeaker(0, "Yuri")
	b := doc.AddSpeaker(4, "yuri")

	assert.NotEqual(t, a, b)
}

// TestTextDocument_AddText tests monotonic ids and default status
func TestTextDocument_AddText(t *testing.T) {
	doc := NewTextDocument(SectionStory)

	id1 := doc.AddText(TextEntry{SourceText: "a"})
	id2 := doc.AddText(TextEntry{SourceText: "b", Status: StatusDone})

	assert.Equal(t, 1, id1)
	assert.Equal(t, 2, id2)
	assert.Equal(t, StatusToDo, doc.Strings[0].Status)
	assert.Equal(t, StatusDone, doc.Strings[1].Status)
}

// TestTextDocument_Structs tests grouping panes by struct id
func TestTextDocument_Structs(t *testing.T) {
	doc := NewTextDocument(SectionStory)
	s1 := doc.NextStructID()
	s2 := doc.NextStructID()
	doc.AddText(TextEntry{SourceText: "late", StructID: intPtr(s2)})
	doc.AddText(TextEntry{SourceText: "first", StructID: intPtr(s1)})
	doc.AddText(TextEntry{SourceText: "second", StructID: intPtr(s1)})
	doc.AddText(TextEntry{SourceText: "loose"})

	assert.Equal(t, []int{1, 2}, doc.StructIDs())
	panes := doc.EntriesForStruct(s1)
	require.Len(t, panes, 2)
	assert.Equal(t, "first", panes[0].SourceText)
	assert.Equal(t, "second", panes[1].SourceText)
	assert.Empty(t, doc.EntriesForStruct(99))
}

// TestTextDocument_Speaker tests lookup by id
func TestTextDocument_Speaker(t *testing.T) {
	doc := NewTextDocument(SectionStory)
	id := doc.AddSpeaker(8, "Karol")

	sp, ok := doc.Speaker(id)
	require.True(t, ok)
	assert.Equal(t, "Karol", sp.SourceText)

	_, ok = doc.Speaker(42)
	assert.False(t, ok)
}

// TestTextDocument_Counts tests status tallies across sections
func TestTextDocument_Counts(t *testing.T) {
	doc := NewTextDocument(SectionStory)
	doc.AddSpeaker(0, "Yuri")
	doc.AddText(TextEntry{Status: StatusDone})
	doc.AddText(TextEntry{Status: StatusDone})
	doc.AddText(TextEntry{Status: StatusEditing})

	counts := doc.Counts()
	assert.Equal(t, 1, counts[StatusToDo])
	assert.Equal(t, 2, counts[StatusDone])
	assert.Equal(t, 1, counts[StatusEditing])
}

// TestTextDocument_Reindex tests that loaded documents continue numbering
func TestTextDocument_Reindex(t *testing.T) {
	doc := &TextDocument{
		Section:  SectionStory,
		Speakers: []SpeakerEntry{{ID: 4, SourceText: "Rita"}},
		Strings:  []TextEntry{{ID: 9, StructID: intPtr(5)}},
	}

	assert.Equal(t, 10, doc.AddText(TextEntry{}))
	assert.Equal(t, 5, doc.AddSpeaker(0, "Judith"))
	assert.Equal(t, 6, doc.NextStructID())
}
