package tss

import (
	"github.com/custodia-labs/scenetext/internal/codec"
	"github.com/custodia-labs/scenetext/internal/core/domain"
)

// Extract scans blob and builds a Story document. Speakers are
// deduplicated by exact text; an empty speaker string means the record has
// none. Each pane of a record becomes one entry sharing the record's struct
// id, with a leading voice tag moved to the entry's voice id.
func Extract(blob []byte, c *codec.Codec) (*domain.TextDocument, []domain.StructNode, error) {
	nodes, err := Scan(blob, c.Signatures())
	if err != nil {
		return nil, nil, err
	}

	doc := domain.NewTextDocument(domain.SectionStory)
	for i := range nodes {
		n := &nodes[i]
		n.SpeakerText, _ = c.Decode(blob, n.SpeakerOffset)
		if n.HasSpeaker() {
			id := doc.AddSpeaker(n.SpeakerPointerOffset, n.SpeakerText)
			n.SpeakerID = &id
		}

		text, _ := c.Decode(blob, n.TextOffset)
		n.Panes = codec.SplitPanes(text)

		structID := doc.NextStructID()
		n.ID = structID
		unk1, unk2 := n.Unknown1, n.Unknown2
		for _, pane := range n.Panes {
			voice, rest := c.SplitVoice(pane)
			doc.AddText(domain.TextEntry{
				PointerOffsets: []int{n.PointerOffset},
				SourceText:     rest,
				VoiceID:        voice,
				SpeakerID:      copyInt(n.SpeakerID),
				StructID:       copyInt(&structID),
				Unknown1:       &unk1,
				Unknown2:       &unk2,
			})
		}
	}
	return doc, nodes, nil
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
