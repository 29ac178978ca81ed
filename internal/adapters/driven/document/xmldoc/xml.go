package xmldoc

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/scenetext/internal/core/domain"
)

// noSpeaker marks a struct entry whose record has no speaker.
const noSpeaker = -1

type xmlDocument struct {
	XMLName  xml.Name    `xml:"SceneText"`
	Speakers *xmlSection `xml:"Speakers,omitempty"`
	Strings  xmlSection  `xml:"Strings"`
}

type xmlSection struct {
	Section string     `xml:"Section"`
	Entries []xmlEntry `xml:"Entry"`
}

type xmlEntry struct {
	PointerOffset   string     `xml:"PointerOffset"`
	VoiceID         string     `xml:"VoiceId,omitempty"`
	JapaneseText    string     `xml:"JapaneseText"`
	EnglishText     string     `xml:"EnglishText"`
	Notes           string     `xml:"Notes"`
	ID              int        `xml:"Id"`
	StructID        *int       `xml:"StructId,omitempty"`
	SpeakerID       *int       `xml:"SpeakerId,omitempty"`
	UnknownPointer1 *uint32    `xml:"UnknownPointer1,omitempty"`
	UnknownPointer2 *uint32    `xml:"UnknownPointer2,omitempty"`
	Status          string     `xml:"Status"`
	Extra           []xmlExtra `xml:",any"`
}

type xmlExtra struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   string     `xml:",innerxml"`
}

func toXML(doc *domain.TextDocument) xmlDocument {
	out := xmlDocument{Strings: xmlSection{Section: doc.Section}}
	if len(doc.Speakers) > 0 || doc.Section == domain.SectionStory {
		out.Speakers = &xmlSection{Section: domain.SectionSpeaker}
		for _, s := range doc.Speakers {
			out.Speakers.Entries = append(out.Speakers.Entries, xmlEntry{
				PointerOffset: joinOffsets(s.PointerOffsets),
				JapaneseText:  s.SourceText,
				EnglishText:   s.TranslatedText,
				Notes:         s.Notes,
				ID:            s.ID,
				Status:        string(s.Status),
				Extra:         extrasToXML(s.Extra),
			})
		}
	}
	for _, e := range doc.Strings {
		out.Strings.Entries = append(out.Strings.Entries, xmlEntry{
			PointerOffset:   joinOffsets(e.PointerOffsets),
			VoiceID:         e.VoiceID,
			JapaneseText:    e.SourceText,
			EnglishText:     e.TranslatedText,
			Notes:           e.Notes,
			ID:              e.ID,
			StructID:        e.StructID,
			SpeakerID:       speakerToXML(e),
			UnknownPointer1: e.Unknown1,
			UnknownPointer2: e.Unknown2,
			Status:          string(e.Status),
			Extra:           extrasToXML(e.Extra),
		})
	}
	return out
}

func fromXML(x xmlDocument) (*domain.TextDocument, error) {
	section := x.Strings.Section
	if section == "" {
		section = domain.SectionStory
	}
	doc := domain.NewTextDocument(section)

	if x.Speakers != nil {
		for _, e := range x.Speakers.Entries {
			offsets, status, err := common(e)
			if err != nil {
				return nil, err
			}
			doc.Speakers = append(doc.Speakers, domain.SpeakerEntry{
				ID:             e.ID,
				PointerOffsets: offsets,
				SourceText:     e.JapaneseText,
				TranslatedText: e.EnglishText,
				Notes:          e.Notes,
				Status:         status,
				Extra:          extrasFromXML(e.Extra),
			})
		}
	}

	for _, e := range x.Strings.Entries {
		offsets, status, err := common(e)
		if err != nil {
			return nil, err
		}
		speaker := e.SpeakerID
		if speaker != nil && *speaker == noSpeaker {
			speaker = nil
		}
		doc.Strings = append(doc.Strings, domain.TextEntry{
			ID:             e.ID,
			PointerOffsets: offsets,
			SourceText:     e.JapaneseText,
			TranslatedText: e.EnglishText,
			Notes:          e.Notes,
			Status:         status,
			VoiceID:        e.VoiceID,
			SpeakerID:      speaker,
			StructID:       e.StructID,
			Unknown1:       e.UnknownPointer1,
			Unknown2:       e.UnknownPointer2,
			Extra:          extrasFromXML(e.Extra),
		})
	}
	doc.Reindex()
	return doc, nil
}

// speakerToXML writes noSpeaker for struct entries without a speaker so
// every struct entry carries the same fields.
func speakerToXML(e domain.TextEntry) *int {
	if e.SpeakerID != nil || e.StructID == nil {
		return e.SpeakerID
	}
	v := noSpeaker
	return &v
}

func common(e xmlEntry) ([]int, domain.Status, error) {
	offsets, err := parseOffsets(e.PointerOffset)
	if err != nil {
		return nil, "", fmt.Errorf("entry %d: %w", e.ID, err)
	}
	status, err := domain.ParseStatus(e.Status)
	if err != nil {
		return nil, "", fmt.Errorf("entry %d: %w", e.ID, err)
	}
	return offsets, status, nil
}

func joinOffsets(offsets []int) string {
	parts := make([]string, len(offsets))
	for i, o := range offsets {
		parts[i] = strconv.Itoa(o)
	}
	return strings.Join(parts, ",")
}

func parseOffsets(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%w: pointer offset %q", domain.ErrInvalidInput, part)
		}
		out = append(out, n)
	}
	return out, nil
}

func extrasToXML(extra []domain.ExtraField) []xmlExtra {
	if len(extra) == 0 {
		return nil
	}
	out := make([]xmlExtra, len(extra))
	for i, f := range extra {
		x := xmlExtra{XMLName: xml.Name{Local: f.Name}, Inner: f.Inner}
		for _, a := range f.Attrs {
			x.Attrs = append(x.Attrs, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
		}
		out[i] = x
	}
	return out
}

func extrasFromXML(extra []xmlExtra) []domain.ExtraField {
	if len(extra) == 0 {
		return nil
	}
	out := make([]domain.ExtraField, len(extra))
	for i, x := range extra {
		f := domain.ExtraField{Name: x.XMLName.Local, Inner: x.Inner}
		for _, a := range x.Attrs {
			f.Attrs = append(f.Attrs, domain.ExtraAttr{Name: a.Name.Local, Value: a.Value})
		}
		out[i] = f
	}
	return out
}
