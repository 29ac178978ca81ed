package services

import (
	"strconv"
	"strings"

	"github.com/custodia-labs/scenetext/internal/core/domain"
)

// MergeTranslations copies the translator's work from old into fresh and
// returns how many entries were matched. Strings match on pointer offsets
// plus source text, taken in document order when a key repeats; speakers
// match on source text. Unmatched old entries are dropped.
func MergeTranslations(fresh, old *domain.TextDocument) int {
	matched := 0

	speakers := make(map[string]domain.SpeakerEntry, len(old.Speakers))
	for _, sp := range old.Speakers {
		speakers[sp.SourceText] = sp
	}
	for i := range fresh.Speakers {
		sp := &fresh.Speakers[i]
		if prev, ok := speakers[sp.SourceText]; ok {
			sp.TranslatedText, sp.Notes, sp.Status, sp.Extra = prev.TranslatedText, prev.Notes, prev.Status, prev.Extra
			matched++
		}
	}

	queue := make(map[string][]domain.TextEntry)
	for _, e := range old.Strings {
		k := entryKey(e)
		queue[k] = append(queue[k], e)
	}
	for i := range fresh.Strings {
		e := &fresh.Strings[i]
		k := entryKey(*e)
		q := queue[k]
		if len(q) == 0 {
			continue
		}
		prev := q[0]
		queue[k] = q[1:]
		e.TranslatedText, e.Notes, e.Status, e.Extra = prev.TranslatedText, prev.Notes, prev.Status, prev.Extra
		matched++
	}
	return matched
}

func entryKey(e domain.TextEntry) string {
	var sb strings.Builder
	for i, off := range e.PointerOffsets {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(off))
	}
	sb.WriteByte(0)
	sb.WriteString(e.VoiceID)
	sb.WriteByte(0)
	sb.WriteString(e.SourceText)
	return sb.String()
}
