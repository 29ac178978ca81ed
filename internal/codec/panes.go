package codec

import "strings"

const bubbleMarkup = "<" + BubbleTag + ">"

// SplitPanes splits decoded text into its speech-bubble panes.
func SplitPanes(text string) []string {
	return strings.Split(text, bubbleMarkup)
}

// SplitVoice detaches a leading voice-id tag from text. It returns an empty
// voice id and the text unchanged when the text does not start with one.
func (c *Codec) SplitVoice(text string) (voice, rest string) {
	if !strings.HasPrefix(text, "<") {
		return "", text
	}
	end := strings.IndexByte(text, '>')
	if end < 0 {
		return "", text
	}
	body := text[1:end]
	if !isVoiceToken(body) || !c.IsVoiceTag(body) {
		return "", text
	}
	return body, text[end+1:]
}

// WithVoice re-attaches a voice id in front of text.
func WithVoice(voice, text string) string {
	if voice == "" {
		return text
	}
	return "<" + voice + ">" + text
}
