package codec

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// maxDelimited bounds the token length read between parentheses.
const maxDelimited = 32

// matcher proposes one token for the bytes at s[i:].
// It returns the markup and the number of bytes consumed.
type matcher struct {
	name  string
	match func(c *Codec, s []byte, i int) (string, int, bool)
}

func defaultMatchers() []matcher {
	return []matcher{
		{name: "control", match: matchControl},
		{name: "voice", match: matchVoice},
		{name: "param", match: matchParam},
		{name: "button", match: matchButton},
		{name: "double", match: matchDouble},
		{name: "legacy", match: matchLegacy},
		{name: "ascii", match: matchASCII},
	}
}

// Decode reads a terminated string at offset and returns its markup and the
// number of bytes consumed, terminator included. It never fails: bytes that
// no matcher accepts are emitted as {XX} escapes.
func (c *Codec) Decode(buf []byte, offset int) (string, int) {
	if offset < 0 || offset >= len(buf) {
		return "", 0
	}
	s := buf[offset:]
	consumed := len(s)
	if end := bytes.IndexByte(s, Terminator); end >= 0 {
		s = s[:end]
		consumed = end + 1
	}
	return c.decodeBytes(s), consumed
}

// DecodeBytes decodes a whole NUL-free byte string.
func (c *Codec) DecodeBytes(s []byte) string {
	return c.decodeBytes(s)
}

// Cut returns the length of the longest prefix of s, at most limit bytes,
// that ends on a token boundary. A double-byte character or a tag and its
// operand are never split.
func (c *Codec) Cut(s []byte, limit int) int {
	end := 0
	for i := 0; i < len(s); {
		_, n := c.next(s, i)
		if i+n > limit {
			break
		}
		i += n
		end = i
	}
	return end
}

func (c *Codec) decodeBytes(s []byte) string {
	var sb strings.Builder
	for i := 0; i < len(s); {
		tok, n := c.next(s, i)
		sb.WriteString(tok)
		i += n
	}
	return sb.String()
}

func (c *Codec) next(s []byte, i int) (string, int) {
	for _, m := range c.matchers {
		tok, n, ok := m.match(c, s, i)
		if !ok || n == 0 {
			continue
		}
		if c.reencodes(tok, s[i:i+n]) {
			return tok, n
		}
	}
	return escape(s[i]), 1
}

// reencodes reports whether tok encodes back to exactly want.
func (c *Codec) reencodes(tok string, want []byte) bool {
	got, err := c.Encode(tok)
	return err == nil && bytes.Equal(got, want)
}

func escape(b byte) string {
	return fmt.Sprintf("{%02X}", b)
}

func matchControl(c *Codec, s []byte, i int) (string, int, bool) {
	if name, ok := c.opcodeByByte[s[i]]; ok {
		return "<" + name + ">", 1, true
	}
	if s[i] == opNewline {
		return "\n", 1, true
	}
	return "", 0, false
}

// delimited reads "(" token ")" starting at s[i+1].
func delimited(s []byte, i int) (string, int, bool) {
	if i+1 >= len(s) || s[i+1] != '(' {
		return "", 0, false
	}
	for j := i + 2; j < len(s) && j-i-2 <= maxDelimited; j++ {
		if s[j] == ')' {
			return string(s[i+2 : j]), j - i + 1, true
		}
	}
	return "", 0, false
}

func matchVoice(_ *Codec, s []byte, i int) (string, int, bool) {
	if s[i] != opVoice {
		return "", 0, false
	}
	tok, n, ok := delimited(s, i)
	if !ok || tok == "" {
		return "", 0, false
	}
	return "<" + tok + ">", n, true
}

func matchParam(c *Codec, s []byte, i int) (string, int, bool) {
	tag, ok := c.paramByOpcode[s[i]]
	if !ok {
		return "", 0, false
	}
	param, n, ok := delimited(s, i)
	if !ok || !isUpperHex(param) {
		return "", 0, false
	}
	v, err := strconv.ParseUint(param, 16, 64)
	if err != nil {
		return "", 0, false
	}
	if name, ok := tag.Values[v]; ok {
		tok := "<" + name + ">"
		if c.reencodes(tok, s[i:i+n]) {
			return tok, n, true
		}
	}
	return "<" + tag.Name + ":" + param + ">", n, true
}

func matchButton(c *Codec, s []byte, i int) (string, int, bool) {
	if s[i] != opButton || i+1 >= len(s) {
		return "", 0, false
	}
	name, ok := c.buttonByByte[s[i+1]]
	if !ok {
		return "", 0, false
	}
	return "<" + name + ">", 2, true
}

func isDoubleLead(b byte) bool {
	return (b >= 0x80 && b <= 0x9F) || (b >= 0xE0 && b <= 0xEA)
}

func matchDouble(c *Codec, s []byte, i int) (string, int, bool) {
	if !isDoubleLead(s[i]) || i+1 >= len(s) {
		return "", 0, false
	}
	code := uint16(s[i])<<8 | uint16(s[i+1])
	if ch, ok := c.table[code]; ok && c.reencodes(ch, s[i:i+2]) {
		return ch, 2, true
	}
	return escape(s[i]) + escape(s[i+1]), 2, true
}

func matchLegacy(c *Codec, s []byte, i int) (string, int, bool) {
	if s[i] < 0xA1 || s[i] > 0xDF {
		return "", 0, false
	}
	ch, ok := c.legacy[s[i]]
	if !ok {
		return "", 0, false
	}
	return ch, 1, true
}

func matchASCII(_ *Codec, s []byte, i int) (string, int, bool) {
	b := s[i]
	if b < 0x20 || b > 0x7E || b == '<' || b == '{' {
		return "", 0, false
	}
	return string(rune(b)), 1, true
}

func isUpperHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if (ch < '0' || ch > '9') && (ch < 'A' || ch > 'F') {
			return false
		}
	}
	return true
}
