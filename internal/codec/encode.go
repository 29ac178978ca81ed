package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/text/encoding/japanese"

	"github.com/custodia-labs/scenetext/internal/core/domain"
)

// markupLexer tokenizes tagged markup.
var markupLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Literal byte escapes: {0C}
	{Name: "Hex", Pattern: `\{[0-9A-Fa-f]{2}\}`},
	// Tags: <Bubble>, <Name:1A>, <VSM_0101>
	{Name: "Tag", Pattern: `<[^<>\n]+>`},
	{Name: "Newline", Pattern: `\n`},
	{Name: "Text", Pattern: `[^<{\n]+`},
	// A lone '<' or '{' that starts no escape or tag is literal text.
	{Name: "Stray", Pattern: `[<{]`},
})

var (
	symHex     = markupLexer.Symbols()["Hex"]
	symTag     = markupLexer.Symbols()["Tag"]
	symNewline = markupLexer.Symbols()["Newline"]
)

// Encode converts markup to script bytes, without the terminator.
func (c *Codec) Encode(text string) ([]byte, error) {
	lex, err := markupLexer.LexString("", text)
	if err != nil {
		return nil, fmt.Errorf("tokenize markup: %w", err)
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, fmt.Errorf("tokenize markup: %w", err)
	}

	out := make([]byte, 0, len(text))
	for _, tok := range tokens {
		switch tok.Type {
		case lexer.EOF:
		case symHex:
			v, err := strconv.ParseUint(tok.Value[1:3], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("hex escape %s: %w", tok.Value, err)
			}
			out = append(out, byte(v))
		case symTag:
			b, err := c.resolveTag(tok.Value[1 : len(tok.Value)-1])
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		case symNewline:
			out = append(out, opNewline)
		default:
			for _, r := range tok.Value {
				b, err := c.encodeRune(r)
				if err != nil {
					return nil, err
				}
				out = append(out, b...)
			}
		}
	}
	return out, nil
}

// EncodeTerminated encodes markup and appends the terminator.
func (c *Codec) EncodeTerminated(text string) ([]byte, error) {
	b, err := c.Encode(text)
	if err != nil {
		return nil, err
	}
	return append(b, Terminator), nil
}

// resolveTag walks the resolution chain for a tag body.
func (c *Codec) resolveTag(body string) ([]byte, error) {
	if b, ok := c.opcodeByName[body]; ok {
		return []byte{b}, nil
	}
	if isVoiceToken(body) && c.IsVoiceTag(body) {
		return wrap(opVoice, body), nil
	}
	if name, param, ok := strings.Cut(body, ":"); ok {
		param = strings.ToUpper(param)
		if tag, ok := c.paramByName[name]; ok && isUpperHex(param) && len(param) <= maxDelimited {
			return wrap(tag.Opcode, param), nil
		}
	}
	if ref, ok := c.valueIndex[body]; ok {
		return wrap(ref.tag.Opcode, fmt.Sprintf("%0*X", ref.tag.Width, ref.value)), nil
	}
	if b, ok := c.buttonByName[body]; ok {
		return []byte{opButton, b}, nil
	}
	return nil, &domain.EncodingError{Tag: body}
}

// encodeRune maps one literal character.
func (c *Codec) encodeRune(r rune) ([]byte, error) {
	if r >= 0x20 && r <= 0x7E {
		return []byte{byte(r)}, nil
	}
	if code, ok := c.tableInv[r]; ok {
		return []byte{byte(code >> 8), byte(code)}, nil
	}
	if b, ok := c.legacyInv[r]; ok {
		return []byte{b}, nil
	}
	if r < 0x20 || r == 0x7F {
		return nil, &domain.EncodingError{Char: r}
	}
	b, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(string(r)))
	if err != nil || len(b) == 0 {
		return nil, &domain.EncodingError{Char: r}
	}
	return b, nil
}

func wrap(op byte, token string) []byte {
	out := make([]byte, 0, len(token)+3)
	out = append(out, op, '(')
	out = append(out, token...)
	return append(out, ')')
}

func isVoiceToken(s string) bool {
	if s == "" || len(s) > maxDelimited {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] <= 0x20 || s[i] > 0x7E || s[i] == ')' {
			return false
		}
	}
	return true
}
