package codec

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/custodia-labs/scenetext/internal/core/domain"
)

// Control bytes with fixed meaning in every dialect.
const (
	Terminator    byte = 0x00
	PaneDelimiter byte = 0x0C

	opVoice   byte = 0x09
	opNewline byte = 0x0A
	opButton  byte = 0x81
)

// BubbleTag is the markup for the pane delimiter.
const BubbleTag = "Bubble"

// ParamTag and Dialect are the configuration types the codec is compiled from.
type (
	ParamTag = domain.ParamTag
	Dialect  = domain.Dialect
)

// DefaultParams returns the parameterised tags used when a dialect lists none.
func DefaultParams() []ParamTag {
	return []ParamTag{
		{Name: "Color", Opcode: 0x03},
		{Name: "Name", Opcode: 0x04},
		{Name: "Icon", Opcode: 0x0B},
	}
}

// ParseSignature converts a hex string such as "0E 10 00 0C 04" to bytes.
func ParseSignature(s string) ([]byte, error) {
	clean := strings.NewReplacer(" ", "", "\t", "", "0x", "", "0X", "").Replace(s)
	b, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("signature %q: %w", s, err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("signature %q is empty", s)
	}
	return b, nil
}

// TalesDialect returns the built-in dialect for the story scripts, without
// character tables. Tables are normally supplied by the dialect file.
func TalesDialect() Dialect {
	return Dialect{
		Name: "tales",
		Signatures: [][]byte{
			{0x0E, 0x10, 0x00, 0x0C, 0x04},
			{0x00, 0x10, 0x00, 0x0C, 0x04},
		},
		VoicePatterns: []string{`VSM_\w+`, `VCT_\w+`, `S\d+`, `C\d+`},
		Opcodes:       map[string]byte{BubbleTag: PaneDelimiter},
		Params:        DefaultParams(),
	}
}
