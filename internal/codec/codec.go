package codec

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

type paramRef struct {
	tag   *ParamTag
	value uint64
}

// Codec is an immutable transcoder compiled from a Dialect.
type Codec struct {
	dialect Dialect

	opcodeByName  map[string]byte
	opcodeByByte  map[byte]string
	voice         []*regexp.Regexp
	paramByName   map[string]*ParamTag
	paramByOpcode map[byte]*ParamTag
	valueIndex    map[string]paramRef
	buttonByByte  map[byte]string
	buttonByName  map[string]byte
	table         map[uint16]string
	tableInv      map[rune]uint16
	legacy        map[byte]string
	legacyInv     map[rune]byte

	matchers []matcher
}

// New compiles a dialect into a Codec.
func New(d Dialect) (*Codec, error) {
	c := &Codec{
		dialect:       d,
		opcodeByName:  make(map[string]byte),
		opcodeByByte:  make(map[byte]string),
		paramByName:   make(map[string]*ParamTag),
		paramByOpcode: make(map[byte]*ParamTag),
		valueIndex:    make(map[string]paramRef),
		buttonByByte:  make(map[byte]string),
		buttonByName:  make(map[string]byte),
		table:         make(map[uint16]string),
		tableInv:      make(map[rune]uint16),
		legacy:        make(map[byte]string),
		legacyInv:     make(map[rune]byte),
	}

	opcodes := map[string]byte{BubbleTag: PaneDelimiter}
	for name, b := range d.Opcodes {
		opcodes[name] = b
	}
	for _, name := range sortedKeys(opcodes) {
		b := opcodes[name]
		if err := checkTagName(name); err != nil {
			return nil, err
		}
		if b == Terminator {
			return nil, fmt.Errorf("opcode %q cannot be the terminator byte", name)
		}
		c.opcodeByName[name] = b
		if _, taken := c.opcodeByByte[b]; !taken {
			c.opcodeByByte[b] = name
		}
	}

	for _, p := range d.VoicePatterns {
		re, err := regexp.Compile(`^(?:` + p + `)$`)
		if err != nil {
			return nil, fmt.Errorf("voice pattern %q: %w", p, err)
		}
		c.voice = append(c.voice, re)
	}

	params := d.Params
	if len(params) == 0 {
		params = DefaultParams()
	}
	for i := range params {
		p := params[i]
		if err := checkTagName(p.Name); err != nil {
			return nil, err
		}
		if _, dup := c.paramByOpcode[p.Opcode]; dup {
			return nil, fmt.Errorf("parameterised opcode 0x%02X declared twice", p.Opcode)
		}
		c.paramByName[p.Name] = &p
		c.paramByOpcode[p.Opcode] = &p
	}
	// Display names resolve to the first tag (by opcode) and lowest value that declares them.
	for _, op := range sortedKeys(c.paramByOpcode) {
		tag := c.paramByOpcode[op]
		values := make([]uint64, 0, len(tag.Values))
		for v := range tag.Values {
			values = append(values, v)
		}
		sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
		for _, v := range values {
			name := tag.Values[v]
			if _, taken := c.valueIndex[name]; !taken && checkTagName(name) == nil {
				c.valueIndex[name] = paramRef{tag: tag, value: v}
			}
		}
	}

	for _, b := range sortedKeys(d.Buttons) {
		name := d.Buttons[b]
		c.buttonByByte[b] = name
		if _, taken := c.buttonByName[name]; !taken {
			c.buttonByName[name] = b
		}
	}

	for _, code := range sortedKeys(d.Table) {
		s := d.Table[code]
		c.table[code] = s
		if r, ok := singleRune(s); ok {
			if _, taken := c.tableInv[r]; !taken {
				c.tableInv[r] = code
			}
		}
	}
	for _, b := range sortedKeys(d.Legacy) {
		s := d.Legacy[b]
		c.legacy[b] = s
		if r, ok := singleRune(s); ok {
			if _, taken := c.legacyInv[r]; !taken {
				c.legacyInv[r] = b
			}
		}
	}

	c.matchers = defaultMatchers()
	return c, nil
}

// Dialect returns the configuration the codec was built from.
func (c *Codec) Dialect() Dialect {
	return c.dialect
}

// Signatures returns the dialogue record signatures.
func (c *Codec) Signatures() [][]byte {
	return c.dialect.Signatures
}

// IsVoiceTag reports whether a tag body is a voice id.
func (c *Codec) IsVoiceTag(body string) bool {
	for _, re := range c.voice {
		if re.MatchString(body) {
			return true
		}
	}
	return false
}

func checkTagName(name string) error {
	if name == "" || strings.ContainsAny(name, "<>:\n") {
		return fmt.Errorf("invalid tag name %q", name)
	}
	return nil
}

func singleRune(s string) (rune, bool) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, false
	}
	return r, true
}

func sortedKeys[K ~uint16 | ~byte | ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
