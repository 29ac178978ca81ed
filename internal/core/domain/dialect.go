package domain

// ParamTag is a tag carrying a parenthesised hex parameter, e.g. a name or colour.
type ParamTag struct {
	// Name is the tag name used in <Name:Param> markup.
	Name string

	// Opcode is the lead byte.
	Opcode byte

	// Width is the number of hex digits of the canonical parameter (0 = minimal).
	Width int

	// Values maps parameter values to display names emitted as <Display>.
	Values map[uint64]string
}

// Dialect is the per-title configuration of the script format.
// It is plain data; the codec compiles it into lookup tables.
type Dialect struct {
	Name string

	// Signatures are the byte sequences preceding dialogue record pointers.
	Signatures [][]byte

	// VoicePatterns are regular expressions matching whole voice-id tag bodies.
	VoicePatterns []string

	// Opcodes maps single-byte control tags. Bubble is always added.
	Opcodes map[string]byte

	// Params lists the parameterised tags.
	Params []ParamTag

	// Buttons maps the byte following 0x81 to a button name.
	Buttons map[byte]string

	// Table maps two-byte codes (lead 0x80-0x9F, 0xE0-0xEA) to characters.
	Table map[uint16]string

	// Legacy maps single bytes 0xA1-0xDF to characters.
	Legacy map[byte]string
}
