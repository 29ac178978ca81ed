// Package codec converts between the script byte encoding and tagged markup.
//
// Decoding is driven by an ordered list of matchers (single control byte,
// delimited token, parameterised tag, button pair, two-byte character,
// legacy single byte, printable ASCII). Every token a matcher proposes is
// checked against the encoder, and bytes that would not re-encode exactly
// are emitted as {XX} escapes, so Encode(Decode(b)) == b for any NUL-free b.
//
// Encoding tokenises markup into hex escapes, <Tag> / <Tag:Param> tags,
// newlines and literal runs, then resolves tags through a fixed chain:
// opcode table, voice-id patterns, parameterised form, namespace value
// tables, buttons.
//
// A Codec is built once from a Dialect and never mutated, so one instance
// can be shared by every file processed in a run.
package codec
