// Package protocol owns wire contract and parsing primitives.
//
// Ownership boundary:
// - fixed-endian numeric encode/decode
// - length-prefixed field framing (Cursor for reads, Writer for writes)
// - error taxonomy shared by every record codec
//
// Every integer on the wire is big-endian. A field is a 4-byte length followed by
// exactly that many bytes, with no padding between fields.
package protocol
