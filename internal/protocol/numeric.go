package protocol

import "encoding/binary"

const (
	// LenPrefixSize is the width of every length prefix on the wire.
	LenPrefixSize = 4
	// U64Size is the encoded width of a uint64 field value.
	U64Size = 8
)

// PutU32 encodes v as 4 big-endian bytes.
func PutU32(v uint32) []byte {
	out := make([]byte, LenPrefixSize)
	binary.BigEndian.PutUint32(out, v)
	return out
}

// PutU64 encodes v as 8 big-endian bytes.
func PutU64(v uint64) []byte {
	out := make([]byte, U64Size)
	binary.BigEndian.PutUint64(out, v)
	return out
}

// U32 decodes a 4-byte big-endian value.
func U32(b []byte) (uint32, error) {
	if len(b) != LenPrefixSize {
		return 0, ErrInvalidLength
	}
	return binary.BigEndian.Uint32(b), nil
}

// U64 decodes an 8-byte big-endian value.
func U64(b []byte) (uint64, error) {
	if len(b) != U64Size {
		return 0, ErrInvalidLength
	}
	return binary.BigEndian.Uint64(b), nil
}
