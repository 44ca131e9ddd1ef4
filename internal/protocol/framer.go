package protocol

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// FieldSize is the encoded size of a field carrying n payload bytes.
func FieldSize(n int) int {
	return LenPrefixSize + n
}

// Cursor reads length-prefixed fields from a buffer in a single forward pass.
type Cursor struct {
	buf []byte
	off int
}

func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset returns the position of the next unread byte.
func (c *Cursor) Offset() int {
	return c.off
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.off
}

// Next returns the next n bytes and advances past them. The returned slice
// aliases the underlying buffer.
func (c *Cursor) Next(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, ErrTruncated
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

// Field reads one length-prefixed field and returns an owned copy of its
// payload. On error the cursor does not advance.
func (c *Cursor) Field() ([]byte, error) {
	if c.Remaining() < LenPrefixSize {
		return nil, ErrTruncated
	}
	l := binary.BigEndian.Uint32(c.buf[c.off : c.off+LenPrefixSize])
	if uint64(l) > uint64(c.Remaining()-LenPrefixSize) {
		return nil, ErrTruncated
	}
	start := c.off + LenPrefixSize
	end := start + int(l)
	val := make([]byte, l)
	copy(val, c.buf[start:end])
	c.off = end
	return val, nil
}

// Text reads one length-prefixed field and requires it to be valid UTF-8.
func (c *Cursor) Text() (string, error) {
	off := c.off
	b, err := c.Field()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		c.off = off
		return "", ErrInvalidText
	}
	return string(b), nil
}

// Writer writes length-prefixed fields into a buffer sized by the caller.
type Writer struct {
	buf []byte
	off int
}

func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// Offset returns the position of the next byte to be written.
func (w *Writer) Offset() int {
	return w.off
}

// PutU32 writes v at the current offset and advances.
func (w *Writer) PutU32(v uint32) int {
	binary.BigEndian.PutUint32(w.buf[w.off:w.off+LenPrefixSize], v)
	w.off += LenPrefixSize
	return w.off
}

// PutField writes len(data) followed by data and returns the next offset.
// The buffer must have room for FieldSize(len(data)) more bytes.
func (w *Writer) PutField(data []byte) int {
	w.PutU32(uint32(len(data)))
	w.off += copy(w.buf[w.off:], data)
	return w.off
}

// CheckFieldLen reports whether n bytes fit behind a 4-byte length prefix.
func CheckFieldLen(n int) error {
	if uint64(n) > math.MaxUint32 {
		return ErrFieldTooLarge
	}
	return nil
}
