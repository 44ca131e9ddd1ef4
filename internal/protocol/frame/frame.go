package frame

import (
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/treescale/internal/protocol"
)

// HeaderLen is the size of the outer total-length prefix.
const HeaderLen = protocol.LenPrefixSize

var (
	ErrShortHeader     = errors.New("frame: short length prefix")
	ErrPayloadTooLarge = errors.New("frame: record too large")
)

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxRecordBytes uint32
}

func DefaultLimits() Limits {
	return Limits{
		MaxRecordBytes: 8 * 1024 * 1024,
	}
}

// ReadFrame reads one outer frame from r and returns the record body it covers.
func ReadFrame(r io.Reader, limits Limits) ([]byte, error) {
	var head [HeaderLen]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortHeader
		}
		return nil, err
	}

	n, err := protocol.U32(head[:])
	if err != nil {
		return nil, err
	}
	if n > limits.MaxRecordBytes {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, n, limits.MaxRecordBytes)
	}

	body := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
				return nil, protocol.ErrTruncated
			}
			return nil, err
		}
	}
	return body, nil
}

// WriteFrame writes body behind an outer length prefix.
func WriteFrame(w io.Writer, body []byte, limits Limits) error {
	if uint64(len(body)) > uint64(limits.MaxRecordBytes) {
		return fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(body), limits.MaxRecordBytes)
	}
	if _, err := w.Write(protocol.PutU32(uint32(len(body)))); err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	_, err := w.Write(body)
	return err
}

// Split checks the outer prefix of an in-memory record and returns the body it
// covers. Bytes after the covered body are ignored.
func Split(record []byte) ([]byte, error) {
	if len(record) < HeaderLen {
		return nil, protocol.ErrTooShort
	}
	n, err := protocol.U32(record[:HeaderLen])
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(len(record)-HeaderLen) {
		return nil, protocol.ErrTruncated
	}
	return record[HeaderLen : HeaderLen+int(n)], nil
}
