package event

import (
	"io"

	"github.com/danmuck/treescale/internal/protocol/frame"
)

// ReadEvent reads one framed event from r. A clean end of stream returns io.EOF.
func ReadEvent(r io.Reader, limits frame.Limits) (Event, error) {
	body, err := frame.ReadFrame(r, limits)
	if err != nil {
		return Event{}, err
	}
	return Decode(body)
}

// WriteEvent encodes e and writes it to w as a single frame.
func WriteEvent(w io.Writer, e Event, limits frame.Limits) error {
	record, err := Encode(e)
	if err != nil {
		return err
	}
	return frame.WriteFrame(w, record[frame.HeaderLen:], limits)
}
