// Package event implements the binary codec for tree events.
//
// Wire layout, every integer big-endian:
//
//	[4: total length of everything below]
//	[4: len(path)]        [path bytes]
//	[4: len(name)]        [name utf-8]
//	[4: 8]                [8: from]
//	[4: len(target)]      [target utf-8]
//	[4: len(public_data)] [public_data utf-8]
//	[4: len(data)]        [data]
//
// Field order is the wire contract. Decode consumes the body after the outer
// prefix; DecodeRecord and ReadEvent handle the prefix.
package event

import (
	"bytes"
	"fmt"

	"github.com/danmuck/treescale/internal/path"
	"github.com/danmuck/treescale/internal/protocol"
	"github.com/danmuck/treescale/internal/protocol/frame"
)

const (
	fieldCount = 6
	// MinBodyLen is the size floor a body must exceed before any field is read.
	MinBodyLen = fieldCount * protocol.LenPrefixSize
)

// Event is one record routed through the tree.
type Event struct {
	Path       path.Path
	Name       string
	From       uint64
	Target     string
	PublicData string
	Data       []byte
}

// Equal compares events field by field. A nil and an empty Data are equal.
func (e Event) Equal(o Event) bool {
	return e.Path.Equal(o.Path) &&
		e.Name == o.Name &&
		e.From == o.From &&
		e.Target == o.Target &&
		e.PublicData == o.PublicData &&
		bytes.Equal(e.Data, o.Data)
}

// Decode parses a record body. A path that fails to parse decodes as the root
// path. Bytes after the sixth field are ignored.
func Decode(buf []byte) (Event, error) {
	ev, _, err := decode(buf)
	return ev, err
}

// DecodeStrict is Decode but rejects bytes after the sixth field.
func DecodeStrict(buf []byte) (Event, error) {
	ev, c, err := decode(buf)
	if err != nil {
		return Event{}, err
	}
	if c.Remaining() != 0 {
		return Event{}, fmt.Errorf("%w: %d", protocol.ErrTrailingBytes, c.Remaining())
	}
	return ev, nil
}

// DecodeRecord parses a full record as produced by Encode, outer prefix
// included.
func DecodeRecord(record []byte) (Event, error) {
	body, err := frame.Split(record)
	if err != nil {
		return Event{}, err
	}
	return Decode(body)
}

func decode(buf []byte) (Event, *protocol.Cursor, error) {
	if len(buf) <= MinBodyLen {
		return Event{}, nil, protocol.ErrTooShort
	}
	c := protocol.NewCursor(buf)

	rawPath, err := c.Field()
	if err != nil {
		return Event{}, nil, fieldErr("path", err)
	}
	p, ok := path.FromBytes(rawPath)
	if !ok {
		// TODO: surface malformed paths once every producer encodes through path.Bytes.
		p = path.Root()
	}

	name, err := c.Text()
	if err != nil {
		return Event{}, nil, fieldErr("name", err)
	}

	rawFrom, err := c.Field()
	if err != nil {
		return Event{}, nil, fieldErr("from", err)
	}
	from, err := protocol.U64(rawFrom)
	if err != nil {
		return Event{}, nil, fieldErr("from", err)
	}

	target, err := c.Text()
	if err != nil {
		return Event{}, nil, fieldErr("target", err)
	}
	publicData, err := c.Text()
	if err != nil {
		return Event{}, nil, fieldErr("public_data", err)
	}
	data, err := c.Field()
	if err != nil {
		return Event{}, nil, fieldErr("data", err)
	}

	return Event{
		Path:       p,
		Name:       name,
		From:       from,
		Target:     target,
		PublicData: publicData,
		Data:       data,
	}, c, nil
}

// Encode serializes e, outer length prefix included. The path is encoded
// before any output is allocated, so a failure leaves nothing half written.
func Encode(e Event) ([]byte, error) {
	pathBytes, ok := e.Path.Bytes()
	if !ok {
		return nil, fmt.Errorf("%w: %q", protocol.ErrPathEncoding, e.Path.Segments())
	}
	from := protocol.PutU64(e.From)
	fields := [fieldCount][]byte{
		pathBytes,
		[]byte(e.Name),
		from,
		[]byte(e.Target),
		[]byte(e.PublicData),
		e.Data,
	}

	bodyLen := 0
	for _, f := range fields {
		if err := protocol.CheckFieldLen(len(f)); err != nil {
			return nil, err
		}
		bodyLen += protocol.FieldSize(len(f))
	}
	if err := protocol.CheckFieldLen(bodyLen); err != nil {
		return nil, err
	}

	buf := make([]byte, frame.HeaderLen+bodyLen)
	w := protocol.NewWriter(buf)
	w.PutU32(uint32(bodyLen))
	for _, f := range fields {
		w.PutField(f)
	}
	return buf, nil
}

func fieldErr(field string, err error) error {
	return fmt.Errorf("event %s: %w", field, err)
}
