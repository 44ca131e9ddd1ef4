package event

import (
	"github.com/danmuck/treescale/internal/protocol"
)

// FieldNames lists the record fields in wire order.
var FieldNames = [fieldCount]string{"path", "name", "from", "target", "public_data", "data"}

// Span locates one field inside a record body. Offset is the position of the
// field's length prefix.
type Span struct {
	Name   string
	Offset int
	Len    int
}

// Layout walks a record body and reports where each field sits, without
// interpreting field contents. It stops at the first field that does not fit
// and returns the spans read so far alongside the error.
func Layout(body []byte) ([]Span, int, error) {
	c := protocol.NewCursor(body)
	spans := make([]Span, 0, fieldCount)
	for _, name := range FieldNames {
		off := c.Offset()
		b, err := c.Field()
		if err != nil {
			return spans, c.Remaining(), fieldErr(name, err)
		}
		spans = append(spans, Span{Name: name, Offset: off, Len: len(b)})
	}
	return spans, c.Remaining(), nil
}
