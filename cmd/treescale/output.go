package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/danmuck/treescale/internal/event"
)

// eventView is the JSON shape of an event; Data is base64 encoded.
type eventView struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	From       uint64 `json:"from"`
	Target     string `json:"target"`
	PublicData string `json:"public_data"`
	Data       []byte `json:"data"`
}

func printEventJSON(w io.Writer, ev event.Event) error {
	data, err := json.Marshal(eventView{
		Path:       ev.Path.String(),
		Name:       ev.Name,
		From:       ev.From,
		Target:     ev.Target,
		PublicData: ev.PublicData,
		Data:       ev.Data,
	})
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printLayout(out io.Writer, bodyLen int, spans []event.Span, trailing int) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "body\t%d bytes\n", bodyLen)
	fmt.Fprintln(w, "FIELD\tOFFSET\tLENGTH")
	for _, s := range spans {
		fmt.Fprintf(w, "%s\t%d\t%d\n", s.Name, s.Offset, s.Len)
	}
	if trailing > 0 {
		fmt.Fprintf(w, "trailing\t-\t%d\n", trailing)
	}
	w.Flush()
}
