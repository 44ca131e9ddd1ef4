package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danmuck/treescale/internal/event"
	"github.com/danmuck/treescale/internal/path"
	"github.com/danmuck/treescale/internal/protocol/frame"
)

var errNoRecords = errors.New("no records in input")

// eventFlags binds the flags that describe one event.
type eventFlags struct {
	path     string
	name     string
	from     uint64
	target   string
	public   string
	data     string
	dataHex  string
	dataFile string
}

func (f *eventFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.path, "path", "p", "/", "tree path of the event")
	fl.StringVarP(&f.name, "name", "n", "", "event name")
	fl.Uint64Var(&f.from, "from", 0, "origin node id")
	fl.StringVarP(&f.target, "target", "t", "", "target node")
	fl.StringVar(&f.public, "public", "", "public data")
	fl.StringVarP(&f.data, "data", "d", "", "payload as text")
	fl.StringVar(&f.dataHex, "data-hex", "", "payload as hex")
	fl.StringVar(&f.dataFile, "data-file", "", "read payload from file")
	cmd.MarkFlagsMutuallyExclusive("data", "data-hex", "data-file")
}

func (f *eventFlags) event() (event.Event, error) {
	var data []byte
	switch {
	case f.dataHex != "":
		b, err := hex.DecodeString(strings.TrimSpace(f.dataHex))
		if err != nil {
			return event.Event{}, fmt.Errorf("--data-hex: %w", err)
		}
		data = b
	case f.dataFile != "":
		b, err := os.ReadFile(f.dataFile)
		if err != nil {
			return event.Event{}, fmt.Errorf("--data-file: %w", err)
		}
		data = b
	default:
		data = []byte(f.data)
	}
	return event.Event{
		Path:       path.Parse(f.path),
		Name:       f.name,
		From:       f.from,
		Target:     f.target,
		PublicData: f.public,
		Data:       data,
	}, nil
}

func newEventCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event [commands]",
		Short: "Encode, decode, inspect and relay event records",
	}
	cmd.AddCommand(
		newEncodeCmd(a),
		newDecodeCmd(a),
		newInspectCmd(a),
		newPublishCmd(a),
		newWatchCmd(a),
	)
	return cmd
}

func newEncodeCmd(a *app) *cobra.Command {
	var (
		ef    eventFlags
		out   string
		asHex bool
	)
	cmd := &cobra.Command{
		Use:   "encode [options]",
		Short: "Encodes one event into a framed record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := ef.event()
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := event.WriteEvent(&buf, ev, a.cfg.Limits()); err != nil {
				return err
			}
			record := buf.Bytes()
			if asHex {
				record = []byte(hex.EncodeToString(record) + "\n")
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(record)
				return err
			}
			return os.WriteFile(out, record, 0o644)
		},
	}
	ef.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&asHex, "hex", false, "write hex text instead of raw bytes")
	return cmd
}

func newDecodeCmd(a *app) *cobra.Command {
	var (
		strict bool
		asHex  bool
	)
	cmd := &cobra.Command{
		Use:   "decode [file|-]",
		Short: "Decodes framed records and prints them as JSON lines",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := openInput(cmd, args, asHex)
			if err != nil {
				return err
			}
			defer closeFn()

			strict = strict || a.cfg.StrictDecode
			out := cmd.OutOrStdout()
			for n := 0; ; n++ {
				body, err := frame.ReadFrame(r, a.cfg.Limits())
				if errors.Is(err, io.EOF) {
					if n == 0 {
						return errNoRecords
					}
					return nil
				}
				if err != nil {
					return fmt.Errorf("record %d: %w", n, err)
				}
				var ev event.Event
				if strict {
					ev, err = event.DecodeStrict(body)
				} else {
					ev, err = event.Decode(body)
				}
				if err != nil {
					return fmt.Errorf("record %d: %w", n, err)
				}
				if err := printEventJSON(out, ev); err != nil {
					return err
				}
			}
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "reject bytes after the last field")
	cmd.Flags().BoolVar(&asHex, "hex", false, "input is hex text")
	return cmd
}

func newInspectCmd(a *app) *cobra.Command {
	var asHex bool
	cmd := &cobra.Command{
		Use:   "inspect [file|-]",
		Short: "Prints the field layout of one framed record",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := openInput(cmd, args, asHex)
			if err != nil {
				return err
			}
			defer closeFn()

			body, err := frame.ReadFrame(r, a.cfg.Limits())
			if err != nil {
				return err
			}
			spans, trailing, layoutErr := event.Layout(body)
			printLayout(cmd.OutOrStdout(), len(body), spans, trailing)
			return layoutErr
		},
	}
	cmd.Flags().BoolVar(&asHex, "hex", false, "input is hex text")
	return cmd
}

// openInput opens args[0], or stdin for no argument or "-". Hex input is
// decoded up front.
func openInput(cmd *cobra.Command, args []string, asHex bool) (io.Reader, func(), error) {
	var (
		r       io.Reader = cmd.InOrStdin()
		closeFn           = func() {}
	)
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, nil, err
		}
		r = f
		closeFn = func() { _ = f.Close() }
	}
	if !asHex {
		return bufio.NewReader(r), closeFn, nil
	}
	text, err := io.ReadAll(r)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	raw, err := hex.DecodeString(strings.Join(strings.Fields(string(text)), ""))
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("hex input: %w", err)
	}
	return bytes.NewReader(raw), closeFn, nil
}
