package frame

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/danmuck/treescale/internal/protocol"
)

func TestReadWriteFrameRoundTrip(t *testing.T) {
	body := []byte("record-body")
	var buf bytes.Buffer
	if err := WriteFrame(&buf, body, DefaultLimits()); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if buf.Len() != HeaderLen+len(body) {
		t.Fatalf("expected %d bytes, got %d", HeaderLen+len(body), buf.Len())
	}
	out, err := ReadFrame(&buf, DefaultLimits())
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if !bytes.Equal(out, body) {
		t.Fatalf("body mismatch: got=%q want=%q", out, body)
	}
	if _, err := ReadFrame(&buf, DefaultLimits()); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestReadFrameMalformedHeaderIsDeterministic(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{1, 2, 3}), DefaultLimits())
	if !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestReadFrameTruncatedBody(t *testing.T) {
	buf := append(protocol.PutU32(10), 1, 2, 3)
	_, err := ReadFrame(bytes.NewReader(buf), DefaultLimits())
	if !errors.Is(err, protocol.ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestReadFrameOverLimit(t *testing.T) {
	buf := protocol.PutU32(0xFFFFFFFF)
	_, err := ReadFrame(bytes.NewReader(buf), Limits{MaxRecordBytes: 1024})
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestWriteFrameOverLimit(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFrame(&buf, make([]byte, 9), Limits{MaxRecordBytes: 8})
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written, got %d bytes", buf.Len())
	}
}

func TestSplit(t *testing.T) {
	record := append(protocol.PutU32(2), 0xAA, 0xBB, 0xCC)
	body, err := Split(record)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if !bytes.Equal(body, []byte{0xAA, 0xBB}) {
		t.Fatalf("unexpected body: %x", body)
	}

	if _, err := Split([]byte{0, 0}); !errors.Is(err, protocol.ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
	if _, err := Split(append(protocol.PutU32(5), 1)); !errors.Is(err, protocol.ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}
