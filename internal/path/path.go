// Package path implements the hierarchical node address carried by events.
//
// A Path is an ordered list of non-empty segments. Its byte form is the
// segments joined by '/' behind a leading '/', so the root path is "/".
package path

import (
	"strings"
	"unicode/utf8"
)

const Separator = '/'

// Path addresses a node in the tree. The zero value is the root path.
type Path struct {
	segments []string
}

// Root returns the empty path.
func Root() Path {
	return Path{}
}

// New builds a path from segments without validating them; Bytes reports
// whether the result is encodable.
func New(segments ...string) Path {
	if len(segments) == 0 {
		return Path{}
	}
	out := make([]string, len(segments))
	copy(out, segments)
	return Path{segments: out}
}

// Parse splits s on '/'. The leading slash is optional and empty segments
// produced by repeated slashes are dropped.
func Parse(s string) Path {
	var segs []string
	for _, seg := range strings.Split(s, string(Separator)) {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return Path{segments: segs}
}

func (p Path) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

func (p Path) Equal(o Path) bool {
	if len(p.segments) != len(o.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != o.segments[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is p or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.segments) > len(p.segments) {
		return false
	}
	for i := range prefix.segments {
		if p.segments[i] != prefix.segments[i] {
			return false
		}
	}
	return true
}

func (p Path) String() string {
	return string(Separator) + strings.Join(p.segments, string(Separator))
}

// Valid reports whether every segment is non-empty UTF-8 without a separator.
func (p Path) Valid() bool {
	for _, seg := range p.segments {
		if seg == "" || strings.ContainsRune(seg, Separator) || !utf8.ValidString(seg) {
			return false
		}
	}
	return true
}

// Bytes returns the wire form of p, or false if p cannot be encoded.
func (p Path) Bytes() ([]byte, bool) {
	if !p.Valid() {
		return nil, false
	}
	return []byte(p.String()), true
}

// FromBytes parses the wire form produced by Bytes. Empty input is the root.
func FromBytes(b []byte) (Path, bool) {
	if len(b) == 0 {
		return Path{}, true
	}
	if b[0] != Separator || !utf8.Valid(b) {
		return Path{}, false
	}
	rest := string(b[1:])
	if rest == "" {
		return Path{}, true
	}
	segs := strings.Split(rest, string(Separator))
	for _, seg := range segs {
		if seg == "" {
			return Path{}, false
		}
	}
	return Path{segments: segs}, true
}
