package protocol

import "errors"

var (
	ErrTooShort      = errors.New("protocol: record too short")
	ErrTruncated     = errors.New("protocol: truncated data")
	ErrInvalidText   = errors.New("protocol: invalid utf-8 text")
	ErrPathEncoding  = errors.New("protocol: path encoding failed")
	ErrFieldTooLarge = errors.New("protocol: field too large")
	ErrTrailingBytes = errors.New("protocol: trailing bytes after record")
	ErrInvalidLength = errors.New("protocol: invalid length")
)
