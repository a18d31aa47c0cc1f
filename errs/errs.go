// Package errs defines the sentinel errors shared by the bblconv packages.
//
// Callers should match errors with errors.Is rather than by message, since most
// errors are wrapped with additional context before they reach the caller.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptFrame is returned by the frame scanner when a payload was read but
	// the next FRAME marker did not follow it. The scanner has already resynchronized
	// and the caller may keep reading.
	ErrCorruptFrame = errors.New("corrupt frame")

	// ErrNoMarkerFound indicates the input ended without a single FRAME marker.
	ErrNoMarkerFound = errors.New("no FRAME marker found")

	// ErrTruncatedTail indicates the input ended in the middle of a payload.
	// It is informational: the records before it were converted normally.
	ErrTruncatedTail = errors.New("input ended with partial frame")

	// ErrInvalidPayloadSize is returned when a payload is not exactly 88 bytes.
	ErrInvalidPayloadSize = errors.New("invalid payload size")

	// ErrVarintOverflow is returned when a variable-byte value does not fit in 32 bits.
	ErrVarintOverflow = errors.New("variable-byte value overflows 32 bits")

	// ErrVarintTruncated is returned when the input ends inside a variable-byte value.
	ErrVarintTruncated = errors.New("truncated variable-byte value")

	// ErrUnsupportedEncoding is returned for a field encoding the I-frame codec does not implement.
	ErrUnsupportedEncoding = errors.New("unsupported field encoding")

	// ErrInvalidFieldCount is returned when a record has a different number of values
	// than the schema declares.
	ErrInvalidFieldCount = errors.New("invalid field count")

	// ErrInvalidHeader is returned when a blackbox header line cannot be parsed.
	ErrInvalidHeader = errors.New("invalid blackbox header")

	// ErrUnexpectedFrameType is returned by the blackbox reader on an unknown frame tag.
	ErrUnexpectedFrameType = errors.New("unexpected frame type")

	// ErrUnsupportedCompression is returned for an unknown compression type or name.
	ErrUnsupportedCompression = errors.New("unsupported compression")

	// ErrInvalidInputName is returned when an input is tracked without a name.
	ErrInvalidInputName = errors.New("invalid input name")

	// ErrInputAlreadyTracked is returned when the same input name is tracked twice in a batch.
	ErrInputAlreadyTracked = errors.New("input already tracked")

	// ErrInvalidConfig is returned when a configuration value is out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// CorruptFrameError describes a dropped payload.
type CorruptFrameError struct {
	// Offset is the input offset of the dropped payload's first byte.
	Offset int64
}

func (e *CorruptFrameError) Error() string {
	return fmt.Sprintf("corrupt frame at offset %d: next marker missing", e.Offset)
}

// Unwrap lets errors.Is match ErrCorruptFrame.
func (e *CorruptFrameError) Unwrap() error {
	return ErrCorruptFrame
}
