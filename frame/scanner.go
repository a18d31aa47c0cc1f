package frame

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/bblconv/endian"
	"github.com/arloliu/bblconv/errs"
	"github.com/arloliu/bblconv/internal/options"
)

// DefaultBufferSize is the read buffer of a Scanner. It must hold at least one
// marker plus one byte for the end-of-stream check.
const DefaultBufferSize = 64 * 1024

// EndReason tells why a Scanner stopped.
type EndReason uint8

const (
	// EndNone means the scanner has not reached the end of its input.
	EndNone EndReason = iota
	// EndNoMarker means the input ended while searching for a marker.
	EndNoMarker
	// EndPartialFrame means the input ended inside a payload (truncated tail).
	EndPartialFrame
	// EndCompleteFrame means the last payload was complete but no marker followed it.
	EndCompleteFrame
)

func (e EndReason) String() string {
	switch e {
	case EndNone:
		return "none"
	case EndNoMarker:
		return "no-marker"
	case EndPartialFrame:
		return "partial-frame"
	case EndCompleteFrame:
		return "complete-frame"
	default:
		return "unknown"
	}
}

// ScannerOption configures a Scanner.
type ScannerOption = options.Option[*Scanner]

// WithEngine sets the byte order of the payload. Little-endian by default.
func WithEngine(engine endian.EndianEngine) ScannerOption {
	return options.New(func(s *Scanner) error {
		if engine == nil {
			return fmt.Errorf("%w: nil byte order", errs.ErrInvalidConfig)
		}
		s.engine = engine

		return nil
	})
}

// WithBufferSize sets the size of the read buffer.
func WithBufferSize(size int) ScannerOption {
	return options.New(func(s *Scanner) error {
		if size < 2*MarkerSize {
			return fmt.Errorf("%w: scanner buffer size %d", errs.ErrInvalidConfig, size)
		}
		s.bufSize = size

		return nil
	})
}

// Scanner splits an SLF byte stream into records.
//
// Every payload must be followed by the next frame's marker to count as
// complete. When it is not, the payload is dropped, the scanner steps one byte
// past the payload and searches for the next marker. The only exception is the
// end of the input: a payload followed by fewer than MarkerSize bytes is the
// final record.
//
// A Scanner is not safe for concurrent use.
type Scanner struct {
	r       *bufio.Reader
	engine  endian.EndianEngine
	bufSize int

	total    int64
	consumed int64

	// synced is set when the marker after the previous payload was confirmed
	// and consumed, so the next payload starts at the read position.
	synced bool

	frames  int
	corrupt int
	partial int
	end     EndReason

	payload [PayloadSize]byte
}

// NewScanner creates a scanner reading from r. total is the input length used
// for progress reporting; pass a negative value when it is unknown.
func NewScanner(r io.Reader, total int64, opts ...ScannerOption) (*Scanner, error) {
	s := &Scanner{
		engine:  endian.GetLittleEndianEngine(),
		bufSize: DefaultBufferSize,
		total:   total,
	}

	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	s.r = bufio.NewReaderSize(r, s.bufSize)

	return s, nil
}

// Next returns the next complete record.
//
// Errors:
//   - *errs.CorruptFrameError (errors.Is errs.ErrCorruptFrame): a payload was
//     dropped; the scanner has resynchronized and Next may be called again
//   - io.EOF: the input is exhausted; End tells why
//   - any other error comes from the underlying reader and is not recoverable
func (s *Scanner) Next() (Record, error) {
	if s.end != EndNone {
		return Record{}, io.EOF
	}

	if !s.synced {
		found, err := s.seekMarker()
		if err != nil {
			return Record{}, err
		}
		if !found {
			s.end = EndNoMarker
			return Record{}, io.EOF
		}
	}
	s.synced = false

	offset := s.consumed
	n, err := io.ReadFull(s.r, s.payload[:])
	s.consumed += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			s.end = EndPartialFrame
			s.partial = n

			return Record{}, io.EOF
		}

		return Record{}, err
	}

	rec, err := Decode(s.payload[:], s.engine)
	if err != nil {
		return Record{}, err
	}

	next, err := s.r.Peek(MarkerSize + 1)
	if err != nil && !errors.Is(err, io.EOF) {
		return Record{}, err
	}

	switch {
	case len(next) >= MarkerSize && bytes.Equal(next[:MarkerSize], Marker):
		s.discard(MarkerSize)
		s.synced = true
	case len(next) <= MarkerSize:
		// Input ends where the next marker would be.
		s.discard(len(next))
		s.end = EndCompleteFrame
	default:
		// Equivalent to reading the would-be marker and stepping back all but one byte.
		s.discard(1)
		s.corrupt++

		return Record{}, &errs.CorruptFrameError{Offset: offset}
	}

	s.frames++

	return rec, nil
}

// seekMarker advances past the next marker. It reports false when the input
// ends first.
func (s *Scanner) seekMarker() (bool, error) {
	for {
		window, err := s.r.Peek(MarkerSize)
		if len(window) == MarkerSize {
			if bytes.Equal(window, Marker) {
				s.discard(MarkerSize)
				return true, nil
			}

			// Skip every start position in the buffered data that cannot begin a
			// marker; the last MarkerSize-1 bytes may begin one that continues
			// past the buffer.
			buffered, _ := s.r.Peek(s.r.Buffered())
			skip := len(buffered) - MarkerSize + 1
			if i := bytes.Index(buffered[1:], Marker); i >= 0 {
				skip = i + 1
			}
			s.discard(skip)

			continue
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				s.discard(len(window))
				return false, nil
			}

			return false, err
		}
	}
}

func (s *Scanner) discard(n int) {
	d, _ := s.r.Discard(n)
	s.consumed += int64(d)
}

// Synced reports whether the marker after the last returned record has already
// been confirmed, i.e. the next call to Next skips the marker search.
func (s *Scanner) Synced() bool {
	return s.synced
}

// End returns why the scanner stopped, or EndNone while it is still running.
func (s *Scanner) End() EndReason {
	return s.end
}

// Frames returns the number of records returned so far.
func (s *Scanner) Frames() int {
	return s.frames
}

// CorruptFrames returns the number of payloads dropped for a missing marker.
func (s *Scanner) CorruptFrames() int {
	return s.corrupt
}

// PartialBytes returns how many payload bytes were read when the input ended
// inside a payload.
func (s *Scanner) PartialBytes() int {
	return s.partial
}

// Consumed returns the number of input bytes consumed so far.
func (s *Scanner) Consumed() int64 {
	return s.consumed
}

// Total returns the input length given to NewScanner.
func (s *Scanner) Total() int64 {
	return s.total
}

// Percent returns the consumed share of the input in percent, or 0 when the
// total is unknown.
func (s *Scanner) Percent() float64 {
	if s.total <= 0 {
		return 0
	}

	p := float64(s.consumed) / float64(s.total) * 100
	if p > 100 {
		p = 100
	}

	return p
}

// Err converts the end reason into the sentinel errors callers report:
// errs.ErrNoMarkerFound when the input held no frame at all, errs.ErrTruncatedTail
// when it ended inside a payload, nil otherwise.
func (s *Scanner) Err() error {
	switch {
	case s.end == EndNoMarker && s.frames == 0 && s.corrupt == 0:
		return errs.ErrNoMarkerFound
	case s.end == EndPartialFrame:
		return errs.ErrTruncatedTail
	default:
		return nil
	}
}
