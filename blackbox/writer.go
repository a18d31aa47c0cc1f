package blackbox

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/bblconv/encoding"
	"github.com/arloliu/bblconv/internal/options"
	"github.com/arloliu/bblconv/internal/pool"
	"github.com/arloliu/bblconv/schema"
)

// FrameTagIntra starts every intra frame.
const FrameTagIntra = 'I'

// DefaultFlushThreshold is the staged output size that triggers a write to the
// underlying writer.
const DefaultFlushThreshold = 64 * 1024

var errWriterClosed = errors.New("blackbox writer is closed")

// WriterOption configures a Writer.
type WriterOption = options.Option[*Writer]

// WithHeaderConfig sets the header written at the start of every session.
func WithHeaderConfig(cfg HeaderConfig) WriterOption {
	return options.New(func(w *Writer) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		w.header = cfg

		return nil
	})
}

// WithFlushThreshold sets how many staged bytes trigger a flush. Zero flushes
// after every record.
func WithFlushThreshold(n int) WriterOption {
	return options.New(func(w *Writer) error {
		if n < 0 {
			return fmt.Errorf("flush threshold must not be negative, got %d", n)
		}
		w.flushAt = n

		return nil
	})
}

// Writer emits sessions of intra frames.
//
// Output is staged in a pooled buffer and written to the destination once the
// flush threshold is reached, on NewSession and on Close.
//
// Typical use:
//
//	w, _ := blackbox.NewWriter(out)
//	_ = w.Begin()
//	for ... {
//		_ = w.WriteRecord(&values)
//	}
//	_ = w.Close()
type Writer struct {
	dst     io.Writer
	header  HeaderConfig
	flushAt int

	enc   *encoding.FieldEncoder
	stage *pool.ByteBuffer

	open     bool
	closed   bool
	sessions int
	records  int64
	written  int64
}

// NewWriter creates a writer for dst.
func NewWriter(dst io.Writer, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		dst:     dst,
		header:  DefaultHeaderConfig(),
		flushAt: DefaultFlushThreshold,
	}
	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	w.enc = encoding.NewFieldEncoder()
	w.stage = pool.GetStreamBuffer()

	return w, nil
}

// Begin starts the first session by staging its header. Calling Begin on an
// open session is a no-op.
func (w *Writer) Begin() error {
	if w.closed {
		return errWriterClosed
	}
	if w.open {
		return nil
	}

	w.stage.B = AppendHeader(w.stage.B, w.header)
	w.open = true
	w.sessions++

	return w.maybeFlush()
}

// WriteRecord encodes v as an intra frame. A session is started first if none
// is open.
func (w *Writer) WriteRecord(v *schema.Values) error {
	if err := w.Begin(); err != nil {
		return err
	}

	w.enc.Reset()
	w.enc.WriteTag(FrameTagIntra)
	for i := range schema.Fields {
		if err := w.enc.Write(schema.Fields[i].IEncoding(), v[i]); err != nil {
			return fmt.Errorf("field %s: %w", schema.Fields[i].Name, err)
		}
	}

	w.stage.MustWrite(w.enc.Bytes())
	w.records++

	return w.maybeFlush()
}

// NewSession closes the current session with an end marker and starts a new one
// with a fresh header.
func (w *Writer) NewSession() error {
	if w.closed {
		return errWriterClosed
	}
	if w.open {
		w.stage.B = AppendEndMarker(w.stage.B)
		w.open = false
	}
	if err := w.Begin(); err != nil {
		return err
	}

	return w.Flush()
}

// Flush writes all staged bytes to the destination.
func (w *Writer) Flush() error {
	if w.stage == nil || w.stage.Len() == 0 {
		return nil
	}

	n, err := w.stage.WriteTo(w.dst)
	w.written += n
	w.stage.Reset()
	if err != nil {
		return fmt.Errorf("write blackbox output: %w", err)
	}

	return nil
}

// Close ends the open session, flushes, and releases the pooled buffers. A
// writer that never began still writes a header so the output is a valid
// empty log. Close is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	if err := w.Begin(); err != nil {
		return err
	}

	w.stage.B = AppendEndMarker(w.stage.B)
	w.open = false
	err := w.Flush()

	w.closed = true
	w.enc.Release()
	pool.PutStreamBuffer(w.stage)
	w.stage = nil

	return err
}

// Sessions returns the number of sessions started.
func (w *Writer) Sessions() int {
	return w.sessions
}

// Records returns the number of intra frames written.
func (w *Writer) Records() int64 {
	return w.records
}

// BytesWritten returns the number of bytes handed to the destination.
func (w *Writer) BytesWritten() int64 {
	return w.written
}

func (w *Writer) maybeFlush() error {
	if w.stage.Len() < w.flushAt {
		return nil
	}

	return w.Flush()
}
