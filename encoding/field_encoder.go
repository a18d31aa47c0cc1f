package encoding

import (
	"fmt"

	"github.com/arloliu/bblconv/errs"
	"github.com/arloliu/bblconv/format"
	"github.com/arloliu/bblconv/internal/pool"
)

// FieldEncoder accumulates the variable-byte encoding of one record.
//
// The encoder is reused across records: call Reset between records and Release
// once the encoder is no longer needed to hand its buffer back to the pool.
type FieldEncoder struct {
	buf   *pool.ByteBuffer
	count int
}

// NewFieldEncoder creates an encoder backed by a pooled record buffer.
func NewFieldEncoder() *FieldEncoder {
	return &FieldEncoder{
		buf: pool.GetRecordBuffer(),
	}
}

// WriteTag appends a raw frame tag byte such as 'I'. Tags are not counted as fields.
func (e *FieldEncoder) WriteTag(tag byte) {
	_ = e.buf.WriteByte(tag)
}

// WriteUnsigned appends v as an unsigned variable-byte field.
func (e *FieldEncoder) WriteUnsigned(v uint32) {
	e.count++
	e.buf.B = AppendUnsigned(e.buf.B, v)
}

// WriteSigned appends v as a zig-zag variable-byte field.
func (e *FieldEncoder) WriteSigned(v int32) {
	e.count++
	e.buf.B = AppendSigned(e.buf.B, v)
}

// Write appends v using the given field encoding.
//
// Only the encodings an I-frame of this converter can carry are supported:
// EncodingSignedVB, EncodingUnsignedVB and EncodingNull.
func (e *FieldEncoder) Write(kind format.EncodingKind, v int64) error {
	switch kind {
	case format.EncodingSignedVB:
		e.WriteSigned(int32(v)) //nolint:gosec
	case format.EncodingUnsignedVB:
		e.WriteUnsigned(uint32(v)) //nolint:gosec
	case format.EncodingNull:
		e.count++
	default:
		return fmt.Errorf("%w: %s", errs.ErrUnsupportedEncoding, kind)
	}

	return nil
}

// Bytes returns the encoded record. The slice is only valid until the next Reset.
func (e *FieldEncoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Len returns the number of fields written since the last Reset.
func (e *FieldEncoder) Len() int {
	return e.count
}

// Size returns the number of encoded bytes, tag included.
func (e *FieldEncoder) Size() int {
	return e.buf.Len()
}

// Reset clears the encoder for the next record.
func (e *FieldEncoder) Reset() {
	e.buf.Reset()
	e.count = 0
}

// Release returns the buffer to the pool. The encoder must not be used afterwards.
func (e *FieldEncoder) Release() {
	if e.buf != nil {
		pool.PutRecordBuffer(e.buf)
		e.buf = nil
	}
	e.count = 0
}
