package frame

import (
	"fmt"

	"github.com/arloliu/bblconv/endian"
	"github.com/arloliu/bblconv/errs"
)

const (
	// PayloadSize is the size of a record without its marker.
	PayloadSize = 88
	// MarkerSize is the length of the FRAME marker.
	MarkerSize = 5
	// FrameSize is a marker plus its payload, the 93 bytes a recorder writes per sample.
	FrameSize = MarkerSize + PayloadSize
)

// Marker precedes every record in an SLF log.
var Marker = []byte("FRAME")

// Record is one decoded telemetry sample.
//
// Field order matches the payload layout. RCCommand holds three signed stick
// values followed by the unsigned throttle, so it is widened to int32.
type Record struct {
	Iteration      uint32
	TimeMicros     uint32
	AxisP          [3]int16
	AxisI          [3]int16
	AxisD          [2]int16
	AxisF          [3]int16
	RCCommand      [4]int32
	Setpoint       [4]int16
	VbatLatest     uint16
	AmperageLatest int16
	RSSIRaw        uint16
	Gyro           [3]int16
	Accel          [3]int16
	Debug          [4]int16
	Motor          [4]uint16
	MotorHz        [4]int16
}

type fieldReader struct {
	buf    []byte
	off    int
	engine endian.EndianEngine
}

func (r *fieldReader) u32() uint32 {
	v := r.engine.Uint32(r.buf[r.off:])
	r.off += 4

	return v
}

func (r *fieldReader) u16() uint16 {
	v := r.engine.Uint16(r.buf[r.off:])
	r.off += 2

	return v
}

func (r *fieldReader) i16() int16 {
	return int16(r.u16()) //nolint:gosec
}

func (r *fieldReader) i16s(dst []int16) {
	for i := range dst {
		dst[i] = r.i16()
	}
}

// Decode deserializes an 88-byte payload.
//
// It only fails when payload has the wrong length; every bit pattern of the
// right length is a valid record.
func Decode(payload []byte, engine endian.EndianEngine) (Record, error) {
	var rec Record

	if len(payload) != PayloadSize {
		return rec, fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidPayloadSize, len(payload), PayloadSize)
	}

	r := fieldReader{buf: payload, engine: engine}
	rec.Iteration = r.u32()
	rec.TimeMicros = r.u32()
	r.i16s(rec.AxisP[:])
	r.i16s(rec.AxisI[:])
	r.i16s(rec.AxisD[:])
	r.i16s(rec.AxisF[:])
	for i := 0; i < 3; i++ {
		rec.RCCommand[i] = int32(r.i16())
	}
	rec.RCCommand[3] = int32(r.u16())
	r.i16s(rec.Setpoint[:])
	rec.VbatLatest = r.u16()
	rec.AmperageLatest = r.i16()
	rec.RSSIRaw = r.u16()
	r.i16s(rec.Gyro[:])
	r.i16s(rec.Accel[:])
	r.i16s(rec.Debug[:])
	for i := range rec.Motor {
		rec.Motor[i] = r.u16()
	}
	r.i16s(rec.MotorHz[:])

	return rec, nil
}

// Append serializes rec in payload layout and appends it to dst. It is the
// inverse of Decode and is used to build synthetic logs.
//
// RCCommand values are truncated to 16 bits.
func Append(dst []byte, rec Record, engine endian.EndianEngine) []byte {
	i16s := func(vs []int16) {
		for _, v := range vs {
			dst = engine.AppendUint16(dst, uint16(v)) //nolint:gosec
		}
	}

	dst = engine.AppendUint32(dst, rec.Iteration)
	dst = engine.AppendUint32(dst, rec.TimeMicros)
	i16s(rec.AxisP[:])
	i16s(rec.AxisI[:])
	i16s(rec.AxisD[:])
	i16s(rec.AxisF[:])
	for _, v := range rec.RCCommand {
		dst = engine.AppendUint16(dst, uint16(v)) //nolint:gosec
	}
	i16s(rec.Setpoint[:])
	dst = engine.AppendUint16(dst, rec.VbatLatest)
	dst = engine.AppendUint16(dst, uint16(rec.AmperageLatest)) //nolint:gosec
	dst = engine.AppendUint16(dst, rec.RSSIRaw)
	i16s(rec.Gyro[:])
	i16s(rec.Accel[:])
	i16s(rec.Debug[:])
	for _, v := range rec.Motor {
		dst = engine.AppendUint16(dst, v)
	}
	i16s(rec.MotorHz[:])

	return dst
}

// AppendFrame appends the marker followed by rec's payload.
func AppendFrame(dst []byte, rec Record, engine endian.EndianEngine) []byte {
	dst = append(dst, Marker...)
	return Append(dst, rec, engine)
}
