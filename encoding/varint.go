package encoding

import (
	"github.com/arloliu/bblconv/errs"
)

// MaxVarintLen32 is the maximum number of bytes a 32-bit variable-byte value uses.
const MaxVarintLen32 = 5

// ZigZag maps a signed value to an unsigned one so that values of small
// magnitude stay small: 0 -> 0, -1 -> 1, 1 -> 2, -2 -> 3, and so on.
//
// The mapping is total over int32, including math.MinInt32 which maps to
// math.MaxUint32.
func ZigZag(v int32) uint32 {
	return uint32(v<<1) ^ uint32(v>>31) //nolint:gosec
}

// UnZigZag is the inverse of ZigZag.
func UnZigZag(u uint32) int32 {
	return int32(u>>1) ^ -int32(u&1) //nolint:gosec
}

// AppendUnsigned appends v to dst as a base-128 variable-byte value.
//
// Groups of 7 bits are written least significant first. Every byte except the
// last has its high bit set.
//
// Parameters:
//   - dst: Destination slice, may be nil
//   - v: Value to encode
//
// Returns:
//   - []byte: dst extended by 1 to 5 bytes
func AppendUnsigned(dst []byte, v uint32) []byte {
	for v > 0x7f {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}

	return append(dst, byte(v))
}

// AppendSigned appends v zig-zag mapped and then variable-byte encoded.
func AppendSigned(dst []byte, v int32) []byte {
	return AppendUnsigned(dst, ZigZag(v))
}

// UnsignedLen returns the number of bytes AppendUnsigned would write for v.
func UnsignedLen(v uint32) int {
	n := 1
	for v > 0x7f {
		v >>= 7
		n++
	}

	return n
}

// ReadUnsigned decodes a variable-byte value from the start of src.
//
// Returns:
//   - uint32: Decoded value
//   - int: Number of bytes consumed
//   - error: errs.ErrVarintTruncated if src ends inside the value,
//     errs.ErrVarintOverflow if the value does not fit in 32 bits
func ReadUnsigned(src []byte) (uint32, int, error) {
	var v uint32
	var shift uint

	for i, b := range src {
		if i == MaxVarintLen32-1 && b > 0x0f {
			return 0, 0, errs.ErrVarintOverflow
		}

		v |= uint32(b&0x7f) << shift
		if b < 0x80 {
			return v, i + 1, nil
		}
		shift += 7
	}

	return 0, 0, errs.ErrVarintTruncated
}

// ReadSigned decodes a zig-zag variable-byte value from the start of src.
func ReadSigned(src []byte) (int32, int, error) {
	u, n, err := ReadUnsigned(src)
	if err != nil {
		return 0, 0, err
	}

	return UnZigZag(u), n, nil
}
