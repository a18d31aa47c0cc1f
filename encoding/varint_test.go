package encoding

import (
	"math"
	"testing"

	"github.com/arloliu/bblconv/errs"
	"github.com/stretchr/testify/require"
)

func TestAppendUnsigned_Boundaries(t *testing.T) {
	tests := []struct {
		name string
		v    uint32
		want []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"one", 1, []byte{0x01}},
		{"max 1 byte", 127, []byte{0x7f}},
		{"min 2 bytes", 128, []byte{0x80, 0x01}},
		{"300", 300, []byte{0xac, 0x02}},
		{"max 2 bytes", 16383, []byte{0xff, 0x7f}},
		{"min 3 bytes", 16384, []byte{0x80, 0x80, 0x01}},
		{"max uint32", math.MaxUint32, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AppendUnsigned(nil, tt.v)
			require.Equal(t, tt.want, got)
			require.Equal(t, len(tt.want), UnsignedLen(tt.v))

			dec, n, err := ReadUnsigned(got)
			require.NoError(t, err)
			require.Equal(t, tt.v, dec)
			require.Equal(t, len(got), n)
		})
	}
}

func TestAppendUnsigned_AppendsToExisting(t *testing.T) {
	dst := []byte{'I'}
	dst = AppendUnsigned(dst, 128)
	dst = AppendUnsigned(dst, 1)

	require.Equal(t, []byte{'I', 0x80, 0x01, 0x01}, dst)
}

func TestZigZag(t *testing.T) {
	tests := []struct {
		v    int32
		want uint32
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{2, 4},
		{-64, 127},
		{64, 128},
		{math.MaxInt32, math.MaxUint32 - 1},
		{math.MinInt32, math.MaxUint32},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, ZigZag(tt.v), "zigzag(%d)", tt.v)
		require.Equal(t, tt.v, UnZigZag(tt.want), "unzigzag(%d)", tt.want)
	}
}

func TestAppendSigned_RoundTrip(t *testing.T) {
	values := []int32{
		0, 1, -1, 63, -64, 64, -65, 1000, -1000, 2000, -2000,
		math.MaxInt16, math.MinInt16, math.MaxInt32, math.MinInt32,
	}

	for _, v := range values {
		enc := AppendSigned(nil, v)
		dec, n, err := ReadSigned(enc)
		require.NoError(t, err)
		require.Equal(t, v, dec)
		require.Equal(t, len(enc), n)
	}

	require.Equal(t, []byte{0x01}, AppendSigned(nil, -1))
	require.Equal(t, []byte{0x02}, AppendSigned(nil, 1))
	require.Equal(t, []byte{0x80, 0x01}, AppendSigned(nil, 64))
}

func TestAppendUnsigned_Exhaustive16Bit(t *testing.T) {
	buf := make([]byte, 0, MaxVarintLen32)
	for v := uint32(0); v <= math.MaxUint16; v++ {
		buf = AppendUnsigned(buf[:0], v)
		dec, n, err := ReadUnsigned(buf)
		require.NoError(t, err)
		require.Equal(t, v, dec)
		require.Equal(t, len(buf), n)
	}
}

func TestReadUnsigned_Errors(t *testing.T) {
	_, _, err := ReadUnsigned(nil)
	require.ErrorIs(t, err, errs.ErrVarintTruncated)

	_, _, err = ReadUnsigned([]byte{0x80, 0x80})
	require.ErrorIs(t, err, errs.ErrVarintTruncated)

	_, _, err = ReadUnsigned([]byte{0xff, 0xff, 0xff, 0xff, 0x10})
	require.ErrorIs(t, err, errs.ErrVarintOverflow)

	_, _, err = ReadUnsigned([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	require.ErrorIs(t, err, errs.ErrVarintOverflow)

	_, _, err = ReadSigned([]byte{0x80})
	require.ErrorIs(t, err, errs.ErrVarintTruncated)
}

func TestReadUnsigned_StopsAtFirstValue(t *testing.T) {
	v, n, err := ReadUnsigned([]byte{0x80, 0x01, 0x05})
	require.NoError(t, err)
	require.Equal(t, uint32(128), v)
	require.Equal(t, 2, n)
}
