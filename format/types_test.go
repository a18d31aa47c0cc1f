package format

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/bblconv/errs"
)

func TestCompressionType(t *testing.T) {
	tests := []struct {
		input string
		want  CompressionType
		name  string
		ext   string
	}{
		{"", CompressionNone, "None", ""},
		{"none", CompressionNone, "None", ""},
		{"ZSTD", CompressionZstd, "Zstd", ".zst"},
		{"zst", CompressionZstd, "Zstd", ".zst"},
		{" s2 ", CompressionS2, "S2", ".s2"},
		{"lz4", CompressionLZ4, "LZ4", ".lz4"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCompression(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.name, got.String())
			require.Equal(t, tt.ext, got.Extension())
			require.Equal(t, got, CompressionFromExtension(got.Extension()))
		})
	}

	_, err := ParseCompression("gzip")
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
	require.Equal(t, CompressionNone, CompressionFromExtension(".gz"))
	require.Equal(t, "Unknown", CompressionType(0).String())
}

func TestParseOrientationMode(t *testing.T) {
	for _, m := range []OrientationMode{OrientationGyroAccel, OrientationGyroOnly, OrientationStatic} {
		got, err := ParseOrientationMode(m.String())
		require.NoError(t, err)
		require.Equal(t, m, got)
		require.True(t, m.Valid())
	}

	got, err := ParseOrientationMode("1")
	require.NoError(t, err)
	require.Equal(t, OrientationGyroOnly, got)

	_, err = ParseOrientationMode("sideways")
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
	require.False(t, OrientationMode(3).Valid())
}

func TestParseDebugMode(t *testing.T) {
	got, err := ParseDebugMode("12")
	require.NoError(t, err)
	require.Equal(t, DebugESCRPM, got)

	got, err = ParseDebugMode("gyro-scaled")
	require.NoError(t, err)
	require.Equal(t, DebugGyroScaled, got)

	got, err = ParseDebugMode("")
	require.NoError(t, err)
	require.Equal(t, DebugGyroScaled, got)

	_, err = ParseDebugMode("7")
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
	require.False(t, DebugMode(7).Valid())
	require.Equal(t, "unknown", DebugMode(7).String())
}

func TestParseGyroSource(t *testing.T) {
	got, err := ParseGyroSource("Unfiltered")
	require.NoError(t, err)
	require.Equal(t, GyroUnfiltered, got)
	require.Equal(t, "unfiltered", got.String())

	_, err = ParseGyroSource("raw")
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
	require.False(t, GyroSource(2).Valid())
}

func TestEncodingKindString(t *testing.T) {
	require.Equal(t, "SignedVB", EncodingSignedVB.String())
	require.Equal(t, "UnsignedVB", EncodingUnsignedVB.String())
	require.Equal(t, "Null", EncodingNull.String())
	require.Equal(t, "Unknown", EncodingKind(42).String())
}
