// Package format holds the enumerated values shared by the converter, the
// blackbox writer and the CLI configuration.
package format

import (
	"fmt"
	"strings"

	"github.com/arloliu/bblconv/errs"
)

type (
	EncodingKind    uint8
	Predictor       uint8
	CompressionType uint8
	OrientationMode uint8
	DebugMode       uint8
	GyroSource      uint8
)

// Field encodings as numbered by the blackbox log format.
const (
	EncodingSignedVB        EncodingKind = 0  // EncodingSignedVB is zig-zag then variable-byte.
	EncodingUnsignedVB      EncodingKind = 1  // EncodingUnsignedVB is plain variable-byte.
	EncodingNeg14Bit        EncodingKind = 3  // EncodingNeg14Bit negates a 14-bit value before variable-byte.
	EncodingTag8_8SVB       EncodingKind = 6  // EncodingTag8_8SVB groups up to 8 signed values behind a tag byte.
	EncodingTag2_3S32       EncodingKind = 7  // EncodingTag2_3S32 packs 3 signed values with a 2-bit selector.
	EncodingTag8_4S16       EncodingKind = 8  // EncodingTag8_4S16 packs 4 signed 16-bit values behind a tag byte.
	EncodingNull            EncodingKind = 9  // EncodingNull writes nothing.
	EncodingTag2_3SVariable EncodingKind = 10 // EncodingTag2_3SVariable is the variable-width form of Tag2_3S32.
)

// Field predictors as numbered by the blackbox log format.
const (
	PredictorZero              Predictor = 0
	PredictorPrevious          Predictor = 1
	PredictorStraightLine      Predictor = 2
	PredictorAverage2          Predictor = 3
	PredictorMinThrottle       Predictor = 4
	PredictorMotor0            Predictor = 5
	PredictorIncrement         Predictor = 6
	PredictorHomeCoord         Predictor = 7
	Predictor1500              Predictor = 8
	PredictorVbatRef           Predictor = 9
	PredictorLastMainFrameTime Predictor = 10
	PredictorMinMotor          Predictor = 11
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// Craft orientation display modes. They decide what is written to the accSmooth fields.
const (
	OrientationGyroAccel OrientationMode = 0 // OrientationGyroAccel writes the accelerometer as recorded.
	OrientationGyroOnly  OrientationMode = 1 // OrientationGyroOnly writes a single 1g pulse on iteration 0.
	OrientationStatic    OrientationMode = 2 // OrientationStatic writes zeros so the craft never rotates.
)

// Debug modes understood by blackbox viewers. The value is written verbatim to
// the debug_mode header.
const (
	DebugGyroScaled DebugMode = 6  // DebugGyroScaled writes the recorded debug fields (unfiltered gyro).
	DebugESCRPM     DebugMode = 12 // DebugESCRPM writes motor frequencies in decihertz.
)

const (
	GyroFiltered   GyroSource = 0 // GyroFiltered writes the filtered gyro fields.
	GyroUnfiltered GyroSource = 1 // GyroUnfiltered writes debug[0..2] into the gyro fields.
)

func (e EncodingKind) String() string {
	switch e {
	case EncodingSignedVB:
		return "SignedVB"
	case EncodingUnsignedVB:
		return "UnsignedVB"
	case EncodingNeg14Bit:
		return "Neg14Bit"
	case EncodingTag8_8SVB:
		return "Tag8_8SVB"
	case EncodingTag2_3S32:
		return "Tag2_3S32"
	case EncodingTag8_4S16:
		return "Tag8_4S16"
	case EncodingNull:
		return "Null"
	case EncodingTag2_3SVariable:
		return "Tag2_3SVariable"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Extension returns the file name suffix used for the compression type, including
// the leading dot. CompressionNone has no suffix.
func (c CompressionType) Extension() string {
	switch c {
	case CompressionZstd:
		return ".zst"
	case CompressionS2:
		return ".s2"
	case CompressionLZ4:
		return ".lz4"
	default:
		return ""
	}
}

// ParseCompression parses a compression name such as "zstd" or "none".
func ParseCompression(s string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrUnsupportedCompression, s)
	}
}

// CompressionFromExtension maps a file suffix back to its compression type.
// Unknown suffixes map to CompressionNone.
func CompressionFromExtension(ext string) CompressionType {
	switch strings.ToLower(ext) {
	case ".zst":
		return CompressionZstd
	case ".s2":
		return CompressionS2
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

func (m OrientationMode) String() string {
	switch m {
	case OrientationGyroAccel:
		return "gyro-accel"
	case OrientationGyroOnly:
		return "gyro-only"
	case OrientationStatic:
		return "static"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the defined orientation modes.
func (m OrientationMode) Valid() bool {
	return m <= OrientationStatic
}

// ParseOrientationMode accepts the mode name or its number.
func ParseOrientationMode(s string) (OrientationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "gyro-accel":
		return OrientationGyroAccel, nil
	case "1", "gyro-only":
		return OrientationGyroOnly, nil
	case "2", "static":
		return OrientationStatic, nil
	default:
		return 0, fmt.Errorf("%w: orientation mode %q", errs.ErrInvalidConfig, s)
	}
}

func (d DebugMode) String() string {
	switch d {
	case DebugGyroScaled:
		return "gyro-scaled"
	case DebugESCRPM:
		return "esc-rpm"
	default:
		return "unknown"
	}
}

// Valid reports whether d is a debug mode the converter can emit.
func (d DebugMode) Valid() bool {
	return d == DebugGyroScaled || d == DebugESCRPM
}

// ParseDebugMode accepts the mode name or its header number.
func ParseDebugMode(s string) (DebugMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "6", "gyro-scaled":
		return DebugGyroScaled, nil
	case "12", "esc-rpm":
		return DebugESCRPM, nil
	default:
		return 0, fmt.Errorf("%w: debug mode %q", errs.ErrInvalidConfig, s)
	}
}

func (g GyroSource) String() string {
	switch g {
	case GyroFiltered:
		return "filtered"
	case GyroUnfiltered:
		return "unfiltered"
	default:
		return "unknown"
	}
}

// Valid reports whether g is a defined gyro source.
func (g GyroSource) Valid() bool {
	return g <= GyroUnfiltered
}

// ParseGyroSource accepts "filtered" or "unfiltered".
func ParseGyroSource(s string) (GyroSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "filtered":
		return GyroFiltered, nil
	case "unfiltered":
		return GyroUnfiltered, nil
	default:
		return 0, fmt.Errorf("%w: gyro source %q", errs.ErrInvalidConfig, s)
	}
}
