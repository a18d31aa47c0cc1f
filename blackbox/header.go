package blackbox

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/arloliu/bblconv/errs"
	"github.com/arloliu/bblconv/format"
	"github.com/arloliu/bblconv/schema"
)

// Header keys with a meaning to the reader.
const (
	KeyProduct          = "Product"
	KeyDataVersion      = "Data version"
	KeyFieldIName       = "Field I name"
	KeyFieldISigned     = "Field I signed"
	KeyFieldIPredictor  = "Field I predictor"
	KeyFieldIEncoding   = "Field I encoding"
	KeyFieldPPredictor  = "Field P predictor"
	KeyFieldPEncoding   = "Field P encoding"
	KeyGyroScale        = "gyro_scale"
	KeyDebugMode        = "debug_mode"
	ProductName         = "Blackbox flight data recorder by Nicholas Sherlock"
	DefaultGyroScale    = float32(1.0)
	headerLinePrefix    = "H "
	headerKeyValueDelim = ':'
)

// EndMarker closes a session.
var EndMarker = []byte("E\xffEnd of log\x00")

// HeaderConfig holds the header values that depend on the conversion settings.
// Everything else in the header is fixed.
type HeaderConfig struct {
	// DebugMode is written to the debug_mode header.
	DebugMode format.DebugMode
	// GyroScale is the deg/s value of one gyro unit, written as the hex bits
	// of the IEEE-754 float.
	GyroScale float32
}

// DefaultHeaderConfig returns the header used for gyro-scaled debug output at
// one deg/s per unit.
func DefaultHeaderConfig() HeaderConfig {
	return HeaderConfig{
		DebugMode: format.DebugGyroScaled,
		GyroScale: DefaultGyroScale,
	}
}

// Validate checks the configurable header values.
func (c HeaderConfig) Validate() error {
	if !c.DebugMode.Valid() {
		return fmt.Errorf("%w: debug mode %d", errs.ErrInvalidConfig, c.DebugMode)
	}
	if c.GyroScale <= 0 || math.IsInf(float64(c.GyroScale), 0) || math.IsNaN(float64(c.GyroScale)) {
		return fmt.Errorf("%w: gyro scale %v", errs.ErrInvalidConfig, c.GyroScale)
	}

	return nil
}

// HeaderLine is one "H key:value" line.
type HeaderLine struct {
	Key   string
	Value string
}

// HeaderLines returns the header of one session in output order.
//
// The "Field I signed" line appears twice. Existing logs carry the duplicate
// and blackbox viewers accept it, so the output keeps it byte for byte.
func HeaderLines(cfg HeaderConfig) []HeaderLine {
	signed := schema.SignedList()

	return []HeaderLine{
		{KeyProduct, ProductName},
		{KeyDataVersion, "2"},
		{"I interval", "1"},
		{"P interval", "1/1"},
		{"Firmware type", "Cleanflight"},
		{"Firmware revision", "Betaflight 4.0"},
		{KeyFieldIName, schema.Names()},
		{KeyFieldISigned, signed},
		{KeyFieldISigned, signed},
		{KeyFieldIPredictor, schema.IPredictorList()},
		{KeyFieldIEncoding, schema.IEncodingList()},
		{KeyFieldPPredictor, schema.PPredictorList()},
		{KeyFieldPEncoding, schema.PEncodingList()},
		{"maxthrottle", "2000"},
		{KeyGyroScale, FormatGyroScale(cfg.GyroScale)},
		{"motorOutput", "0,1000"},
		{"acc_1G", "2048"},
		{"vbatcellvoltage", "330,350,430"},
		{"vbatref", "420"},
		{"looptime", "250"},
		{"pid_process_denom", "2"},
		{"rc_rates", "213.4,213.4,213.4"},
		{"rates", "50,50,50"},
		{"rollPID", "31.22,1,1"},
		{"pitchPID", "31.22,1,1"},
		{"yawPID", "31.22,1,0"},
		{KeyDebugMode, strconv.Itoa(int(cfg.DebugMode))},
	}
}

// AppendHeader appends the header block for cfg to dst.
func AppendHeader(dst []byte, cfg HeaderConfig) []byte {
	for _, line := range HeaderLines(cfg) {
		dst = append(dst, headerLinePrefix...)
		dst = append(dst, line.Key...)
		dst = append(dst, headerKeyValueDelim)
		dst = append(dst, line.Value...)
		dst = append(dst, '\n')
	}

	return dst
}

// WriteHeader writes the header block for cfg to w.
func WriteHeader(w io.Writer, cfg HeaderConfig) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	return w.Write(AppendHeader(nil, cfg))
}

// AppendEndMarker appends the end-of-log marker to dst.
func AppendEndMarker(dst []byte) []byte {
	return append(dst, EndMarker...)
}

// WriteEndMarker writes the end-of-log marker to w.
func WriteEndMarker(w io.Writer) (int, error) {
	return w.Write(EndMarker)
}

// FormatGyroScale renders scale as the hex bits of its float32 representation,
// e.g. 1.0 becomes "0x3f800000".
func FormatGyroScale(scale float32) string {
	return fmt.Sprintf("0x%08x", math.Float32bits(scale))
}

// ParseGyroScale is the inverse of FormatGyroScale.
func ParseGyroScale(s string) (float32, error) {
	bits, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: gyro_scale %q: %w", errs.ErrInvalidHeader, s, err)
	}

	return math.Float32frombits(uint32(bits)), nil
}
