package converter

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/bblconv/endian"
	"github.com/arloliu/bblconv/errs"
	"github.com/arloliu/bblconv/format"
	"github.com/arloliu/bblconv/internal/options"
)

// DefaultProgressInterval is the number of records between progress callbacks.
const DefaultProgressInterval = 2000

// ProgressFunc receives the consumed and total input bytes. total is negative
// when the input length is unknown.
type ProgressFunc func(consumed, total int64)

// Option configures a Converter.
type Option = options.Option[*Converter]

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithOrientation selects what is written to the accSmooth fields.
func WithOrientation(mode format.OrientationMode) Option {
	return options.New(func(c *Converter) error {
		if !mode.Valid() {
			return fmt.Errorf("%w: orientation mode %d", errs.ErrInvalidConfig, mode)
		}
		c.signal.Orientation = mode

		return nil
	})
}

// WithDebugMode selects what is written to the debug fields and the debug_mode header.
func WithDebugMode(mode format.DebugMode) Option {
	return options.New(func(c *Converter) error {
		if !mode.Valid() {
			return fmt.Errorf("%w: debug mode %d", errs.ErrInvalidConfig, mode)
		}
		c.signal.Debug = mode
		c.header.DebugMode = mode

		return nil
	})
}

// WithGyroSource selects the filtered or unfiltered gyro for the gyroADC fields.
func WithGyroSource(src format.GyroSource) Option {
	return options.New(func(c *Converter) error {
		if !src.Valid() {
			return fmt.Errorf("%w: gyro source %d", errs.ErrInvalidConfig, src)
		}
		c.signal.Gyro = src

		return nil
	})
}

// WithGyroScale sets the gyro_scale header value in deg/s per unit.
func WithGyroScale(scale float32) Option {
	return options.New(func(c *Converter) error {
		if scale <= 0 {
			return fmt.Errorf("%w: gyro scale %v", errs.ErrInvalidConfig, scale)
		}
		c.header.GyroScale = scale

		return nil
	})
}

// WithEngine sets the byte order of the input payloads. SLF logs are little-endian.
func WithEngine(engine endian.EndianEngine) Option {
	return options.New(func(c *Converter) error {
		if engine == nil {
			return fmt.Errorf("%w: nil endian engine", errs.ErrInvalidConfig)
		}
		c.engine = engine

		return nil
	})
}

// WithProgress registers a progress callback, called every interval records
// and once more when the conversion ends. A non-positive interval keeps
// DefaultProgressInterval.
func WithProgress(fn ProgressFunc, interval int) Option {
	return options.NoError(func(c *Converter) {
		c.progress = fn
		if interval > 0 {
			c.progressEvery = interval
		}
	})
}

// WithReadBufferSize sets the scanner's read buffer size.
func WithReadBufferSize(size int) Option {
	return options.NoError(func(c *Converter) {
		c.readBuffer = size
	})
}
