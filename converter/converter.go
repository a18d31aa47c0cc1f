// Package converter turns an SLF telemetry log into a blackbox log.
//
// A conversion reads the input once, front to back:
//
//	frame.Scanner -> signal.State -> blackbox.Writer
//
// The scanner finds FRAME markers and decodes payloads, resynchronizing after
// corrupt frames. The signal state detects session boundaries and projects
// each record onto the blackbox field table. The writer encodes intra frames
// and emits an end marker plus a new header at every session boundary.
//
// Corrupt frames, a truncated tail and an input without any marker are not
// conversion failures. They are logged, counted in the Summary, and the output
// is still a well-formed log.
package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/arloliu/bblconv/blackbox"
	"github.com/arloliu/bblconv/endian"
	"github.com/arloliu/bblconv/errs"
	"github.com/arloliu/bblconv/frame"
	"github.com/arloliu/bblconv/internal/hash"
	"github.com/arloliu/bblconv/internal/options"
	"github.com/arloliu/bblconv/signal"
)

// Converter holds the conversion settings. It keeps no per-conversion state,
// so one Converter may run any number of conversions, one at a time or
// concurrently.
type Converter struct {
	logger        *zap.Logger
	signal        signal.Config
	header        blackbox.HeaderConfig
	engine        endian.EndianEngine
	readBuffer    int
	progress      ProgressFunc
	progressEvery int
}

// New creates a Converter with the given options.
//
// Defaults: accelerometer written as recorded, debug mode 6 (gyro scaled),
// filtered gyro, gyro scale 1 deg/s, little-endian payloads, no logging and no
// progress reporting.
func New(opts ...Option) (*Converter, error) {
	c := &Converter{
		logger:        zap.NewNop(),
		signal:        signal.DefaultConfig(),
		header:        blackbox.DefaultHeaderConfig(),
		engine:        endian.GetLittleEndianEngine(),
		readBuffer:    frame.DefaultBufferSize,
		progressEvery: DefaultProgressInterval,
	}

	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// Summary describes a finished conversion.
type Summary struct {
	// Records is the number of intra frames written.
	Records int64
	// Sessions is the number of headers written. An input without records
	// still yields one session.
	Sessions int
	// CorruptFrames is the number of payloads dropped during resynchronization.
	CorruptFrames int
	// End tells how the input ended.
	End frame.EndReason
	// PartialBytes is the size of a truncated tail payload.
	PartialBytes int
	// FirstIteration and LastIteration are the iterations of the first and last
	// written records.
	FirstIteration uint32
	LastIteration  uint32
	// BytesIn and BytesOut are the consumed input and produced output sizes.
	BytesIn  int64
	BytesOut int64
	// Digest is the xxHash64 of the produced output.
	Digest uint64
	// Duration is the wall time of the conversion.
	Duration time.Duration
}

// Err reports the informational end conditions as sentinel errors:
// errs.ErrNoMarkerFound when the input held no frame at all and
// errs.ErrTruncatedTail when it ended inside a payload. It returns nil for a
// clean end. The output is valid in every case.
func (s Summary) Err() error {
	switch {
	case s.End == frame.EndNoMarker && s.Records == 0 && s.CorruptFrames == 0:
		return errs.ErrNoMarkerFound
	case s.End == frame.EndPartialFrame:
		return errs.ErrTruncatedTail
	default:
		return nil
	}
}

// Convert reads an SLF log from r and writes the blackbox log to w.
//
// size is the input length used for progress reporting, negative if unknown.
// The context is checked between records; on cancellation the output is closed
// with an end marker and ctx.Err() is returned with the partial summary.
// Errors from r or w abort the conversion.
func (c *Converter) Convert(ctx context.Context, r io.Reader, size int64, w io.Writer) (Summary, error) {
	start := time.Now()

	state, err := signal.NewState(c.signal)
	if err != nil {
		return Summary{}, err
	}

	scanner, err := frame.NewScanner(r, size,
		frame.WithEngine(c.engine),
		frame.WithBufferSize(c.readBuffer),
	)
	if err != nil {
		return Summary{}, err
	}

	out := hash.NewWriter(w)
	writer, err := blackbox.NewWriter(out, blackbox.WithHeaderConfig(c.header))
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	runErr := c.run(ctx, scanner, state, writer, &sum)
	closeErr := writer.Close()

	sum.Sessions = writer.Sessions()
	sum.Records = writer.Records()
	sum.CorruptFrames = scanner.CorruptFrames()
	sum.End = scanner.End()
	sum.PartialBytes = scanner.PartialBytes()
	sum.BytesIn = scanner.Consumed()
	sum.BytesOut = out.Count()
	sum.Digest = out.Sum64()
	sum.Duration = time.Since(start)

	if c.progress != nil {
		c.progress(scanner.Consumed(), scanner.Total())
	}

	if runErr != nil {
		return sum, runErr
	}
	if closeErr != nil {
		return sum, closeErr
	}

	c.logEnd(&sum)

	return sum, nil
}

func (c *Converter) run(ctx context.Context, scanner *frame.Scanner, state *signal.State, writer *blackbox.Writer, sum *Summary) error {
	if err := writer.Begin(); err != nil {
		return err
	}

	var records int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := scanner.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			var corrupt *errs.CorruptFrameError
			if errors.As(err, &corrupt) {
				c.logger.Warn("corrupt frame, resynchronizing",
					zap.Int64("offset", corrupt.Offset),
					zap.Int("corrupt_frames", scanner.CorruptFrames()),
				)

				continue
			}

			return fmt.Errorf("read input: %w", err)
		}

		if state.Observe(rec) {
			c.logger.Info("iteration went backwards, starting new session",
				zap.Uint32("previous_iteration", sum.LastIteration),
				zap.Uint32("iteration", rec.Iteration),
				zap.Int("session", state.Sessions()),
			)
			if err := writer.NewSession(); err != nil {
				return err
			}
		}

		values := state.Project(rec)
		if err := writer.WriteRecord(&values); err != nil {
			return err
		}

		if records == 0 {
			sum.FirstIteration = rec.Iteration
		}
		sum.LastIteration = rec.Iteration
		records++

		if c.progress != nil && records%int64(c.progressEvery) == 0 {
			c.progress(scanner.Consumed(), scanner.Total())
		}
	}
}

func (c *Converter) logEnd(sum *Summary) {
	fields := []zap.Field{
		zap.Int64("records", sum.Records),
		zap.Int("sessions", sum.Sessions),
		zap.Int("corrupt_frames", sum.CorruptFrames),
		zap.Stringer("end", sum.End),
		zap.Int64("bytes_in", sum.BytesIn),
		zap.Int64("bytes_out", sum.BytesOut),
		zap.String("digest", hash.Hex(sum.Digest)),
		zap.Duration("duration", sum.Duration),
	}

	switch err := sum.Err(); {
	case errors.Is(err, errs.ErrNoMarkerFound):
		c.logger.Warn("no FRAME marker found, output holds an empty log", fields...)
	case errors.Is(err, errs.ErrTruncatedTail):
		c.logger.Info("input ends with a partial frame, tail dropped",
			append(fields, zap.Int("partial_bytes", sum.PartialBytes))...)
	default:
		c.logger.Debug("conversion finished", fields...)
	}
}
