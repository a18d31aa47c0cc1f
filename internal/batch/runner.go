// Package batch converts every SLF log of a directory, one file at a time.
//
// Each file is isolated: a failure is logged, collected and the batch moves on
// to the next file. Outputs are written under a temporary ".part" name and
// renamed once complete, so a failed or cancelled conversion never leaves a
// truncated .bbl behind. Inputs whose content duplicates an earlier input of
// the same batch are skipped.
package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/go-units"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/arloliu/bblconv/compress"
	"github.com/arloliu/bblconv/converter"
	"github.com/arloliu/bblconv/errs"
	"github.com/arloliu/bblconv/format"
	"github.com/arloliu/bblconv/internal/collision"
	"github.com/arloliu/bblconv/internal/hash"
	"github.com/arloliu/bblconv/internal/logging"
	"github.com/arloliu/bblconv/internal/options"
	"github.com/arloliu/bblconv/internal/pool"
)

const partSuffix = ".part"

// Option configures a Runner.
type Option = options.Option[*Runner]

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	})
}

// WithOutputDir sets the directory outputs are written to. It must exist.
func WithOutputDir(dir string) Option {
	return options.New(func(r *Runner) error {
		st, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("%w: output directory: %w", errs.ErrInvalidConfig, err)
		}
		if !st.IsDir() {
			return fmt.Errorf("%w: output %s is not a directory", errs.ErrInvalidConfig, dir)
		}
		r.outDir = dir

		return nil
	})
}

// WithPrefix sets the text between the timestamp and the log id in output names.
func WithPrefix(prefix string) Option {
	return options.NoError(func(r *Runner) {
		r.prefix = prefix
	})
}

// WithOutputCompression compresses outputs, appending the codec's suffix to
// their names.
func WithOutputCompression(ct format.CompressionType) Option {
	return options.New(func(r *Runner) error {
		codec, err := compress.CreateCodec(ct, "output")
		if err != nil {
			return err
		}
		r.output = ct
		r.codec = codec

		return nil
	})
}

// WithClock sets the time source for output name timestamps.
func WithClock(now func() time.Time) Option {
	return options.NoError(func(r *Runner) {
		if now != nil {
			r.now = now
		}
	})
}

// WithProgress sets the progress display. The default is NoProgress.
func WithProgress(p Progress) Option {
	return options.NoError(func(r *Runner) {
		if p != nil {
			r.progress = p
		}
	})
}

// WithConverterOptions sets the options every conversion starts from. Logger
// and progress options are added per file.
func WithConverterOptions(opts ...converter.Option) Option {
	return options.New(func(r *Runner) error {
		if _, err := converter.New(opts...); err != nil {
			return err
		}
		r.convOpts = opts

		return nil
	})
}

// Runner converts batches of log files.
type Runner struct {
	logger   *zap.Logger
	outDir   string
	prefix   string
	output   format.CompressionType
	codec    compress.Codec
	now      func() time.Time
	progress Progress
	convOpts []converter.Option
}

// New creates a Runner writing uncompressed outputs to the working directory.
func New(opts ...Option) (*Runner, error) {
	r := &Runner{
		logger:   zap.NewNop(),
		outDir:   ".",
		prefix:   "SLF4_",
		output:   format.CompressionNone,
		codec:    compress.NewNoOpCompressor(),
		now:      time.Now,
		progress: NoProgress{},
	}

	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	return r, nil
}

// Result is the outcome for one input.
type Result struct {
	Input Input
	// Output is the path of the written log, empty when nothing was written.
	Output string
	// DuplicateOf is the path of the earlier input with the same content when
	// this one was skipped.
	DuplicateOf string
	// Digest is the xxHash64 of the decompressed input.
	Digest  uint64
	Summary converter.Summary
	Err     error
}

// Skipped reports whether the input was skipped as a duplicate.
func (r Result) Skipped() bool {
	return r.DuplicateOf != ""
}

// Report collects the results of a batch in input order.
type Report struct {
	Results []Result
}

// Converted returns the number of inputs that produced an output.
func (r Report) Converted() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil && !res.Skipped() {
			n++
		}
	}

	return n
}

// Failed returns the number of inputs that failed.
func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}

	return n
}

// Skipped returns the number of duplicate inputs.
func (r Report) Skipped() int {
	n := 0
	for _, res := range r.Results {
		if res.Skipped() {
			n++
		}
	}

	return n
}

// Run converts every SLF log in dir.
func (r *Runner) Run(ctx context.Context, dir string) (Report, error) {
	inputs, err := Discover(dir)
	if err != nil {
		return Report{}, err
	}
	if len(inputs) == 0 {
		r.logger.Warn("no LOG*.TXT files found", zap.String("dir", dir))
	}

	return r.RunInputs(ctx, inputs)
}

// RunInputs converts the given inputs in order. Per-file failures are
// combined into the returned error and do not stop the batch. Cancellation of
// ctx does: the report then holds the inputs processed so far.
func (r *Runner) RunInputs(ctx context.Context, inputs []Input) (Report, error) {
	var report Report
	var errList error
	tracker := collision.NewTracker()

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return report, multierr.Append(errList, err)
		}

		res := r.convertOne(ctx, in, tracker)
		report.Results = append(report.Results, res)

		if res.Err != nil {
			if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
				return report, multierr.Append(errList, res.Err)
			}
			errList = multierr.Append(errList, fmt.Errorf("%s: %w", in.Name, res.Err))
		}
	}

	return report, errList
}

func (r *Runner) convertOne(ctx context.Context, in Input, tracker *collision.Tracker) Result {
	log := logging.Named(r.logger, in.Name)
	res := Result{Input: in}

	src, size, digest, closeFn, err := r.openInput(log, in)
	if err != nil {
		log.Error("cannot read input", zap.Error(err))
		res.Err = err

		return res
	}
	defer closeFn()
	res.Digest = digest

	first, dup, err := tracker.Track(in.Path, digest)
	if err != nil {
		log.Error("cannot track input", zap.Error(err))
		res.Err = err

		return res
	}
	if dup {
		log.Info("duplicate input skipped", zap.String("duplicate_of", first), zap.String("digest", hash.Hex(digest)))
		res.DuplicateOf = first

		return res
	}

	outPath := filepath.Join(r.outDir, OutputName(in, r.prefix, r.now(), r.output))
	log.Info("converting", zap.String("output", outPath), zap.String("size", units.HumanSize(float64(size))))

	task := r.progress.Start(in.Name, size)
	opts := append(append([]converter.Option{}, r.convOpts...),
		converter.WithLogger(log),
		converter.WithProgress(func(consumed, _ int64) { task.Update(consumed) }, 0),
	)
	conv, err := converter.New(opts...)
	if err != nil {
		task.Fail(fmt.Sprintf("%s: %v", in.Name, err))
		res.Err = err

		return res
	}

	sum, err := r.writeOutput(ctx, log, conv, src, size, outPath)
	res.Summary = sum
	if err != nil {
		log.Error("conversion failed", zap.Error(err))
		task.Fail(fmt.Sprintf("%s: %v", in.Name, err))
		res.Err = err

		return res
	}

	res.Output = outPath
	task.Success(fmt.Sprintf("%s -> %s (%d records, %d sessions, %s)",
		in.Name, filepath.Base(outPath), sum.Records, sum.Sessions, units.HumanSize(float64(sum.BytesOut))))

	return res
}

// openInput returns a reader over the decompressed input with its size and
// content digest.
func (r *Runner) openInput(log *zap.Logger, in Input) (io.Reader, int64, uint64, func(), error) {
	if in.Compression == format.CompressionNone {
		f, err := os.Open(in.Path)
		if err != nil {
			return nil, 0, 0, nil, err
		}

		digest, size, err := hash.SumReader(f)
		if err == nil {
			_, err = f.Seek(0, io.SeekStart)
		}
		if err != nil {
			_ = f.Close()
			return nil, 0, 0, nil, err
		}

		return f, size, digest, func() { _ = f.Close() }, nil
	}

	data, err := os.ReadFile(in.Path)
	if err != nil {
		return nil, 0, 0, nil, err
	}

	codec, err := compress.GetCodec(in.Compression)
	if err != nil {
		return nil, 0, 0, nil, err
	}

	plain, err := codec.Decompress(data)
	if err != nil {
		return nil, 0, 0, nil, fmt.Errorf("decompress %s input: %w", in.Compression, err)
	}

	log.Debug("decompressed input",
		zap.Stringer("compression", in.Compression),
		zap.String("compressed", units.HumanSize(float64(len(data)))),
		zap.String("plain", units.HumanSize(float64(len(plain)))),
	)

	return bytes.NewReader(plain), int64(len(plain)), hash.Sum(plain), func() {}, nil
}

func (r *Runner) writeOutput(ctx context.Context, log *zap.Logger, conv *converter.Converter, src io.Reader, size int64, outPath string) (converter.Summary, error) {
	part := outPath + partSuffix

	sum, err := r.convertTo(ctx, log, conv, src, size, part)
	if err != nil {
		_ = os.Remove(part)
		return sum, err
	}

	if err := os.Rename(part, outPath); err != nil {
		_ = os.Remove(part)
		return sum, fmt.Errorf("finalize output: %w", err)
	}

	return sum, nil
}

func (r *Runner) convertTo(ctx context.Context, log *zap.Logger, conv *converter.Converter, src io.Reader, size int64, path string) (converter.Summary, error) {
	if r.output == format.CompressionNone {
		f, err := os.Create(path)
		if err != nil {
			return converter.Summary{}, fmt.Errorf("create output: %w", err)
		}

		sum, err := conv.Convert(ctx, src, size, f)

		return sum, multierr.Append(err, f.Close())
	}

	buf := pool.GetStreamBuffer()
	defer pool.PutStreamBuffer(buf)

	sum, err := conv.Convert(ctx, src, size, buf)
	if err != nil {
		return sum, err
	}

	compressed, err := r.codec.Compress(buf.Bytes())
	if err != nil {
		return sum, fmt.Errorf("compress output: %w", err)
	}

	stats := compress.NewCompressionStats(r.output, buf.Len(), len(compressed))
	log.Debug("compressed output",
		zap.Stringer("compression", stats.Algorithm),
		zap.Int64("original", stats.OriginalSize),
		zap.Int64("compressed", stats.CompressedSize),
		zap.Float64("space_savings_pct", stats.SpaceSavings()),
	)

	if err := os.WriteFile(path, compressed, 0o644); err != nil {
		return sum, fmt.Errorf("write output: %w", err)
	}

	return sum, nil
}
