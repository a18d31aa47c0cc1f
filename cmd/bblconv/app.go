package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/arloliu/bblconv/blackbox"
	"github.com/arloliu/bblconv/compress"
	"github.com/arloliu/bblconv/converter"
	"github.com/arloliu/bblconv/errs"
	"github.com/arloliu/bblconv/internal/batch"
	"github.com/arloliu/bblconv/internal/config"
	"github.com/arloliu/bblconv/internal/logging"
	"github.com/arloliu/bblconv/schema"
)

const (
	// Flags.
	flagDir         = "dir"
	flagOut         = "out"
	flagConfig      = "config"
	flagCompress    = "compress"
	flagOrientation = "orientation"
	flagDebugMode   = "debug-mode"
	flagGyroSource  = "gyro-source"
	flagGyroScale   = "gyro-scale"
	flagByteOrder   = "byte-order"
	flagPrefix      = "prefix"
	flagLogLevel    = "log-level"
	flagLogFile     = "log-file"
	flagNoProgress  = "no-progress"
)

const appDescription = `Converts every LOG*.TXT file of the input directory, or the files given as
arguments, into .bbl files named after the current time. Inputs may be
compressed with zstd, s2 or lz4 (LOG1.TXT.zst).`

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:        "bblconv",
		Usage:       "convert SLF flight logs to Betaflight blackbox logs",
		ArgsUsage:   "[FILE...]",
		Description: appDescription,
		Writer:      stdout,
		ErrWriter:   stderr,
		Flags:       convertFlags(),
		Action:      convertAction,
		Commands: []*cli.Command{
			{
				Name:      "convert",
				Usage:     "convert SLF logs (the default command)",
				ArgsUsage: "[FILE...]",
				Flags:     convertFlags(),
				Action:    convertAction,
			},
			{
				Name:      "inspect",
				Usage:     "list the sessions of blackbox logs",
				ArgsUsage: "FILE...",
				Action:    inspectAction,
			},
		},
	}
}

func convertFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "YAML configuration `FILE`; flags override its values",
		},
		&cli.StringFlag{
			Name:    flagDir,
			Aliases: []string{"d"},
			Usage:   "input `DIR` searched for LOG*.TXT files",
		},
		&cli.StringFlag{
			Name:    flagOut,
			Aliases: []string{"o"},
			Usage:   "output `DIR`",
		},
		&cli.StringFlag{
			Name:  flagCompress,
			Usage: "output compression: none, zstd, s2 or lz4",
		},
		&cli.StringFlag{
			Name:  flagOrientation,
			Usage: "accelerometer fields: gyro-accel, gyro-only or static",
		},
		&cli.StringFlag{
			Name:  flagDebugMode,
			Usage: "debug fields: 6 (unfiltered gyro) or 12 (ESC RPM)",
		},
		&cli.StringFlag{
			Name:  flagGyroSource,
			Usage: "gyro fields: filtered or unfiltered",
		},
		&cli.Float64Flag{
			Name:  flagGyroScale,
			Usage: "gyro_scale header value",
		},
		&cli.StringFlag{
			Name:  flagByteOrder,
			Usage: "input byte order: little or big",
		},
		&cli.StringFlag{
			Name:  flagPrefix,
			Usage: "text between the timestamp and the log id in output names",
		},
		&cli.StringFlag{
			Name:  flagLogLevel,
			Usage: "log level: debug, info, warn or error",
		},
		&cli.StringFlag{
			Name:  flagLogFile,
			Usage: "also write JSON logs to the rotated `FILE`",
		},
		&cli.BoolFlag{
			Name:  flagNoProgress,
			Usage: "disable progress bars",
		},
	}
}

// loadConfig reads the configuration file and applies the flags set on the
// command line.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String(flagConfig))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}

	stringFlags := map[string]*string{
		flagDir:         &cfg.InputDir,
		flagOut:         &cfg.OutputDir,
		flagCompress:    &cfg.Compression,
		flagOrientation: &cfg.Conversion.Orientation,
		flagDebugMode:   &cfg.Conversion.DebugMode,
		flagGyroSource:  &cfg.Conversion.GyroSource,
		flagByteOrder:   &cfg.Conversion.ByteOrder,
		flagPrefix:      &cfg.Prefix,
		flagLogLevel:    &cfg.Logging.Level,
		flagLogFile:     &cfg.Logging.File,
	}
	for name, dst := range stringFlags {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	if c.IsSet(flagGyroScale) {
		cfg.Conversion.GyroScale = float32(c.Float64(flagGyroScale))
	}
	if c.Bool(flagNoProgress) {
		cfg.Progress = false
	}

	return cfg, nil
}

func convertAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	settings, err := cfg.Settings()
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:      settings.LogLevel,
		Console:    c.App.ErrWriter,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}
	defer func() { _ = closeLog() }()

	var progress batch.Progress = batch.NoProgress{}
	if cfg.Progress {
		progress = batch.TerminalProgress{}
	}

	runner, err := batch.New(
		batch.WithLogger(logger),
		batch.WithOutputDir(cfg.OutputDir),
		batch.WithPrefix(cfg.Prefix),
		batch.WithOutputCompression(settings.Compression),
		batch.WithProgress(progress),
		batch.WithConverterOptions(
			converter.WithOrientation(settings.Orientation),
			converter.WithDebugMode(settings.DebugMode),
			converter.WithGyroSource(settings.GyroSource),
			converter.WithGyroScale(settings.GyroScale),
			converter.WithEngine(settings.Engine),
			converter.WithReadBufferSize(settings.ReadBufferSize),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}

	var report batch.Report
	if c.NArg() > 0 {
		inputs := make([]batch.Input, 0, c.NArg())
		for _, path := range c.Args().Slice() {
			inputs = append(inputs, batch.InputFromPath(path))
		}
		report, err = runner.RunInputs(c.Context, inputs)
	} else {
		report, err = runner.Run(c.Context, cfg.InputDir)
	}

	logger.Info("batch finished",
		zap.Int("converted", report.Converted()),
		zap.Int("duplicates", report.Skipped()),
		zap.Int("failed", report.Failed()),
	)

	if ctxErr := c.Context.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		// Failed files are logged; the batch itself succeeded.
		logger.Warn("some files were not converted", zap.Error(err))
	}

	fmt.Fprintln(c.App.Writer, "all done")

	return nil
}

func inspectAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("%w: inspect needs at least one file", errs.ErrInvalidConfig)
	}

	rows := [][]string{{"File", "Session", "Frames", "Iterations", "Debug mode", "Gyro scale", "Complete"}}
	var errList error
	for _, path := range c.Args().Slice() {
		sessions, err := readLog(path)
		if err != nil {
			errList = multierr.Append(errList, fmt.Errorf("%s: %w", path, err))
			continue
		}

		for i, s := range sessions {
			rows = append(rows, []string{
				filepath.Base(path),
				strconv.Itoa(i + 1),
				strconv.Itoa(len(s.Frames)),
				iterationRange(s.Frames),
				s.Header.DebugMode.String(),
				blackbox.FormatGyroScale(s.Header.GyroScale),
				strconv.FormatBool(s.Complete),
			})
		}
	}

	if len(rows) > 1 {
		table, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, table)
	}

	return errList
}

func readLog(path string) ([]blackbox.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	codec, ct := compress.CodecForPath(path)
	plain, err := codec.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", ct, err)
	}

	return blackbox.ReadAll(bytes.NewReader(plain))
}

func iterationRange(frames [][]int64) string {
	if len(frames) == 0 {
		return "-"
	}

	first := frames[0][schema.LoopIteration]
	last := frames[len(frames)-1][schema.LoopIteration]

	return fmt.Sprintf("%d..%d", first, last)
}
