// Package logging builds the zap logger of the bblconv command: a
// human-readable console core, optionally teed with a JSON core writing to a
// size-rotated file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Level is the minimum level for both sinks.
	Level zapcore.Level
	// Console receives the console output. Defaults to os.Stderr.
	Console io.Writer
	// File is the path of the rotated JSON log. Empty disables it.
	File string
	// MaxSizeMB, MaxBackups and MaxAgeDays control rotation of File.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Compress gzips rotated files.
	Compress bool
}

// New builds the logger. The returned close function flushes the logger and
// closes the log file; call it before the process exits.
func New(opts Options) (*zap.Logger, func() error, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	level := zap.NewAtomicLevelAt(opts.Level)

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(zapcore.AddSync(console)), level),
	}

	var file *lumberjack.Logger
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		cores = append(cores,
			zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(file), level),
		)
	}

	logger := zap.New(zapcore.NewTee(cores...))

	closeFn := func() error {
		var err error
		// Sync on a terminal fails with EINVAL, which is not worth reporting.
		_ = logger.Sync()
		if file != nil {
			err = multierr.Append(err, file.Close())
		}

		return err
	}

	return logger, closeFn, nil
}

// Named returns a child logger for one input file.
func Named(logger *zap.Logger, file string) *zap.Logger {
	return logger.With(zap.String("file", file))
}
