// Package config loads the YAML configuration of the bblconv command.
//
// Every field has a default, so an absent or empty file is a valid
// configuration. Command line flags override file values.
//
//	input_dir: .
//	output_dir: .
//	prefix: SLF4_
//	compression: none
//	conversion:
//	  orientation: gyro-accel
//	  debug_mode: "6"
//	  gyro_source: filtered
//	  gyro_scale: 1.0
//	  byte_order: little
//	  read_buffer_size: 64KiB
//	logging:
//	  level: info
//	  file: ""
//	  max_size_mb: 10
//	  max_backups: 3
//	  max_age_days: 28
//	  compress: false
//	progress: true
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/docker/go-units"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/bblconv/endian"
	"github.com/arloliu/bblconv/errs"
	"github.com/arloliu/bblconv/format"
	"github.com/arloliu/bblconv/frame"
)

// DefaultPrefix is put between the timestamp and the log id in output names.
const DefaultPrefix = "SLF4_"

// ConversionConfig selects how records are projected onto blackbox fields.
type ConversionConfig struct {
	Orientation    string  `yaml:"orientation"`
	DebugMode      string  `yaml:"debug_mode"`
	GyroSource     string  `yaml:"gyro_source"`
	GyroScale      float32 `yaml:"gyro_scale"`
	ByteOrder      string  `yaml:"byte_order"`
	ReadBufferSize string  `yaml:"read_buffer_size"`
}

// LoggingConfig configures the console logger and the optional rotated log file.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Config is the top-level structure of the configuration file.
type Config struct {
	InputDir    string           `yaml:"input_dir"`
	OutputDir   string           `yaml:"output_dir"`
	Prefix      string           `yaml:"prefix"`
	Compression string           `yaml:"compression"`
	Conversion  ConversionConfig `yaml:"conversion"`
	Logging     LoggingConfig    `yaml:"logging"`
	Progress    bool             `yaml:"progress"`
}

// Settings are the typed values of a validated Config.
type Settings struct {
	Orientation    format.OrientationMode
	DebugMode      format.DebugMode
	GyroSource     format.GyroSource
	GyroScale      float32
	Engine         endian.EndianEngine
	ReadBufferSize int
	Compression    format.CompressionType
	LogLevel       zapcore.Level
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		InputDir:    ".",
		OutputDir:   ".",
		Prefix:      DefaultPrefix,
		Compression: format.CompressionNone.String(),
		Conversion: ConversionConfig{
			Orientation:    format.OrientationGyroAccel.String(),
			DebugMode:      "6",
			GyroSource:     format.GyroFiltered.String(),
			GyroScale:      1.0,
			ByteOrder:      "little",
			ReadBufferSize: units.BytesSize(float64(frame.DefaultBufferSize)),
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Progress: true,
	}
}

// Load reads the configuration file at path on top of the defaults. An empty
// path returns the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes YAML data on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// Settings validates the configuration and returns its typed values. All
// problems are reported together.
func (c *Config) Settings() (Settings, error) {
	var s Settings
	var err, e error

	if c.InputDir == "" {
		err = multierr.Append(err, fmt.Errorf("%w: input_dir is empty", errs.ErrInvalidConfig))
	}
	if c.OutputDir == "" {
		err = multierr.Append(err, fmt.Errorf("%w: output_dir is empty", errs.ErrInvalidConfig))
	}

	s.Orientation, e = format.ParseOrientationMode(c.Conversion.Orientation)
	err = multierr.Append(err, e)
	s.DebugMode, e = format.ParseDebugMode(c.Conversion.DebugMode)
	err = multierr.Append(err, e)
	s.GyroSource, e = format.ParseGyroSource(c.Conversion.GyroSource)
	err = multierr.Append(err, e)
	s.Engine, e = endian.Parse(c.Conversion.ByteOrder)
	err = multierr.Append(err, e)
	s.Compression, e = format.ParseCompression(c.Compression)
	err = multierr.Append(err, e)

	s.GyroScale = c.Conversion.GyroScale
	if s.GyroScale <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: gyro_scale must be positive, got %v", errs.ErrInvalidConfig, s.GyroScale))
	}

	size, e := units.RAMInBytes(c.Conversion.ReadBufferSize)
	switch {
	case e != nil:
		err = multierr.Append(err, fmt.Errorf("%w: read_buffer_size: %w", errs.ErrInvalidConfig, e))
	case size < 16 || size > 64*units.MiB:
		err = multierr.Append(err, fmt.Errorf("%w: read_buffer_size %s out of range", errs.ErrInvalidConfig, c.Conversion.ReadBufferSize))
	default:
		s.ReadBufferSize = int(size)
	}

	s.LogLevel, e = zapcore.ParseLevel(c.Logging.Level)
	if e != nil {
		err = multierr.Append(err, fmt.Errorf("%w: logging.level: %w", errs.ErrInvalidConfig, e))
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: logging rotation values must not be negative", errs.ErrInvalidConfig))
	}

	if err != nil {
		return Settings{}, err
	}

	return s, nil
}

// Validate reports every problem in the configuration.
func (c *Config) Validate() error {
	_, err := c.Settings()
	return err
}
