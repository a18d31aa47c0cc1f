// Package signal carries the per-conversion state that survives from one record
// to the next: session detection on the iteration counter and the RSSI activity
// filter. It also projects a decoded record onto the blackbox field table.
//
// A State belongs to exactly one conversion. Create a new one per input file.
package signal

import (
	"fmt"

	"github.com/arloliu/bblconv/errs"
	"github.com/arloliu/bblconv/format"
	"github.com/arloliu/bblconv/frame"
	"github.com/arloliu/bblconv/schema"
)

// OneG is the accelerometer reading for 1g, matching the acc_1G header.
const OneG = 2048

// Config selects which recorded fields end up in the gyro, accSmooth and debug
// columns. It is fixed for a whole conversion.
type Config struct {
	Orientation format.OrientationMode
	Debug       format.DebugMode
	Gyro        format.GyroSource
}

// DefaultConfig writes every field as recorded with the "gyro scaled" debug mode.
func DefaultConfig() Config {
	return Config{
		Orientation: format.OrientationGyroAccel,
		Debug:       format.DebugGyroScaled,
		Gyro:        format.GyroFiltered,
	}
}

// Validate checks that every mode is defined.
func (c Config) Validate() error {
	if !c.Orientation.Valid() {
		return fmt.Errorf("%w: orientation mode %d", errs.ErrInvalidConfig, c.Orientation)
	}
	if !c.Debug.Valid() {
		return fmt.Errorf("%w: debug mode %d", errs.ErrInvalidConfig, c.Debug)
	}
	if !c.Gyro.Valid() {
		return fmt.Errorf("%w: gyro source %d", errs.ErrInvalidConfig, c.Gyro)
	}

	return nil
}

// State is the decoder state carried across records.
type State struct {
	cfg Config

	lastIteration uint32
	seen          bool
	sessions      int

	rssi RSSIFilter
}

// NewState creates the state for one conversion.
func NewState(cfg Config) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &State{cfg: cfg}, nil
}

// Observe records rec's iteration and reports whether it starts a new session,
// i.e. whether it is smaller than the previous record's. The first record never
// starts a new session.
func (s *State) Observe(rec frame.Record) bool {
	reset := s.seen && rec.Iteration < s.lastIteration

	if !s.seen || reset {
		s.sessions++
	}
	s.seen = true
	s.lastIteration = rec.Iteration

	return reset
}

// Project feeds the RSSI filter and returns rec's values in field table order.
func (s *State) Project(rec frame.Record) schema.Values {
	var v schema.Values

	v[schema.LoopIteration] = int64(rec.Iteration)
	v[schema.Time] = int64(rec.TimeMicros)
	for i := range rec.AxisP {
		v[schema.AxisP0+i] = int64(rec.AxisP[i])
		v[schema.AxisI0+i] = int64(rec.AxisI[i])
		v[schema.AxisF0+i] = int64(rec.AxisF[i])
	}
	for i := range rec.AxisD {
		v[schema.AxisD0+i] = int64(rec.AxisD[i])
	}
	for i := range rec.RCCommand {
		v[schema.RCCommand0+i] = int64(rec.RCCommand[i])
		v[schema.Setpoint0+i] = int64(rec.Setpoint[i])
		v[schema.Motor0+i] = int64(rec.Motor[i])
	}
	v[schema.VbatLatest] = int64(rec.VbatLatest)
	v[schema.AmperageLatest] = int64(rec.AmperageLatest)
	v[schema.RSSI] = int64(s.rssi.Sample(rec.Iteration, rec.RSSIRaw))

	for i := range rec.Gyro {
		if s.cfg.Gyro == format.GyroUnfiltered {
			v[schema.GyroADC0+i] = int64(rec.Debug[i])
		} else {
			v[schema.GyroADC0+i] = int64(rec.Gyro[i])
		}
	}

	switch s.cfg.Orientation {
	case format.OrientationGyroAccel:
		for i := range rec.Accel {
			v[schema.AccSmooth0+i] = int64(rec.Accel[i])
		}
	case format.OrientationGyroOnly:
		if rec.Iteration == 0 {
			v[schema.AccSmooth2] = OneG
		}
	case format.OrientationStatic:
	}

	for i := range rec.Debug {
		if s.cfg.Debug == format.DebugESCRPM {
			v[schema.Debug0+i] = int64(rec.MotorHz[i])
		} else {
			v[schema.Debug0+i] = int64(rec.Debug[i])
		}
	}

	return v
}

// Config returns the configuration the state was created with.
func (s *State) Config() Config {
	return s.cfg
}

// LastIteration returns the iteration of the last observed record and whether
// any record has been observed.
func (s *State) LastIteration() (uint32, bool) {
	return s.lastIteration, s.seen
}

// Sessions returns the number of sessions seen so far.
func (s *State) Sessions() int {
	return s.sessions
}

// RSSI returns the state's RSSI filter.
func (s *State) RSSI() *RSSIFilter {
	return &s.rssi
}
