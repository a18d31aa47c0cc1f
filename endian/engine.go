// Package endian provides the byte order used to decode fixed-width telemetry
// records.
//
// SLF flight logs are written by a little-endian microcontroller, so
// GetLittleEndianEngine is the default everywhere in bblconv. The big-endian
// engine exists for recorders that were built for big-endian targets.
//
//	engine := endian.GetLittleEndianEngine()
//	rec, err := frame.Decode(payload, engine)
package endian

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/arloliu/bblconv/errs"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// binary.LittleEndian and binary.BigEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Parse returns the engine named by s ("little" or "big").
func Parse(s string) (EndianEngine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "little", "le":
		return binary.LittleEndian, nil
	case "big", "be":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("%w: byte order %q", errs.ErrInvalidConfig, s)
	}
}
