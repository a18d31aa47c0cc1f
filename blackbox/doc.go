// Package blackbox writes and reads the Cleanflight/Betaflight blackbox log
// container produced by bblconv.
//
// A log is one or more sessions. Each session is an ASCII header block of
// "H key:value" lines, followed by intra frames and closed by the end-of-log
// marker:
//
//	H Product:Blackbox flight data recorder by Nicholas Sherlock
//	H Data version:2
//	...
//	H debug_mode:6
//	I <38 variable-byte fields>
//	I <38 variable-byte fields>
//	E 0xFF "End of log" 0x00
//
// Only intra ("I") frames are emitted. Every field is written either as an
// unsigned variable-byte value or as a zig-zag signed variable-byte value, as
// declared by the "Field I encoding" header derived from the schema package.
// The P-frame predictor and encoding headers are still declared because
// blackbox viewers refuse logs without them.
//
// Writer produces logs and Reader parses them back. Reader understands exactly
// the subset Writer produces, which is enough for inspecting converted files
// and for round-trip tests.
package blackbox
