// Package bblconv converts SLF flight-telemetry logs into Betaflight blackbox
// logs readable by Blackbox Explorer.
//
// An SLF log is a flat sequence of 93-byte frames, each a "FRAME" marker
// followed by an 88-byte little-endian payload sampled once per control-loop
// iteration. The converter resynchronizes on corrupt frames, splits the input
// into sessions wherever the loop iteration counter goes backwards and writes
// every session as a complete blackbox log: a text header, one intra frame per
// record and an end marker.
//
// # Basic Usage
//
// Converting a file:
//
//	in, _ := os.Open("LOG001.TXT")
//	out, _ := os.Create("LOG001.bbl")
//	summary, err := bblconv.Convert(ctx, in, out)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%d records in %d sessions\n", summary.Records, summary.Sessions)
//
// Converting an in-memory log with options:
//
//	bbl, summary, err := bblconv.ConvertBytes(data,
//	    converter.WithDebugMode(format.DebugESCRPM),
//	    converter.WithOrientation(format.OrientationGyroOnly),
//	)
//
// Reading a blackbox log back:
//
//	sessions, err := bblconv.ReadSessions(bytes.NewReader(bbl))
//
// # Package Structure
//
// This package wraps the lower level packages for the common cases:
//
//   - frame: SLF frame scanning and record decoding
//   - signal: session detection and field projection
//   - schema: the blackbox field list
//   - encoding: blackbox variable-byte encodings
//   - blackbox: header, frame and end marker writing and reading
//   - converter: the streaming conversion
//   - compress: zstd, s2 and lz4 codecs for compressed logs
package bblconv

import (
	"bytes"
	"context"
	"io"

	"github.com/arloliu/bblconv/blackbox"
	"github.com/arloliu/bblconv/converter"
	"github.com/arloliu/bblconv/internal/hash"
)

// NewConverter creates a reusable converter.
//
// Available options:
//   - converter.WithOrientation(format.OrientationGyroAccel|OrientationGyroOnly)
//   - converter.WithDebugMode(format.DebugGyroScaled|DebugESCRPM)
//   - converter.WithGyroSource(format.GyroFiltered|GyroUnfiltered)
//   - converter.WithGyroScale(scale)
//   - converter.WithEngine(endian.GetLittleEndianEngine()|GetBigEndianEngine())
//   - converter.WithLogger(logger)
//   - converter.WithProgress(fn, interval)
func NewConverter(opts ...converter.Option) (*converter.Converter, error) {
	return converter.New(opts...)
}

// Convert streams the SLF log in r to w as a blackbox log.
//
// The input size is unknown to the converter, so progress callbacks receive a
// negative total. Use converter.Converter.Convert directly to pass one.
func Convert(ctx context.Context, r io.Reader, w io.Writer, opts ...converter.Option) (converter.Summary, error) {
	c, err := converter.New(opts...)
	if err != nil {
		return converter.Summary{}, err
	}

	return c.Convert(ctx, r, -1, w)
}

// ConvertBytes converts an in-memory SLF log.
func ConvertBytes(data []byte, opts ...converter.Option) ([]byte, converter.Summary, error) {
	c, err := converter.New(opts...)
	if err != nil {
		return nil, converter.Summary{}, err
	}

	var out bytes.Buffer
	out.Grow(len(data))

	sum, err := c.Convert(context.Background(), bytes.NewReader(data), int64(len(data)), &out)
	if err != nil {
		return nil, sum, err
	}

	return out.Bytes(), sum, nil
}

// ReadSessions decodes every session of a blackbox log.
func ReadSessions(r io.Reader) ([]blackbox.Session, error) {
	return blackbox.ReadAll(r)
}

// Digest returns the xxHash64 of data, the content identity used to detect
// duplicate logs.
func Digest(data []byte) uint64 {
	return hash.Sum(data)
}
