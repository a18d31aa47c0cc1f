package compress

import (
	"fmt"
	"path/filepath"

	"github.com/arloliu/bblconv/errs"
	"github.com/arloliu/bblconv/format"
)

// maxDecompressedSize bounds the output of a single Decompress call.
const maxDecompressedSize = 1 << 30

// Compressor compresses a whole file body.
type Compressor interface {
	// Compress compresses data and returns the compressed result in the
	// algorithm's standard file format.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	//   - Internal encoders are pooled and reused
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a whole file body.
//
// Example:
//
//	decompressor := NewZstdCompressor()
//	log, err := decompressor.Decompress(fileBody)
//	if err != nil {
//	    return fmt.Errorf("decompression failed: %w", err)
//	}
//
// Implementations are safe for concurrent use.
type Decompressor interface {
	// Decompress decompresses data produced by the matching Compressor or by
	// the algorithm's reference command line tool.
	//
	// Error conditions:
	//   - Returns error if data is corrupted or truncated
	//   - Returns error if data was compressed with another algorithm
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats describes one compression, for logging.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used.
	Algorithm format.CompressionType

	// OriginalSize is the size of input data before compression.
	OriginalSize int64

	// CompressedSize is the size of data after compression.
	CompressedSize int64
}

// NewCompressionStats builds the stats for a compression of original into
// compressed bytes.
func NewCompressionStats(algorithm format.CompressionType, original, compressed int) CompressionStats {
	return CompressionStats{
		Algorithm:      algorithm,
		OriginalSize:   int64(original),
		CompressedSize: int64(compressed),
	}
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Values less than 1.0 indicate successful compression.
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage (0-100%).
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec is a factory function that creates a Codec based on the specified compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, or LZ4)
//   - target: Description of target usage (for error messages)
//
// Returns:
//   - Codec: Codec instance for the specified type
//   - error: errs.ErrUnsupportedCompression for an unknown type
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("%w: invalid %s compression: %s", errs.ErrUnsupportedCompression, target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
}

// CodecForPath picks the codec from the file name suffix, e.g. ".zst". Files
// without a known suffix use the no-op codec.
func CodecForPath(path string) (Codec, format.CompressionType) {
	ct := format.CompressionFromExtension(filepath.Ext(path))

	return builtinCodecs[ct], ct
}
