package compress

// ZstdCompressor reads and writes Zstandard frames, the format of ".zst" files.
//
// The default build uses the pure-Go klauspost/compress encoder. Building with
// the "gozstd" tag (cgo required) switches to the libzstd bindings of
// valyala/gozstd. Both produce standard frames and read each other's output.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(data)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
