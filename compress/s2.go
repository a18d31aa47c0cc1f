package compress

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/klauspost/compress/s2"
)

var s2WriterPool = sync.Pool{
	New: func() any {
		return s2.NewWriter(nil, s2.WriterConcurrency(1), s2.WriterBetterCompression())
	},
}

// S2Compressor reads and writes the S2 stream format, the format of ".s2"
// files. Snappy framed streams are accepted on decompression as well.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses data into an S2 stream.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	buf.Grow(s2.MaxEncodedLen(len(data)) / 2)

	zw, _ := s2WriterPool.Get().(*s2.Writer)
	defer s2WriterPool.Put(zw)
	zw.Reset(&buf)

	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("s2 compression failed: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("s2 compression failed: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress decompresses an S2 or Snappy stream.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	zr := s2.NewReader(bytes.NewReader(data), s2.ReaderMaxBlockSize(4<<20))

	return readAllLimited(zr, len(data)*4, "s2")
}
