// Package hash computes the xxHash64 content digests bblconv uses to spot
// duplicate input logs and to fingerprint converted output.
package hash

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Sum computes the xxHash64 of data.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Hex formats a digest as 16 lowercase hex digits.
func Hex(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}

// Writer passes writes through to an underlying writer while hashing and
// counting the bytes that were accepted.
type Writer struct {
	w io.Writer
	d *xxhash.Digest
	n int64
}

// NewWriter wraps w. A nil w only hashes.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, d: xxhash.New()}
}

// Write implements io.Writer.
func (hw *Writer) Write(p []byte) (int, error) {
	n := len(p)
	var err error
	if hw.w != nil {
		n, err = hw.w.Write(p)
	}

	_, _ = hw.d.Write(p[:n])
	hw.n += int64(n)

	return n, err
}

// Sum64 returns the digest of everything written so far.
func (hw *Writer) Sum64() uint64 {
	return hw.d.Sum64()
}

// Count returns the number of bytes written so far.
func (hw *Writer) Count() int64 {
	return hw.n
}

// SumReader hashes everything r yields and returns the digest with the byte count.
func SumReader(r io.Reader) (uint64, int64, error) {
	d := xxhash.New()
	n, err := io.Copy(d, r)
	if err != nil {
		return 0, n, err
	}

	return d.Sum64(), n, nil
}
