package blackbox

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arloliu/bblconv/encoding"
	"github.com/arloliu/bblconv/errs"
	"github.com/arloliu/bblconv/format"
	"github.com/arloliu/bblconv/schema"
)

// Header is a parsed session header.
type Header struct {
	// Lines holds every header line in input order, duplicates included.
	Lines []HeaderLine
	// Fields are the intra frame field names.
	Fields []string
	// Signed holds the first "Field I signed" declaration.
	Signed []bool
	// Encodings are the intra frame field encodings.
	Encodings []format.EncodingKind
	// DebugMode is the declared debug mode, zero when absent.
	DebugMode format.DebugMode
	// GyroScale is the declared gyro scale, zero when absent.
	GyroScale float32
}

// Get returns the value of the first line with the given key.
func (h *Header) Get(key string) (string, bool) {
	for _, line := range h.Lines {
		if line.Key == key {
			return line.Value, true
		}
	}

	return "", false
}

// FieldIndex returns the position of the named field, or -1.
func (h *Header) FieldIndex(name string) int {
	for i, f := range h.Fields {
		if f == name {
			return i
		}
	}

	return -1
}

// MatchesSchema reports whether the header declares exactly the field table of
// the schema package, in order and with the same encodings.
func (h *Header) MatchesSchema() bool {
	if len(h.Fields) != schema.FieldCount || len(h.Encodings) != schema.FieldCount {
		return false
	}
	for i := range schema.Fields {
		if h.Fields[i] != schema.Fields[i].Name || h.Encodings[i] != schema.Fields[i].IEncoding() {
			return false
		}
	}

	return true
}

// Reader parses blackbox logs written by Writer.
//
// Call NextSession to read a header, then NextFrame until it returns io.EOF at
// the session's end marker. NextSession skips whatever is left of the current
// session.
type Reader struct {
	br     *bufio.Reader
	header *Header
	open   bool
	offset int64
	varint [encoding.MaxVarintLen32]byte
}

// NewReader creates a reader for r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Header returns the header of the current session, or nil before the first
// NextSession call.
func (r *Reader) Header() *Header {
	return r.header
}

// NextSession reads the next session header. It returns io.EOF when the input
// has no more sessions.
func (r *Reader) NextSession() (*Header, error) {
	for r.open {
		if _, err := r.NextFrame(nil); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}

			return nil, err
		}
	}

	if _, err := r.br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		return nil, err
	}

	h := &Header{}
	for {
		next, err := r.br.Peek(1)
		if errors.Is(err, io.EOF) || (err == nil && next[0] != 'H') {
			break
		}
		if err != nil {
			return nil, err
		}

		line, err := r.br.ReadString('\n')
		r.offset += int64(len(line))
		if err != nil {
			return nil, fmt.Errorf("%w: unterminated line at offset %d", errs.ErrInvalidHeader, r.offset)
		}

		hl, err := parseHeaderLine(line)
		if err != nil {
			return nil, err
		}
		h.Lines = append(h.Lines, hl)
	}

	if err := h.resolve(); err != nil {
		return nil, err
	}

	r.header = h
	r.open = true

	return h, nil
}

// NextFrame decodes the next intra frame of the current session into dst,
// which is grown as needed, and returns it. At the session's end marker it
// returns io.EOF. Input that ends without an end marker yields
// io.ErrUnexpectedEOF.
func (r *Reader) NextFrame(dst []int64) ([]int64, error) {
	if !r.open {
		return nil, io.EOF
	}

	tag, err := r.br.ReadByte()
	if err != nil {
		r.open = false
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}

		return nil, err
	}
	r.offset++

	switch tag {
	case FrameTagIntra:
		return r.readIntra(dst[:0])
	case EndMarker[0]:
		r.open = false
		if err := r.readEndMarker(); err != nil {
			return nil, err
		}

		return nil, io.EOF
	default:
		r.open = false
		return nil, fmt.Errorf("%w: 0x%02x at offset %d", errs.ErrUnexpectedFrameType, tag, r.offset-1)
	}
}

func (r *Reader) readIntra(dst []int64) ([]int64, error) {
	for i, kind := range r.header.Encodings {
		var v int64
		switch kind {
		case format.EncodingUnsignedVB:
			u, err := r.readUnsigned()
			if err != nil {
				return nil, fmt.Errorf("field %d: %w", i, err)
			}
			v = int64(u)
		case format.EncodingSignedVB:
			u, err := r.readUnsigned()
			if err != nil {
				return nil, fmt.Errorf("field %d: %w", i, err)
			}
			v = int64(encoding.UnZigZag(u))
		case format.EncodingNull:
		default:
			return nil, fmt.Errorf("field %d: %w: %s", i, errs.ErrUnsupportedEncoding, kind)
		}
		dst = append(dst, v)
	}

	return dst, nil
}

func (r *Reader) readUnsigned() (uint32, error) {
	n := 0
	for {
		b, err := r.br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, errs.ErrVarintTruncated
			}

			return 0, err
		}
		r.offset++
		r.varint[n] = b
		n++

		if b&0x80 == 0 || n == len(r.varint) {
			break
		}
	}

	v, _, err := encoding.ReadUnsigned(r.varint[:n])

	return v, err
}

func (r *Reader) readEndMarker() error {
	rest := make([]byte, len(EndMarker)-1)
	n, err := io.ReadFull(r.br, rest)
	r.offset += int64(n)
	if err != nil || !bytes.Equal(rest, EndMarker[1:]) {
		return fmt.Errorf("%w: malformed end marker at offset %d", errs.ErrUnexpectedFrameType, r.offset-int64(n)-1)
	}

	return nil
}

func parseHeaderLine(line string) (HeaderLine, error) {
	body, ok := strings.CutPrefix(strings.TrimSuffix(line, "\n"), headerLinePrefix)
	if !ok {
		return HeaderLine{}, fmt.Errorf("%w: %q", errs.ErrInvalidHeader, line)
	}

	key, value, ok := strings.Cut(body, string(headerKeyValueDelim))
	if !ok {
		return HeaderLine{}, fmt.Errorf("%w: missing ':' in %q", errs.ErrInvalidHeader, line)
	}

	return HeaderLine{Key: key, Value: value}, nil
}

func (h *Header) resolve() error {
	names, ok := h.Get(KeyFieldIName)
	if !ok {
		return fmt.Errorf("%w: missing %q", errs.ErrInvalidHeader, KeyFieldIName)
	}
	h.Fields = strings.Split(names, ",")

	encodings, ok := h.Get(KeyFieldIEncoding)
	if !ok {
		return fmt.Errorf("%w: missing %q", errs.ErrInvalidHeader, KeyFieldIEncoding)
	}
	kinds, err := parseIntList(encodings)
	if err != nil {
		return err
	}
	if len(kinds) != len(h.Fields) {
		return fmt.Errorf("%w: %d encodings for %d fields", errs.ErrInvalidFieldCount, len(kinds), len(h.Fields))
	}
	h.Encodings = make([]format.EncodingKind, len(kinds))
	for i, k := range kinds {
		h.Encodings[i] = format.EncodingKind(k) //nolint:gosec
	}

	if signed, ok := h.Get(KeyFieldISigned); ok {
		flags, err := parseIntList(signed)
		if err != nil {
			return err
		}
		h.Signed = make([]bool, len(flags))
		for i, f := range flags {
			h.Signed[i] = f != 0
		}
	}

	if v, ok := h.Get(KeyDebugMode); ok {
		mode, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return fmt.Errorf("%w: %s %q", errs.ErrInvalidHeader, KeyDebugMode, v)
		}
		h.DebugMode = format.DebugMode(mode)
	}

	if v, ok := h.Get(KeyGyroScale); ok {
		scale, err := ParseGyroScale(v)
		if err != nil {
			return err
		}
		h.GyroScale = scale
	}

	return nil
}

func parseIntList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: list item %q", errs.ErrInvalidHeader, p)
		}
		out[i] = v
	}

	return out, nil
}

// Session is one fully read session.
type Session struct {
	Header *Header
	Frames [][]int64
	// Complete is false when the input ended before the session's end marker.
	Complete bool
}

// ReadAll reads every session from r.
func ReadAll(r io.Reader) ([]Session, error) {
	rd := NewReader(r)

	var sessions []Session
	for {
		h, err := rd.NextSession()
		if errors.Is(err, io.EOF) {
			return sessions, nil
		}
		if err != nil {
			return sessions, err
		}

		s := Session{Header: h}
		for {
			frame, err := rd.NextFrame(nil)
			if errors.Is(err, io.EOF) {
				s.Complete = true
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			if err != nil {
				return append(sessions, s), err
			}
			s.Frames = append(s.Frames, frame)
		}
		sessions = append(sessions, s)
	}
}
