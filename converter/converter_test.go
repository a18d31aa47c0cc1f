package converter

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arloliu/bblconv/blackbox"
	"github.com/arloliu/bblconv/endian"
	"github.com/arloliu/bblconv/errs"
	"github.com/arloliu/bblconv/format"
	"github.com/arloliu/bblconv/frame"
	"github.com/arloliu/bblconv/internal/hash"
	"github.com/arloliu/bblconv/schema"
)

func slfLog(iterations ...uint32) []byte {
	var buf []byte
	for _, it := range iterations {
		buf = frame.AppendFrame(buf, frame.Record{Iteration: it}, endian.GetLittleEndianEngine())
	}

	return buf
}

func convert(t *testing.T, input []byte, opts ...Option) ([]byte, Summary) {
	t.Helper()

	c, err := New(opts...)
	require.NoError(t, err)

	var out bytes.Buffer
	sum, err := c.Convert(context.Background(), bytes.NewReader(input), int64(len(input)), &out)
	require.NoError(t, err)

	return out.Bytes(), sum
}

func iterationsOf(t *testing.T, output []byte) [][]int64 {
	t.Helper()

	sessions, err := blackbox.ReadAll(bytes.NewReader(output))
	require.NoError(t, err)

	out := make([][]int64, 0, len(sessions))
	for _, s := range sessions {
		require.True(t, s.Complete)
		its := []int64{}
		for _, f := range s.Frames {
			its = append(its, f[schema.LoopIteration])
		}
		out = append(out, its)
	}

	return out
}

func TestConvert_TwoRecordGolden(t *testing.T) {
	output, sum := convert(t, slfLog(0, 1))

	header := blackbox.AppendHeader(nil, blackbox.DefaultHeaderConfig())
	want := append([]byte{}, header...)
	want = append(want, 'I')
	want = append(want, make([]byte, schema.FieldCount)...)
	want = append(want, 'I', 0x01)
	want = append(want, make([]byte, schema.FieldCount-1)...)
	want = append(want, blackbox.EndMarker...)

	if diff := cmp.Diff(want, output); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, int64(2), sum.Records)
	require.Equal(t, 1, sum.Sessions)
	require.Equal(t, frame.EndCompleteFrame, sum.End)
	require.Equal(t, int64(2*frame.FrameSize), sum.BytesIn)
	require.Equal(t, int64(len(want)), sum.BytesOut)
	require.Equal(t, hash.Sum(want), sum.Digest)
	require.Equal(t, uint32(0), sum.FirstIteration)
	require.Equal(t, uint32(1), sum.LastIteration)
	require.NoError(t, sum.Err())
}

func TestConvert_SessionBoundary(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	output, sum := convert(t, slfLog(5, 6, 7, 2, 3), WithLogger(zap.New(core)))

	require.Equal(t, [][]int64{{5, 6, 7}, {2, 3}}, iterationsOf(t, output))
	require.Equal(t, 2, sum.Sessions)
	require.Equal(t, int64(5), sum.Records)
	require.Equal(t, 2, bytes.Count(output, blackbox.EndMarker))

	entries := logs.FilterMessageSnippet("new session").All()
	require.Len(t, entries, 1)
	require.Equal(t, uint32(7), entries[0].ContextMap()["previous_iteration"])
	require.Equal(t, uint32(2), entries[0].ContextMap()["iteration"])
}

func TestConvert_EqualIterationStaysInSession(t *testing.T) {
	output, sum := convert(t, slfLog(3, 3, 4))

	require.Equal(t, [][]int64{{3, 3, 4}}, iterationsOf(t, output))
	require.Equal(t, 1, sum.Sessions)
}

func TestConvert_Resync(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	input := append(slfLog(1, 2, 3), 0xde, 0xad, 0xbe, 0xef)
	input = append(input, slfLog(4, 5, 6)...)

	output, sum := convert(t, input, WithLogger(zap.New(core)))

	require.Equal(t, [][]int64{{1, 2, 4, 5, 6}}, iterationsOf(t, output))
	require.Equal(t, 1, sum.CorruptFrames)
	require.Equal(t, 1, logs.FilterMessageSnippet("corrupt frame").Len())
	require.NoError(t, sum.Err())
}

func TestConvert_TruncatedTail(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	input := append(slfLog(1, 2, 3), frame.Marker...)
	input = append(input, make([]byte, 40)...)

	output, sum := convert(t, input, WithLogger(zap.New(core)))

	require.Equal(t, [][]int64{{1, 2, 3}}, iterationsOf(t, output))
	require.Equal(t, frame.EndPartialFrame, sum.End)
	require.Equal(t, 40, sum.PartialBytes)
	require.ErrorIs(t, sum.Err(), errs.ErrTruncatedTail)
	require.Equal(t, 1, logs.FilterMessageSnippet("partial frame").Len())
}

func TestConvert_NoMarker(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	output, sum := convert(t, []byte("no markers in here, only FRAM and FRAm"), WithLogger(zap.New(core)))

	header := blackbox.AppendHeader(nil, blackbox.DefaultHeaderConfig())
	require.Equal(t, append(header, blackbox.EndMarker...), output)
	require.Equal(t, int64(0), sum.Records)
	require.Equal(t, 1, sum.Sessions)
	require.Equal(t, frame.EndNoMarker, sum.End)
	require.ErrorIs(t, sum.Err(), errs.ErrNoMarkerFound)
	require.Equal(t, 1, logs.FilterMessageSnippet("no FRAME marker").Len())
}

func TestConvert_EmptyInput(t *testing.T) {
	output, sum := convert(t, nil)

	require.ErrorIs(t, sum.Err(), errs.ErrNoMarkerFound)
	require.True(t, bytes.HasSuffix(output, blackbox.EndMarker))
}

func TestConvert_Modes(t *testing.T) {
	rec := frame.Record{
		Iteration: 0,
		Gyro:      [3]int16{1, 2, 3},
		Accel:     [3]int16{4, 5, 6},
		Debug:     [4]int16{7, 8, 9, 10},
		MotorHz:   [4]int16{11, 12, 13, 14},
	}
	input := frame.AppendFrame(nil, rec, endian.GetLittleEndianEngine())

	output, _ := convert(t, input,
		WithOrientation(format.OrientationGyroOnly),
		WithDebugMode(format.DebugESCRPM),
		WithGyroSource(format.GyroUnfiltered),
		WithGyroScale(0.25),
	)

	sessions, err := blackbox.ReadAll(bytes.NewReader(output))
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	h := sessions[0].Header
	require.Equal(t, format.DebugESCRPM, h.DebugMode)
	require.Equal(t, float32(0.25), h.GyroScale)

	f := sessions[0].Frames[0]
	require.Equal(t, []int64{7, 8, 9}, f[schema.GyroADC0:schema.GyroADC2+1])
	require.Equal(t, []int64{0, 0, 2048}, f[schema.AccSmooth0:schema.AccSmooth2+1])
	require.Equal(t, []int64{11, 12, 13, 14}, f[schema.Debug0:schema.Debug3+1])
}

func TestConvert_BigEndianInput(t *testing.T) {
	engine := endian.GetBigEndianEngine()
	input := frame.AppendFrame(nil, frame.Record{Iteration: 0x01020304}, engine)

	output, sum := convert(t, input, WithEngine(engine))
	require.Equal(t, int64(1), sum.Records)
	require.Equal(t, [][]int64{{0x01020304}}, iterationsOf(t, output))
}

func TestConvert_Progress(t *testing.T) {
	its := make([]uint32, 4500)
	for i := range its {
		its[i] = uint32(i)
	}
	input := slfLog(its...)

	var calls [][2]int64
	progress := func(consumed, total int64) {
		calls = append(calls, [2]int64{consumed, total})
	}

	_, sum := convert(t, input, WithProgress(progress, 0), WithReadBufferSize(4096))

	require.Equal(t, int64(4500), sum.Records)
	require.Len(t, calls, 3)
	for i := 1; i < len(calls); i++ {
		require.GreaterOrEqual(t, calls[i][0], calls[i-1][0])
	}
	require.Equal(t, [2]int64{int64(len(input)), int64(len(input))}, calls[2])
}

func TestConvert_Cancelled(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := slfLog(1, 2, 3)
	var out bytes.Buffer
	sum, err := c.Convert(ctx, bytes.NewReader(input), int64(len(input)), &out)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, int64(0), sum.Records)
	require.True(t, bytes.HasSuffix(out.Bytes(), blackbox.EndMarker))
}

type failingWriter struct{}

var errSink = errors.New("sink failed")

func (failingWriter) Write([]byte) (int, error) { return 0, errSink }

func TestConvert_WriteError(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	input := slfLog(1, 2, 3)
	_, err = c.Convert(context.Background(), bytes.NewReader(input), int64(len(input)), failingWriter{})
	require.ErrorIs(t, err, errSink)
}

func TestConvert_ReusableConverter(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	input := slfLog(5, 6, 7, 2)
	var first, second bytes.Buffer
	s1, err := c.Convert(context.Background(), bytes.NewReader(input), -1, &first)
	require.NoError(t, err)
	s2, err := c.Convert(context.Background(), bytes.NewReader(input), -1, &second)
	require.NoError(t, err)

	require.Equal(t, first.Bytes(), second.Bytes())
	require.Equal(t, s1.Sessions, s2.Sessions)
	require.Equal(t, s1.Digest, s2.Digest)
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"orientation", WithOrientation(9)},
		{"debug mode", WithDebugMode(3)},
		{"gyro source", WithGyroSource(5)},
		{"gyro scale", WithGyroScale(0)},
		{"engine", WithEngine(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			require.ErrorIs(t, err, errs.ErrInvalidConfig)
		})
	}
}
