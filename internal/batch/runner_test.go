package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arloliu/bblconv/blackbox"
	"github.com/arloliu/bblconv/compress"
	"github.com/arloliu/bblconv/converter"
	"github.com/arloliu/bblconv/endian"
	"github.com/arloliu/bblconv/errs"
	"github.com/arloliu/bblconv/format"
	"github.com/arloliu/bblconv/frame"
	"github.com/arloliu/bblconv/schema"
)

var fixedTime = time.Date(2024, 5, 1, 12, 30, 45, 0, time.Local)

const stamp = "2024-05-01  12'30'45  "

func slfLog(iterations ...uint32) []byte {
	var buf []byte
	for _, it := range iterations {
		buf = frame.AppendFrame(buf, frame.Record{Iteration: it}, endian.GetLittleEndianEngine())
	}

	return buf
}

func writeInput(t *testing.T, dir, name string, data []byte) {
	t.Helper()

	in, ok := ParseInputName(name)
	require.True(t, ok, name)

	codec, err := compress.GetCodec(in.Compression)
	require.NoError(t, err)
	packed, err := codec.Compress(data)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), packed, 0o644))
}

func readOutput(t *testing.T, path string) []blackbox.Session {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	codec, _ := compress.CodecForPath(path)
	plain, err := codec.Decompress(data)
	require.NoError(t, err)

	sessions, err := blackbox.ReadAll(bytes.NewReader(plain))
	require.NoError(t, err)

	return sessions
}

func newRunner(t *testing.T, outDir string, opts ...Option) *Runner {
	t.Helper()

	base := []Option{
		WithOutputDir(outDir),
		WithClock(func() time.Time { return fixedTime }),
	}
	r, err := New(append(base, opts...)...)
	require.NoError(t, err)

	return r
}

func outputFiles(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names
}

type fakeProgress struct {
	mu      sync.Mutex
	started []string
	updates int
	success []string
	failed  []string
}

type fakeTask struct {
	p *fakeProgress
}

func (p *fakeProgress) Start(title string, _ int64) ProgressTask {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = append(p.started, title)

	return fakeTask{p: p}
}

func (t fakeTask) Update(int64) {
	t.p.mu.Lock()
	defer t.p.mu.Unlock()
	t.p.updates++
}

func (t fakeTask) Success(msg string) {
	t.p.mu.Lock()
	defer t.p.mu.Unlock()
	t.p.success = append(t.p.success, msg)
}

func (t fakeTask) Fail(msg string) {
	t.p.mu.Lock()
	defer t.p.mu.Unlock()
	t.p.failed = append(t.p.failed, msg)
}

func TestRunner_ConvertsDirectory(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	writeInput(t, inDir, "LOG001.TXT", slfLog(0, 1, 2))
	writeInput(t, inDir, "LOG002.TXT.zst", slfLog(5, 6, 1))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "readme.md"), []byte("hi"), 0o644))

	progress := &fakeProgress{}
	r := newRunner(t, outDir, WithProgress(progress))

	report, err := r.Run(context.Background(), inDir)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	require.Equal(t, 2, report.Converted())
	require.Zero(t, report.Failed())
	require.Zero(t, report.Skipped())

	require.ElementsMatch(t, []string{stamp + "SLF4_001.bbl", stamp + "SLF4_002.bbl"}, outputFiles(t, outDir))

	first := readOutput(t, filepath.Join(outDir, stamp+"SLF4_001.bbl"))
	require.Len(t, first, 1)
	require.Len(t, first[0].Frames, 3)

	second := readOutput(t, report.Results[1].Output)
	require.Len(t, second, 2)
	require.Equal(t, int64(1), second[1].Frames[0][schema.LoopIteration])
	require.Equal(t, 2, report.Results[1].Summary.Sessions)

	require.Equal(t, []string{"LOG001.TXT", "LOG002.TXT.zst"}, progress.started)
	require.Len(t, progress.success, 2)
	require.Empty(t, progress.failed)
	require.Positive(t, progress.updates)
}

func TestRunner_SkipsDuplicateContent(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	data := slfLog(0, 1, 2, 3)
	writeInput(t, inDir, "LOG001.TXT", data)
	writeInput(t, inDir, "LOG002.TXT", data)
	writeInput(t, inDir, "LOG003.TXT.lz4", data)
	writeInput(t, inDir, "LOG004.TXT", slfLog(9))

	core, logs := observer.New(zapcore.InfoLevel)
	r := newRunner(t, outDir, WithLogger(zap.New(core)))

	report, err := r.Run(context.Background(), inDir)
	require.NoError(t, err)
	require.Equal(t, 2, report.Converted())
	require.Equal(t, 2, report.Skipped())

	require.Equal(t, filepath.Join(inDir, "LOG001.TXT"), report.Results[1].DuplicateOf)
	require.Equal(t, filepath.Join(inDir, "LOG001.TXT"), report.Results[2].DuplicateOf)
	require.Empty(t, report.Results[2].Output)
	require.Equal(t, report.Results[0].Digest, report.Results[2].Digest)

	require.ElementsMatch(t, []string{stamp + "SLF4_001.bbl", stamp + "SLF4_004.bbl"}, outputFiles(t, outDir))
	require.Equal(t, 2, logs.FilterMessage("duplicate input skipped").Len())
}

func TestRunner_FailureDoesNotStopBatch(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "LOG001.TXT.zst"), []byte("not zstd at all"), 0o644))
	writeInput(t, inDir, "LOG002.TXT", slfLog(0, 1))

	progress := &fakeProgress{}
	r := newRunner(t, outDir, WithProgress(progress))

	report, err := r.Run(context.Background(), inDir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "LOG001.TXT.zst")

	require.Equal(t, 1, report.Failed())
	require.Equal(t, 1, report.Converted())
	require.Error(t, report.Results[0].Err)
	require.NoError(t, report.Results[1].Err)

	require.Equal(t, []string{stamp + "SLF4_002.bbl"}, outputFiles(t, outDir))
	require.Equal(t, []string{"LOG002.TXT"}, progress.started)
}

func TestRunner_CompressedOutput(t *testing.T) {
	for _, ct := range []format.CompressionType{format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		t.Run(ct.String(), func(t *testing.T) {
			inDir, outDir := t.TempDir(), t.TempDir()
			writeInput(t, inDir, "LOG7.TXT", slfLog(0, 1, 2, 0, 1))

			r := newRunner(t, outDir, WithOutputCompression(ct), WithPrefix("quad_"))

			report, err := r.Run(context.Background(), inDir)
			require.NoError(t, err)

			want := stamp + "quad_7.bbl" + ct.Extension()
			require.Equal(t, []string{want}, outputFiles(t, outDir))
			require.Equal(t, filepath.Join(outDir, want), report.Results[0].Output)

			sessions := readOutput(t, report.Results[0].Output)
			require.Len(t, sessions, 2)
			require.Len(t, sessions[0].Frames, 3)
			require.Len(t, sessions[1].Frames, 2)
		})
	}
}

func TestRunner_ConverterOptions(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	writeInput(t, inDir, "LOG1.TXT", slfLog(0))

	r := newRunner(t, outDir, WithConverterOptions(converter.WithDebugMode(format.DebugESCRPM)))

	report, err := r.Run(context.Background(), inDir)
	require.NoError(t, err)

	sessions := readOutput(t, report.Results[0].Output)
	require.Len(t, sessions, 1)
	require.Equal(t, format.DebugESCRPM, sessions[0].Header.DebugMode)
}

func TestRunner_NoInputs(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := newRunner(t, t.TempDir(), WithLogger(zap.New(core)))

	report, err := r.Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	require.Empty(t, report.Results)
	require.Equal(t, 1, logs.FilterMessage("no LOG*.TXT files found").Len())
}

func TestRunner_Cancelled(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	writeInput(t, inDir, "LOG1.TXT", slfLog(0, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newRunner(t, outDir)
	report, err := r.Run(ctx, inDir)
	require.True(t, errors.Is(err, context.Canceled))
	require.Empty(t, report.Results)
	require.Empty(t, outputFiles(t, outDir))
}

func TestRunner_SameInputTwice(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	writeInput(t, inDir, "LOG1.TXT", slfLog(0, 1))
	in := InputFromPath(filepath.Join(inDir, "LOG1.TXT"))

	r := newRunner(t, outDir)
	report, err := r.RunInputs(context.Background(), []Input{in, in})
	require.ErrorIs(t, err, errs.ErrInputAlreadyTracked)
	require.Equal(t, 1, report.Converted())
	require.Equal(t, 1, report.Failed())
}

func TestRunner_InvalidOptions(t *testing.T) {
	_, err := New(WithOutputDir(filepath.Join(t.TempDir(), "missing")))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = New(WithOutputDir(file))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = New(WithOutputCompression(format.CompressionType(99)))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)

	_, err = New(WithConverterOptions(converter.WithGyroScale(-1)))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}
