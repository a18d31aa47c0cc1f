package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/bblconv/endian"
	"github.com/arloliu/bblconv/errs"
	"github.com/arloliu/bblconv/frame"
)

func slfLog(iterations ...uint32) []byte {
	var buf []byte
	for _, it := range iterations {
		buf = frame.AppendFrame(buf, frame.Record{Iteration: it}, endian.GetLittleEndianEngine())
	}

	return buf
}

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).RunContext(context.Background(), append([]string{"bblconv"}, args...))

	return stdout.String(), stderr.String(), err
}

func outputs(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names
}

func TestConvertDirectory(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "LOG1.TXT"), slfLog(0, 1, 2), 0o644))

	stdout, _, err := runApp(t, "--dir", inDir, "--out", outDir, "--no-progress", "--log-level", "error")
	require.NoError(t, err)
	require.Equal(t, "all done\n", stdout)

	names := outputs(t, outDir)
	require.Len(t, names, 1)
	require.True(t, strings.HasSuffix(names[0], "  SLF4_1.bbl"), names[0])
}

func TestConvertSubcommand(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "LOG2.TXT"), slfLog(0, 1), 0o644))

	stdout, _, err := runApp(t, "convert", "--dir", inDir, "--out", outDir, "--no-progress", "--compress", "s2")
	require.NoError(t, err)
	require.Equal(t, "all done\n", stdout)

	names := outputs(t, outDir)
	require.Len(t, names, 1)
	require.True(t, strings.HasSuffix(names[0], "  SLF4_2.bbl.s2"), names[0])
}

func TestConvertFilesWithConfig(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	input := filepath.Join(inDir, "LOG3.TXT")
	require.NoError(t, os.WriteFile(input, slfLog(4, 5), 0o644))

	cfgPath := filepath.Join(t.TempDir(), "bblconv.yaml")
	cfg := "prefix: cfg_\ncompression: zstd\nprogress: false\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	stdout, _, err := runApp(t, "--config", cfgPath, "--out", outDir, "--prefix", "flag_", input)
	require.NoError(t, err)
	require.Equal(t, "all done\n", stdout)

	names := outputs(t, outDir)
	require.Len(t, names, 1)
	require.True(t, strings.HasSuffix(names[0], "  flag_3.bbl.zst"), names[0])

	stdout, _, err = runApp(t, "inspect", filepath.Join(outDir, names[0]))
	require.NoError(t, err)
	require.Contains(t, stdout, "4..5")
	require.Contains(t, stdout, "true")
}

func TestConvertFailedFileStillSucceeds(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "LOG1.TXT.zst"), []byte("garbage"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "LOG2.TXT"), slfLog(0), 0o644))

	stdout, stderr, err := runApp(t, "--dir", inDir, "--out", outDir, "--no-progress")
	require.NoError(t, err)
	require.Equal(t, "all done\n", stdout)
	require.Contains(t, stderr, "cannot read input")
	require.Len(t, outputs(t, outDir), 1)
}

func TestConvertInvalidConfig(t *testing.T) {
	tests := [][]string{
		{"--compress", "bogus"},
		{"--orientation", "sideways"},
		{"--out", filepath.Join(t.TempDir(), "missing")},
		{"--config", filepath.Join(t.TempDir(), "missing.yaml")},
		{"--gyro-scale", "-2"},
	}

	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			stdout, _, err := runApp(t, append(args, "--dir", t.TempDir(), "--no-progress")...)
			require.ErrorIs(t, err, errs.ErrInvalidConfig)
			require.NotContains(t, stdout, "all done")
		})
	}
}

func TestInspectErrors(t *testing.T) {
	_, _, err := runApp(t, "inspect")
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, _, err = runApp(t, "inspect", filepath.Join(t.TempDir(), "missing.bbl"))
	require.Error(t, err)
}
