package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-facecam/internal/config"
	"github.com/teslashibe/go-facecam/internal/log"
)

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{config.EnvCascade, config.EnvDevice, config.EnvWindow, config.EnvPreviewPort, config.EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	clearEnv(t)

	opts, err := parseFlags(nil)
	require.NoError(t, err)
	require.Equal(t, "haarcascade_frontalface_default.xml", opts.recognizer.Detection.CascadePath)
	require.Equal(t, 0, opts.recognizer.Camera.DeviceIndex)
	require.Equal(t, "Video", opts.recognizer.WindowTitle)
	require.Equal(t, 1, opts.recognizer.KeyDelay)
	require.Equal(t, 1.1, opts.recognizer.Detection.ScaleFactor)
	require.Equal(t, 5, opts.recognizer.Detection.MinNeighbors)
	require.Equal(t, 30, opts.recognizer.Detection.MinSize)
	require.Empty(t, opts.previewPort)
	require.Equal(t, "info", opts.logLevel)
}

func TestParseFlags_EnvThenFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvCascade, "env.xml")
	t.Setenv(config.EnvDevice, "1")
	t.Setenv(config.EnvPreviewPort, "9000")

	opts, err := parseFlags(nil)
	require.NoError(t, err)
	require.Equal(t, "env.xml", opts.recognizer.Detection.CascadePath)
	require.Equal(t, 1, opts.recognizer.Camera.DeviceIndex)
	require.Equal(t, "9000", opts.previewPort)

	opts, err = parseFlags([]string{"--cascade", "flag.xml", "--device", "2", "--preset", "vga"})
	require.NoError(t, err)
	require.Equal(t, "flag.xml", opts.recognizer.Detection.CascadePath)
	require.Equal(t, 2, opts.recognizer.Camera.DeviceIndex)
	require.Equal(t, 640, opts.recognizer.Camera.Width)
	require.Equal(t, 480, opts.recognizer.Camera.Height)
}

func TestParseFlags_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown preset", []string{"--preset", "8k"}},
		{"negative device", []string{"--device", "-1"}},
		{"empty window", []string{"--window", ""}},
		{"positional", []string{"extra"}},
		{"unknown flag", []string{"--nope"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseFlags(tc.args)
			require.Error(t, err)
		})
	}

	t.Setenv(config.EnvDevice, "front")
	_, err := parseFlags(nil)
	require.Error(t, err)
}

func TestSetup_Help(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	for _, arg := range []string{"--help", "-h"} {
		_, err := setup([]string{arg})
		require.ErrorIs(t, err, pflag.ErrHelp)
		require.Equal(t, exitOK, setupExitCode(err))
	}
}

func TestSetup_MalformedDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FACECAM-WINDOW=Preview\n"), 0o600))
	chdir(t, dir)

	_, err := setup(nil)
	require.Error(t, err)
	require.Equal(t, exitUsage, setupExitCode(err))
}

func TestSetup_DotEnvApplied(t *testing.T) {
	clearEnv(t)
	os.Unsetenv(config.EnvWindow)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FACECAM_WINDOW=Preview\n"), 0o600))
	chdir(t, dir)

	opts, err := setup(nil)
	require.NoError(t, err)
	require.Equal(t, "Preview", opts.recognizer.WindowTitle)
}

func TestSetupExitCode(t *testing.T) {
	require.Equal(t, exitOK, setupExitCode(pflag.ErrHelp))
	require.Equal(t, exitUsage, setupExitCode(errors.New("bad flag")))
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestCloseLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "debug", true)

	closeLogged(closerFunc(func() error { return nil }), "recognizer", logger)
	require.Zero(t, buf.Len())

	closeLogged(closerFunc(func() error { return errors.New("mat already freed") }), "recognizer", logger)
	require.Contains(t, buf.String(), `"msg":"close failed"`)
	require.Contains(t, buf.String(), `"component":"recognizer"`)
	require.Contains(t, buf.String(), "mat already freed")
}
