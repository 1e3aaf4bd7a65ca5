// facecam - webcam face detection demo
//
// Opens the default camera, outlines detected faces in green and shows
// the stream in a window named "Video". Press any key in the window to quit.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/teslashibe/go-facecam/internal/config"
	"github.com/teslashibe/go-facecam/internal/log"
	"github.com/teslashibe/go-facecam/pkg/camera"
	"github.com/teslashibe/go-facecam/pkg/recognizer"
	"github.com/teslashibe/go-facecam/pkg/web"
)

// options are the resolved command line settings.
type options struct {
	recognizer  recognizer.Config
	previewPort string
	logLevel    string
}

// Process exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	opts, err := setup(os.Args[1:])
	if err != nil {
		code := setupExitCode(err)
		if code != exitOK {
			fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		}
		os.Exit(code)
	}

	log.Init(opts.logLevel)
	logger := log.With("run_id", uuid.NewString())

	if err := run(opts, logger); err != nil {
		logger.Error("facecam failed", "error", err)
		os.Exit(exitFailure)
	}
}

func run(opts options, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	recOpts := []recognizer.Option{recognizer.WithLogger(logger)}
	var preview *web.Server
	if opts.previewPort != "" {
		cfg := web.DefaultConfig()
		cfg.Port = opts.previewPort
		preview = web.NewServer(cfg)
		recOpts = append(recOpts, recognizer.WithFrameHook(preview.PublishFrame))
	}

	rec, err := recognizer.New(opts.recognizer, recOpts...)
	if err != nil {
		return err
	}
	defer closeLogged(rec, "recognizer", logger)

	if preview != nil {
		preview.StatsFunc = rec.Stats
		preview.StartAsync(ctx)
	}

	logger.Info("starting face detection, press any key in the window to quit",
		"cascade", opts.recognizer.Detection.CascadePath,
		"device", opts.recognizer.Camera.DeviceIndex)

	if err := rec.StartCamera(ctx); err != nil {
		return err
	}

	stats := rec.Stats()
	logger.Info("stopped", "frames", stats.Frames)
	return nil
}

// closeLogged closes c and logs, rather than drops, a failure.
func closeLogged(c io.Closer, name string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Warn("close failed", "component", name, "error", err)
	}
}

// setup loads an optional .env file and then resolves flags.
func setup(args []string) (options, error) {
	if err := config.LoadDotEnv(); err != nil {
		return options{}, err
	}
	return parseFlags(args)
}

// setupExitCode maps a setup error to a process exit code. Asking for
// help is not a failure.
func setupExitCode(err error) int {
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	return exitUsage
}

// parseFlags resolves settings from defaults, then FACECAM_* environment
// variables, then command line flags.
func parseFlags(args []string) (options, error) {
	cfg := recognizer.DefaultConfig()

	device, err := config.Int(config.EnvDevice, cfg.Camera.DeviceIndex)
	if err != nil {
		return options{}, err
	}

	fs := pflag.NewFlagSet("facecam", pflag.ContinueOnError)
	cascade := fs.String("cascade", config.String(config.EnvCascade, cfg.Detection.CascadePath), "Haar cascade XML file")
	deviceIdx := fs.Int("device", device, "Video capture device index")
	window := fs.String("window", config.String(config.EnvWindow, cfg.WindowTitle), "Output window title")
	preset := fs.String("preset", camera.PresetNative, "Capture size preset: native, vga, 720p, 1080p")
	previewPort := fs.String("preview-port", config.String(config.EnvPreviewPort, ""), "Serve a live preview on this port (disabled when empty)")
	logLevel := fs.String("log-level", config.String(config.EnvLogLevel, "info"), "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg.Detection.CascadePath = *cascade
	cfg.WindowTitle = *window
	cfg.Camera.DeviceIndex = *deviceIdx
	if cfg.Camera, err = camera.GetPreset(*preset, cfg.Camera); err != nil {
		return options{}, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return options{}, errors.New(fmt.Sprint(errs))
	}

	return options{
		recognizer:  cfg,
		previewPort: *previewPort,
		logLevel:    *logLevel,
	}, nil
}
