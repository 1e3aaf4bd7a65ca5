package camera

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// Sentinel errors for capture failures.
var (
	// ErrDeviceOpen is returned when the video device cannot be opened.
	ErrDeviceOpen = errors.New("camera: device open failed")

	// ErrFrameRead is returned when a frame cannot be read or is empty.
	ErrFrameRead = errors.New("camera: frame read failed")
)

// Source produces colour frames. *gocv.VideoCapture satisfies it.
type Source interface {
	// Read fills m with the next frame and reports success.
	Read(m *gocv.Mat) bool

	// Close releases the device.
	Close() error
}

var _ Source = (*gocv.VideoCapture)(nil)

// Opener acquires a Source for a config.
type Opener func(cfg Config) (Source, error)

// Open acquires the capture device described by cfg.
func Open(cfg Config) (Source, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: invalid config: %v", ErrDeviceOpen, errs)
	}

	vc, err := gocv.OpenVideoCapture(cfg.DeviceIndex)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", ErrDeviceOpen, cfg.DeviceIndex, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: device %d not available", ErrDeviceOpen, cfg.DeviceIndex)
	}

	if cfg.Width > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}
	if cfg.Framerate > 0 {
		vc.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
	}

	return vc, nil
}

// ReadFrame reads one frame from src into m.
// A failed read or an empty frame yields ErrFrameRead.
func ReadFrame(src Source, m *gocv.Mat) error {
	if ok := src.Read(m); !ok {
		return ErrFrameRead
	}
	if m.Empty() {
		return fmt.Errorf("%w: empty frame", ErrFrameRead)
	}
	return nil
}
