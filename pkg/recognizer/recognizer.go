// Package recognizer runs the capture, detect, draw and show loop.
//
// A Recognizer owns one classifier, one capture device and one output
// window. The device and window are acquired together before the first
// frame and released together exactly once when the loop ends, whatever
// the reason.
package recognizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-facecam/internal/log"
	"github.com/teslashibe/go-facecam/pkg/annotate"
	"github.com/teslashibe/go-facecam/pkg/camera"
	"github.com/teslashibe/go-facecam/pkg/detection"
	"github.com/teslashibe/go-facecam/pkg/display"
)

// ErrReleased is returned when a released recognizer is asked to capture again.
var ErrReleased = errors.New("recognizer: capture already released")

// State is the capture lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateCapturing
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCapturing:
		return "capturing"
	case StateReleased:
		return "released"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FrameHook observes each annotated frame after it is shown.
// The frame is only valid for the duration of the call.
type FrameHook func(frame gocv.Mat, faces []detection.Face)

// Stats is a snapshot of loop progress.
type Stats struct {
	State  State `json:"state"`
	Frames int   `json:"frames"`
	Faces  int   `json:"faces"`
}

// Recognizer detects faces frame by frame and displays the result.
type Recognizer struct {
	cfg Config

	detector   detection.Detector
	annotator  annotate.FrameAnnotator
	openSource camera.Opener
	openWindow display.Opener
	hooks      []FrameHook
	logger     *slog.Logger

	source camera.Source
	window display.Window
	frame  gocv.Mat
	gray   gocv.Mat

	releaseOnce sync.Once
	releaseErr  error
	closeOnce   sync.Once

	mu    sync.RWMutex // Protects stats
	stats Stats
}

// Option customises a Recognizer.
type Option func(*Recognizer)

// WithDetector replaces the Haar cascade backend.
func WithDetector(d detection.Detector) Option {
	return func(r *Recognizer) { r.detector = d }
}

// WithAnnotator replaces the green box overlay.
func WithAnnotator(a annotate.FrameAnnotator) Option {
	return func(r *Recognizer) { r.annotator = a }
}

// WithSourceOpener replaces how the capture device is acquired.
func WithSourceOpener(o camera.Opener) Option {
	return func(r *Recognizer) { r.openSource = o }
}

// WithWindowOpener replaces how the output window is created.
func WithWindowOpener(o display.Opener) Option {
	return func(r *Recognizer) { r.openWindow = o }
}

// WithFrameHook registers an observer for annotated frames.
func WithFrameHook(h FrameHook) Option {
	return func(r *Recognizer) { r.hooks = append(r.hooks, h) }
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recognizer) { r.logger = l }
}

// New loads the classifier and prepares frame buffers.
// The capture device is not touched until capture begins.
func New(cfg Config, opts ...Option) (*Recognizer, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid recognizer config: %v", errs)
	}

	r := &Recognizer{
		cfg:        cfg,
		annotator:  annotate.NewBoxAnnotator(),
		openSource: camera.Open,
		openWindow: display.Open,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.L()
	}

	if r.detector == nil {
		d, err := detection.NewHaar(cfg.Detection)
		if err != nil {
			return nil, err
		}
		r.detector = d
	}

	r.frame = gocv.NewMat()
	r.gray = gocv.NewMat()
	return r, nil
}

// Stats returns a snapshot of the loop progress. Safe for concurrent use.
func (r *Recognizer) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

func (r *Recognizer) setState(s State) {
	r.mu.Lock()
	r.stats.State = s
	r.mu.Unlock()
}

// beginCapture acquires the device and window once. Calls while
// capturing are no-ops.
func (r *Recognizer) beginCapture() error {
	switch r.Stats().State {
	case StateCapturing:
		return nil
	case StateReleased:
		return ErrReleased
	}

	src, err := r.openSource(r.cfg.Camera)
	if err != nil {
		return err
	}
	r.source = src
	r.window = r.openWindow(r.cfg.WindowTitle)
	r.setState(StateCapturing)

	r.logger.Info("capture started",
		"device", r.cfg.Camera.DeviceIndex,
		"window", r.cfg.WindowTitle)
	return nil
}

// BeginRecognition runs one cycle: read a frame, convert it to grayscale,
// detect faces, outline them on the colour frame and show it.
func (r *Recognizer) BeginRecognition() error {
	if err := r.beginCapture(); err != nil {
		return err
	}

	if err := camera.ReadFrame(r.source, &r.frame); err != nil {
		return fmt.Errorf("read frame: %w", err)
	}

	// A failed conversion leaves the previous frame in r.gray.
	if err := gocv.CvtColor(r.frame, &r.gray, gocv.ColorBGRToGray); err != nil {
		return fmt.Errorf("convert to grayscale: %w", err)
	}
	faces := r.detector.Detect(r.gray)

	if err := r.annotator.Annotate(&r.frame, faces); err != nil {
		return fmt.Errorf("annotate frame: %w", err)
	}
	if err := r.window.IMShow(r.frame); err != nil {
		return fmt.Errorf("show frame: %w", err)
	}

	r.mu.Lock()
	r.stats.Frames++
	r.stats.Faces = len(faces)
	r.mu.Unlock()

	r.logger.Debug("frame processed", "faces", len(faces))

	for _, h := range r.hooks {
		h(r.frame, faces)
	}
	return nil
}

// StartCamera runs recognition until a key is pressed in the window, ctx
// is cancelled, or a cycle fails. The device and window are released on
// every exit path.
func (r *Recognizer) StartCamera(ctx context.Context) (err error) {
	if r.Stats().State == StateReleased {
		return ErrReleased
	}

	defer func() {
		if relErr := r.release(); err == nil {
			err = relErr
		}
	}()

	if err := r.beginCapture(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("capture cancelled", "reason", context.Cause(ctx))
			return nil
		default:
		}

		if err := r.BeginRecognition(); err != nil {
			return err
		}

		if key := r.window.WaitKey(r.cfg.KeyDelay); display.QuitRequested(key) {
			r.logger.Info("key pressed, stopping", "key", key)
			return nil
		}
	}
}

// release closes the device and window exactly once.
func (r *Recognizer) release() error {
	r.releaseOnce.Do(func() {
		var errs []error
		if r.source != nil {
			if err := r.source.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close capture: %w", err))
			}
		}
		if r.window != nil {
			if err := r.window.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close window: %w", err))
			}
		}
		r.setState(StateReleased)
		r.releaseErr = errors.Join(errs...)

		stats := r.Stats()
		r.logger.Info("capture released", "frames", stats.Frames)
	})
	return r.releaseErr
}

// Close releases the capture (if still held), the classifier and the
// frame buffers. Safe to call more than once.
func (r *Recognizer) Close() error {
	err := r.release()
	r.closeOnce.Do(func() {
		err = errors.Join(err, r.detector.Close(), r.frame.Close(), r.gray.Close())
	})
	return err
}
