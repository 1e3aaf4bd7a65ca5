package detection

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

func TestFace_Rect(t *testing.T) {
	tests := []struct {
		name string
		face Face
		want image.Rectangle
	}{
		{
			name: "origin",
			face: Face{X: 0, Y: 0, W: 30, H: 30},
			want: image.Rect(0, 0, 30, 30),
		},
		{
			name: "offset square",
			face: Face{X: 10, Y: 10, W: 50, H: 50},
			want: image.Rect(10, 10, 60, 60),
		},
		{
			name: "tall box",
			face: Face{X: 5, Y: 7, W: 20, H: 40},
			want: image.Rect(5, 7, 25, 47),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.face.Rect(); got != tc.want {
				t.Errorf("Rect: got %v, want %v", got, tc.want)
			}
			if back := FromRect(tc.want); back != tc.face {
				t.Errorf("FromRect: got %+v, want %+v", back, tc.face)
			}
		})
	}
}

func TestFace_CenterAndArea(t *testing.T) {
	f := Face{X: 10, Y: 20, W: 40, H: 60}

	if c := f.Center(); c != image.Pt(30, 50) {
		t.Errorf("Center: got %v, want (30,50)", c)
	}
	if a := f.Area(); a != 2400 {
		t.Errorf("Area: got %d, want 2400", a)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.CascadePath != "haarcascade_frontalface_default.xml" {
		t.Errorf("CascadePath: got %q", cfg.CascadePath)
	}
	if cfg.ScaleFactor != 1.1 {
		t.Errorf("ScaleFactor: got %v, want 1.1", cfg.ScaleFactor)
	}
	if cfg.MinNeighbors != 5 {
		t.Errorf("MinNeighbors: got %d, want 5", cfg.MinNeighbors)
	}
	if cfg.MinSize != 30 {
		t.Errorf("MinSize: got %d, want 30", cfg.MinSize)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("DefaultConfig should validate, got %v", errs)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errors int
	}{
		{"empty path", func(c *Config) { c.CascadePath = "" }, 1},
		{"scale factor of one", func(c *Config) { c.ScaleFactor = 1.0 }, 1},
		{"negative neighbors", func(c *Config) { c.MinNeighbors = -1 }, 1},
		{"negative size", func(c *Config) { c.MinSize = -30 }, 1},
		{"everything wrong", func(c *Config) {
			c.CascadePath = ""
			c.ScaleFactor = 0.5
			c.MinNeighbors = -1
			c.MinSize = -1
		}, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if errs := cfg.Validate(); len(errs) != tc.errors {
				t.Errorf("Validate: got %d errors (%v), want %d", len(errs), errs, tc.errors)
			}
		})
	}
}

func TestNewHaar_MissingFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CascadePath = "/nonexistent/haarcascade.xml"

	_, err := NewHaar(cfg)
	if err == nil {
		t.Fatal("expected error for missing cascade")
	}
	if !errors.Is(err, ErrModelLoad) {
		t.Errorf("expected ErrModelLoad, got %v", err)
	}

	var mle *ModelLoadError
	if !errors.As(err, &mle) {
		t.Fatalf("expected *ModelLoadError, got %T", err)
	}
	if mle.Path != cfg.CascadePath {
		t.Errorf("Path: got %q, want %q", mle.Path, cfg.CascadePath)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped not-exist cause, got %v", err)
	}
}

func TestNewHaar_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScaleFactor = 1.0

	if _, err := NewHaar(cfg); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestModelLoadError_Message(t *testing.T) {
	err := &ModelLoadError{Path: "bad.xml"}
	if err.Error() != "detection: load cascade bad.xml: not a valid cascade" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Error("expected nil cause")
	}
}

func TestHaarDetect_BlankFrame(t *testing.T) {
	path := findCascadePath()
	if path == "" {
		t.Skip("Haar cascade not found, skipping test")
	}

	cfg := DefaultConfig()
	cfg.CascadePath = path
	d, err := NewHaar(cfg)
	if err != nil {
		t.Fatalf("NewHaar failed: %v", err)
	}
	defer d.Close()

	gray := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 240, 320, gocv.MatTypeCV8U)
	defer gray.Close()

	if faces := d.Detect(gray); len(faces) != 0 {
		t.Errorf("expected no faces on a blank frame, got %v", faces)
	}
}

func TestHaarDetect_EmptyMat(t *testing.T) {
	path := findCascadePath()
	if path == "" {
		t.Skip("Haar cascade not found, skipping test")
	}

	cfg := DefaultConfig()
	cfg.CascadePath = path
	d, err := NewHaar(cfg)
	if err != nil {
		t.Fatalf("NewHaar failed: %v", err)
	}
	defer d.Close()

	empty := gocv.NewMat()
	defer empty.Close()

	if faces := d.Detect(empty); faces != nil {
		t.Errorf("expected nil for empty frame, got %v", faces)
	}
}

func TestHaarClose_Idempotent(t *testing.T) {
	path := findCascadePath()
	if path == "" {
		t.Skip("Haar cascade not found, skipping test")
	}

	cfg := DefaultConfig()
	cfg.CascadePath = path
	d, err := NewHaar(cfg)
	if err != nil {
		t.Fatalf("NewHaar failed: %v", err)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	gray := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 64, 64, gocv.MatTypeCV8U)
	defer gray.Close()
	if faces := d.Detect(gray); faces != nil {
		t.Errorf("expected nil after Close, got %v", faces)
	}
}

// findCascadePath looks for the frontal face cascade next to the repo or
// in the usual OpenCV install locations.
func findCascadePath() string {
	if p := os.Getenv("FACECAM_CASCADE"); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	candidates := []string{
		DefaultCascadePath,
		filepath.Join("..", "..", DefaultCascadePath),
		filepath.Join("..", "..", "data", DefaultCascadePath),
		filepath.Join("/usr/share/opencv4/haarcascades", DefaultCascadePath),
		filepath.Join("/usr/local/share/opencv4/haarcascades", DefaultCascadePath),
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
