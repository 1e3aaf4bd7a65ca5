package detection

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// HaarDetector uses OpenCV's CascadeClassifier for face detection
type HaarDetector struct {
	classifier gocv.CascadeClassifier
	config     Config
	mu         sync.Mutex // Protects classifier
	closed     bool
}

// NewHaar loads the cascade at cfg.CascadePath.
// Missing or malformed files yield a *ModelLoadError.
func NewHaar(cfg Config) (*HaarDetector, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid detector config: %v", errs)
	}

	// Check if model file exists first
	if _, err := os.Stat(cfg.CascadePath); err != nil {
		return nil, &ModelLoadError{Path: cfg.CascadePath, Err: err}
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cfg.CascadePath) {
		classifier.Close()
		return nil, &ModelLoadError{Path: cfg.CascadePath}
	}

	return &HaarDetector{
		classifier: classifier,
		config:     cfg,
	}, nil
}

// Config returns the detector parameters
func (d *HaarDetector) Config() Config {
	return d.config
}

// Detect runs multi-scale detection on a grayscale frame
func (d *HaarDetector) Detect(gray gocv.Mat) []Face {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || gray.Empty() {
		return nil
	}

	rects := d.classifier.DetectMultiScaleWithParams(
		gray,
		d.config.ScaleFactor,
		d.config.MinNeighbors,
		0,
		image.Pt(d.config.MinSize, d.config.MinSize),
		image.Pt(0, 0),
	)

	faces := make([]Face, 0, len(rects))
	for _, r := range rects {
		faces = append(faces, FromRect(r))
	}
	return faces
}

// Close releases the classifier
func (d *HaarDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.classifier.Close()
}
