// Package detection provides face detection using computer vision
package detection

import (
	"image"

	"gocv.io/x/gocv"
)

// Face is a detected face bounding box in frame pixels
type Face struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// FromRect converts an image rectangle to a Face
func FromRect(r image.Rectangle) Face {
	return Face{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Rect returns the bounds as (x, y)-(x+w, y+h)
func (f Face) Rect() image.Rectangle {
	return image.Rect(f.X, f.Y, f.X+f.W, f.Y+f.H)
}

// Center returns the center point of the face
func (f Face) Center() image.Point {
	return image.Pt(f.X+f.W/2, f.Y+f.H/2)
}

// Area returns the area of the bounding box
func (f Face) Area() int {
	return f.W * f.H
}

// Detector is the interface for face detection backends
type Detector interface {
	// Detect finds faces in a grayscale frame. Order follows the backend.
	Detect(gray gocv.Mat) []Face

	// Close releases resources
	Close() error
}

// Config holds detector configuration
type Config struct {
	CascadePath  string  // Path to Haar cascade XML
	ScaleFactor  float64 // Image pyramid shrink ratio between passes
	MinNeighbors int     // Overlapping candidates required to confirm a face
	MinSize      int     // Smallest face edge in pixels
}

// DefaultCascadePath is the frontal face cascade expected in the working directory
const DefaultCascadePath = "haarcascade_frontalface_default.xml"

// DefaultConfig returns the parameters for frontal face detection
func DefaultConfig() Config {
	return Config{
		CascadePath:  DefaultCascadePath,
		ScaleFactor:  1.1,
		MinNeighbors: 5,
		MinSize:      30,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.CascadePath == "" {
		errors = append(errors, "cascade path is required")
	}
	if c.ScaleFactor <= 1.0 {
		errors = append(errors, "scale factor must be greater than 1.0")
	}
	if c.MinNeighbors < 0 {
		errors = append(errors, "min neighbors must not be negative")
	}
	if c.MinSize < 0 {
		errors = append(errors, "min size must not be negative")
	}

	return errors
}
