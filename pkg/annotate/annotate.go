// Package annotate draws detection overlays onto video frames.
//
// Annotators are capabilities rather than a type hierarchy: new overlay
// kinds (labels, landmarks, expressions) implement FrameAnnotator and are
// composed with Chain.
package annotate

import (
	"fmt"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-facecam/pkg/detection"
)

// FrameAnnotator mutates a colour frame in place for a set of detections.
type FrameAnnotator interface {
	Annotate(frame *gocv.Mat, faces []detection.Face) error
}

// Green is the outline colour used for face boxes.
var Green = color.RGBA{R: 0, G: 255, B: 0, A: 0}

// DefaultThickness is the outline stroke in pixels.
const DefaultThickness = 2

// BoxAnnotator outlines every face with a rectangle.
// Overlapping boxes are drawn independently.
type BoxAnnotator struct {
	Color     color.RGBA
	Thickness int
}

// NewBoxAnnotator returns a 2px green box annotator.
func NewBoxAnnotator() *BoxAnnotator {
	return &BoxAnnotator{Color: Green, Thickness: DefaultThickness}
}

// Annotate draws one rectangle per face with corners (x, y) and (x+w, y+h).
func (a *BoxAnnotator) Annotate(frame *gocv.Mat, faces []detection.Face) error {
	for _, f := range faces {
		// 8-connected lines keep the stroke a solid colour; gocv.Rectangle
		// anti-aliases the edges.
		if err := gocv.RectangleWithParams(frame, f.Rect(), a.Color, a.Thickness, gocv.Line8, 0); err != nil {
			return fmt.Errorf("draw box %v: %w", f.Rect(), err)
		}
	}
	return nil
}

// Chain applies annotators in order.
type Chain []FrameAnnotator

// Annotate runs every annotator in the chain, stopping at the first error.
func (c Chain) Annotate(frame *gocv.Mat, faces []detection.Face) error {
	for _, a := range c {
		if err := a.Annotate(frame, faces); err != nil {
			return err
		}
	}
	return nil
}

// Func adapts a plain function to FrameAnnotator.
type Func func(frame *gocv.Mat, faces []detection.Face) error

// Annotate calls f.
func (f Func) Annotate(frame *gocv.Mat, faces []detection.Face) error {
	return f(frame, faces)
}
