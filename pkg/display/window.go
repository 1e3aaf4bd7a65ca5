// Package display shows frames in OS windows and polls the keyboard.
package display

import "gocv.io/x/gocv"

// DefaultTitle is the name of the output window.
const DefaultTitle = "Video"

// NoKey is returned by WaitKey when the wait elapses without a key press.
const NoKey = -1

// Window shows frames and reports key presses. *gocv.Window satisfies it.
type Window interface {
	IMShow(img gocv.Mat) error
	WaitKey(delay int) int
	Close() error
}

var _ Window = (*gocv.Window)(nil)

// Opener creates a Window with the given title.
type Opener func(title string) Window

// Open creates a named OpenCV highgui window.
func Open(title string) Window {
	return gocv.NewWindow(title)
}

// QuitRequested reports whether a WaitKey result should stop the loop.
// Any key press quits, regardless of which key.
func QuitRequested(key int) bool {
	return key >= 0
}
