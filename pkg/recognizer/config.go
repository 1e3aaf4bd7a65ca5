package recognizer

import (
	"github.com/teslashibe/go-facecam/pkg/camera"
	"github.com/teslashibe/go-facecam/pkg/detection"
	"github.com/teslashibe/go-facecam/pkg/display"
)

// Config holds all parameters for a recognition run
type Config struct {
	Detection detection.Config
	Camera    camera.Config

	// Display
	WindowTitle string // Name of the output window
	KeyDelay    int    // Key poll wait per frame in milliseconds
}

// DefaultConfig returns frontal face detection on the default camera,
// shown in a window named "Video" with a 1ms key poll.
func DefaultConfig() Config {
	return Config{
		Detection:   detection.DefaultConfig(),
		Camera:      camera.DefaultConfig(),
		WindowTitle: display.DefaultTitle,
		KeyDelay:    1,
	}
}

// Validate checks every section of the config.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	errors = append(errors, c.Detection.Validate()...)
	errors = append(errors, c.Camera.Validate()...)
	if c.WindowTitle == "" {
		errors = append(errors, "window title is required")
	}
	if c.KeyDelay < 1 {
		errors = append(errors, "key delay must be at least 1ms")
	}

	return errors
}
