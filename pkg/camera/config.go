// Package camera opens local video capture devices for the detection loop.
package camera

import "fmt"

// Config holds capture device parameters.
type Config struct {
	DeviceIndex int `json:"device_index"` // OS video device, 0 is the system default
	Width       int `json:"width"`        // Requested frame width, 0 keeps the driver default
	Height      int `json:"height"`       // Requested frame height, 0 keeps the driver default
	Framerate   int `json:"framerate"`    // Requested FPS, 0 keeps the driver default
}

// Preset names for common capture sizes
const (
	PresetNative = "native"
	PresetVGA    = "vga"
	Preset720p   = "720p"
	Preset1080p  = "1080p"
)

// DefaultConfig returns the system default camera at its native mode.
func DefaultConfig() Config {
	return Config{DeviceIndex: 0}
}

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetNative: DefaultConfig(),
		PresetVGA:    {Width: 640, Height: 480},
		Preset720p:   {Width: 1280, Height: 720},
		Preset1080p:  {Width: 1920, Height: 1080},
	}
}

// GetPreset returns a preset config by name, keeping the device index of base.
func GetPreset(name string, base Config) (Config, error) {
	p, ok := Presets()[name]
	if !ok {
		return base, fmt.Errorf("unknown camera preset: %s", name)
	}
	p.DeviceIndex = base.DeviceIndex
	p.Framerate = base.Framerate
	return p, nil
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.DeviceIndex < 0 {
		errors = append(errors, "device index must not be negative")
	}
	if c.Width < 0 || c.Height < 0 {
		errors = append(errors, "width and height must not be negative")
	}
	if (c.Width == 0) != (c.Height == 0) {
		errors = append(errors, "width and height must be set together")
	}
	if c.Framerate < 0 || c.Framerate > 240 {
		errors = append(errors, "framerate must be between 0 and 240")
	}

	return errors
}
