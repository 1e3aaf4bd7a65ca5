package detection

import (
	"errors"
	"fmt"
)

// ErrModelLoad is returned when the cascade definition cannot be loaded.
var ErrModelLoad = errors.New("detection: model load failed")

// ModelLoadError describes a cascade file that is missing or malformed.
type ModelLoadError struct {
	// Path is the cascade file that was requested.
	Path string

	// Err is the underlying cause, if known.
	Err error
}

// Error implements the error interface.
func (e *ModelLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("detection: load cascade %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("detection: load cascade %s: not a valid cascade", e.Path)
}

// Is reports ErrModelLoad so callers can match with errors.Is.
func (e *ModelLoadError) Is(target error) bool {
	return target == ErrModelLoad
}

// Unwrap returns the underlying cause.
func (e *ModelLoadError) Unwrap() error {
	return e.Err
}
