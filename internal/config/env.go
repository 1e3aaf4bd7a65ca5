// Package config provides configuration helpers for facecam commands.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvCascade     = "FACECAM_CASCADE"
	EnvDevice      = "FACECAM_DEVICE"
	EnvWindow      = "FACECAM_WINDOW"
	EnvPreviewPort = "FACECAM_PREVIEW_PORT"
	EnvLogLevel    = "FACECAM_LOG_LEVEL"
)

// LoadDotEnv loads KEY=value pairs from the given files (".env" when none
// are given) into the process environment. Existing variables win.
// Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// String returns the value of key, or def if unset or empty.
func String(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Int returns the integer value of key, or def if unset.
// A set but malformed value is an error.
func Int(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}
