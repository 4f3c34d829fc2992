// Package capture opens the local camera and hands out frames for the
// processing loop.
package capture

import (
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

// Config holds video source parameters.
type Config struct {
	DeviceID int // Capture device index
	Width    int // Requested frame width in pixels
	Height   int // Requested frame height in pixels
}

// DefaultConfig returns the default camera configuration.
func DefaultConfig() Config {
	return Config{
		DeviceID: 0,
		Width:    1280,
		Height:   720,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c Config) Validate() []string {
	var errors []string

	if c.DeviceID < 0 {
		errors = append(errors, "device id must be non-negative")
	}
	if c.Width < 160 || c.Width > 7680 {
		errors = append(errors, "width must be between 160 and 7680")
	}
	if c.Height < 120 || c.Height > 4320 {
		errors = append(errors, "height must be between 120 and 4320")
	}

	return errors
}

// Err folds validation failures into a single error, or nil.
func (c Config) Err() error {
	if errs := c.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid capture config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Source wraps a camera device. The requested resolution is best-effort;
// callers must read the actual size from each captured frame.
type Source struct {
	cap    *gocv.VideoCapture
	config Config
}

// Open opens the capture device and requests the configured resolution.
func Open(cfg Config) (*Source, error) {
	if err := cfg.Err(); err != nil {
		return nil, err
	}

	cap, err := gocv.OpenVideoCapture(cfg.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("open capture device %d: %w", cfg.DeviceID, err)
	}

	cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))

	return &Source{
		cap:    cap,
		config: cfg,
	}, nil
}

// Read grabs the next frame into dst. It returns false when the device
// produced no frame, which callers treat as end of stream.
func (s *Source) Read(dst *gocv.Mat) bool {
	return s.cap.Read(dst) && !dst.Empty()
}

// Close releases the capture device.
func (s *Source) Close() error {
	return s.cap.Close()
}
