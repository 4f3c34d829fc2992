// Package config provides configuration helpers for engagecam commands.
package config

import (
	"os"
	"strconv"
)

// Defaults used when the corresponding environment variable is unset.
const (
	DefaultModelPath = "models/yolov8n-pose.onnx"
	DefaultBackend   = "dnn"
	DefaultDeviceID  = 0
	DefaultLogLevel  = "info"
)

// ModelPath returns the pose model path from ENGAGECAM_MODEL.
func ModelPath() string {
	if p := os.Getenv("ENGAGECAM_MODEL"); p != "" {
		return p
	}
	return DefaultModelPath
}

// Backend returns the inference backend from ENGAGECAM_BACKEND.
func Backend() string {
	if b := os.Getenv("ENGAGECAM_BACKEND"); b != "" {
		return b
	}
	return DefaultBackend
}

// DeviceID returns the capture device index from ENGAGECAM_DEVICE.
// Non-numeric values fall back to the default.
func DeviceID() int {
	if d := os.Getenv("ENGAGECAM_DEVICE"); d != "" {
		if id, err := strconv.Atoi(d); err == nil {
			return id
		}
	}
	return DefaultDeviceID
}

// LogLevel returns the log level from ENGAGECAM_LOG_LEVEL.
func LogLevel() string {
	if l := os.Getenv("ENGAGECAM_LOG_LEVEL"); l != "" {
		return l
	}
	return DefaultLogLevel
}
