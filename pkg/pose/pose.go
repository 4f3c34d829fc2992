// Package pose provides 2D human pose estimation on video frames.
//
// Frames are run through a pretrained YOLOv8 pose model and come back as
// Subjects, each carrying a bounding box and 17 COCO-ordered keypoints.
// Two inference backends are available: the OpenCV DNN module (default)
// and onnxruntime for hosts where the DNN module lacks ONNX support.
package pose

import (
	"fmt"

	"gocv.io/x/gocv"
)

// COCO keypoint indices. Only the head points are used downstream, but
// the model emits all 17 per subject.
const (
	KeypointNose     = 0
	KeypointLeftEye  = 1
	KeypointRightEye = 2
	KeypointLeftEar  = 3
	KeypointRightEar = 4

	NumKeypoints = 17
)

// Keypoint is a detected anatomical landmark in frame pixel coordinates.
type Keypoint struct {
	X, Y       float64
	Confidence float64 // 0-1
}

// Rect is a bounding box in frame pixels (top-left corner + size).
type Rect struct {
	X, Y, W, H float64
}

// Area returns the area of the box.
func (r Rect) Area() float64 {
	return r.W * r.H
}

// IoU returns the intersection-over-union of two boxes.
func IoU(a, b Rect) float64 {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.W, b.X+b.W)
	y2 := min(a.Y+a.H, b.Y+b.H)

	if x2 <= x1 || y2 <= y1 {
		return 0
	}

	inter := (x2 - x1) * (y2 - y1)
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Subject is one detected person in a frame.
type Subject struct {
	Box        Rect
	Confidence float64
	Keypoints  []Keypoint
}

// Estimator is the interface for pose estimation backends.
type Estimator interface {
	// Detect finds people in the frame and returns them ordered by
	// descending confidence. An empty slice means no subject.
	Detect(frame gocv.Mat) ([]Subject, error)

	// Close releases resources.
	Close() error
}

// Config holds estimator configuration.
type Config struct {
	ModelPath        string  // Path to ONNX model
	ConfidenceThresh float64 // Minimum person confidence (default 0.5)
	IoUThresh        float64 // NMS overlap threshold (default 0.45)
	InputSize        int     // Square model input size in pixels
}

// DefaultConfig returns production defaults for YOLOv8n-pose.
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/yolov8n-pose.onnx",
		ConfidenceThresh: 0.5,
		IoUThresh:        0.45,
		InputSize:        640,
	}
}

// Validate checks the config values.
func (c Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("model path is required")
	}
	if c.ConfidenceThresh <= 0 || c.ConfidenceThresh > 1 {
		return fmt.Errorf("confidence threshold must be in (0, 1], got %f", c.ConfidenceThresh)
	}
	if c.IoUThresh <= 0 || c.IoUThresh > 1 {
		return fmt.Errorf("iou threshold must be in (0, 1], got %f", c.IoUThresh)
	}
	if c.InputSize <= 0 || c.InputSize%32 != 0 {
		return fmt.Errorf("input size must be a positive multiple of 32, got %d", c.InputSize)
	}
	return nil
}

// Backend names accepted by New.
const (
	BackendDNN = "dnn"
	BackendORT = "ort"
)

// New creates an estimator for the named backend.
func New(backend string, cfg Config) (Estimator, error) {
	switch backend {
	case BackendDNN:
		return NewDNN(cfg)
	case BackendORT:
		return NewORT(cfg)
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s or %s)", backend, BackendDNN, BackendORT)
	}
}
