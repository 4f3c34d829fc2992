package pose

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// DNNEstimator runs the pose model through OpenCV's DNN module.
type DNNEstimator struct {
	net    gocv.Net
	config Config
	mu     sync.Mutex // Protects inference
}

// NewDNN loads the ONNX model into the OpenCV DNN module.
func NewDNN(cfg Config) (*DNNEstimator, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load model: %s", cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &DNNEstimator{
		net:    net,
		config: cfg,
	}, nil
}

// Detect finds people in the frame.
func (e *DNNEstimator) Detect(frame gocv.Mat) ([]Subject, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if frame.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	sz := e.config.InputSize
	blob := gocv.BlobFromImage(frame, 1.0/255.0,
		image.Pt(sz, sz), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	e.net.SetInput(blob, "")
	out := e.net.Forward("")
	defer out.Close()

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read output tensor: %w", err)
	}

	dims := out.Size()
	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected output rank %d, want 3", len(dims))
	}
	cols := dims[2]

	scale := scaleFor(frame.Cols(), frame.Rows(), sz)
	return decodePose(data, cols, scale, e.config), nil
}

// Close releases the network.
func (e *DNNEstimator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.net.Close()
}
