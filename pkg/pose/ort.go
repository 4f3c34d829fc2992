package pose

import (
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/disintegration/imaging"
	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"
)

// The onnxruntime environment is process-global; initialize it once and
// share the result across estimators.
var (
	ortOnce    sync.Once
	ortInitErr error
)

func initORT() error {
	ortOnce.Do(func() {
		if lib := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// ORTEstimator runs the pose model through onnxruntime. Input and output
// tensors are allocated once and reused across frames.
type ORTEstimator struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	config  Config
	mu      sync.Mutex // Protects inference
}

// NewORT creates an onnxruntime-backed estimator.
func NewORT(cfg Config) (*ORTEstimator, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	if err := initORT(); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}

	sz := int64(cfg.InputSize)
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, sz, sz))
	if err != nil {
		return nil, fmt.Errorf("allocate input tensor: %w", err)
	}

	cols := int64(anchorCount(cfg.InputSize))
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 4+1+NumKeypoints*3, cols))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{"images"}, []string{"output0"},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &ORTEstimator{
		session: session,
		input:   input,
		output:  output,
		config:  cfg,
	}, nil
}

// Detect finds people in the frame.
func (e *ORTEstimator) Detect(frame gocv.Mat) ([]Subject, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if frame.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	img, err := frame.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}

	sz := e.config.InputSize
	resized := imaging.Resize(img, sz, sz, imaging.Linear)
	fillCHW(resized, sz, e.input.GetData())

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("model inference: %w", err)
	}

	scale := scaleFor(frame.Cols(), frame.Rows(), sz)
	return decodePose(e.output.GetData(), anchorCount(sz), scale, e.config), nil
}

// fillCHW writes the image into buffer as planar RGB float32 in [0, 1].
func fillCHW(img image.Image, size int, buffer []float32) {
	channelSize := size * size
	for y := 0; y < size; y++ {
		offset := y * size
		for x := 0; x < size; x++ {
			i := offset + x
			r, g, b, _ := img.At(x, y).RGBA()
			buffer[i] = float32(r>>8) / 255.0
			buffer[channelSize+i] = float32(g>>8) / 255.0
			buffer[channelSize*2+i] = float32(b>>8) / 255.0
		}
	}
}

// Close releases the session and tensors.
func (e *ORTEstimator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	if e.input != nil {
		e.input.Destroy()
		e.input = nil
	}
	if e.output != nil {
		e.output.Destroy()
		e.output = nil
	}
	return nil
}
