package pose

import "sort"

// outputScale maps model input coordinates back to frame pixels. Frames
// are stretched to the square model input, so X and Y scale independently.
type outputScale struct {
	X, Y float64
}

func scaleFor(frameW, frameH, inputSize int) outputScale {
	return outputScale{
		X: float64(frameW) / float64(inputSize),
		Y: float64(frameH) / float64(inputSize),
	}
}

// anchorCount returns the number of prediction columns the model emits
// for a square input: one per cell of the stride-8, -16, and -32 grids.
func anchorCount(inputSize int) int {
	n := 0
	for _, stride := range []int{8, 16, 32} {
		g := inputSize / stride
		n += g * g
	}
	return n
}

// decodePose parses the raw YOLOv8-pose output tensor.
//
// The tensor has shape [1, 56, cols]: attributes are rows, anchors are
// columns. Rows 0-3 are the box (cx, cy, w, h in input pixels), row 4 is
// the person score, rows 5-55 are 17 keypoints as (x, y, score) triples.
// Candidates below the confidence threshold are dropped, survivors are
// mapped back to frame pixels, sorted by descending confidence, and
// deduplicated with greedy IoU suppression.
func decodePose(data []float32, cols int, scale outputScale, cfg Config) []Subject {
	var candidates []Subject

	for c := 0; c < cols; c++ {
		score := float64(data[4*cols+c])
		if score < cfg.ConfidenceThresh {
			continue
		}

		cx := float64(data[0*cols+c])
		cy := float64(data[1*cols+c])
		w := float64(data[2*cols+c])
		h := float64(data[3*cols+c])

		box := Rect{
			X: (cx - w/2) * scale.X,
			Y: (cy - h/2) * scale.Y,
			W: w * scale.X,
			H: h * scale.Y,
		}

		kps := make([]Keypoint, NumKeypoints)
		for k := 0; k < NumKeypoints; k++ {
			base := 5 + k*3
			kps[k] = Keypoint{
				X:          float64(data[base*cols+c]) * scale.X,
				Y:          float64(data[(base+1)*cols+c]) * scale.Y,
				Confidence: float64(data[(base+2)*cols+c]),
			}
		}

		candidates = append(candidates, Subject{
			Box:        box,
			Confidence: score,
			Keypoints:  kps,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	return suppress(candidates, cfg.IoUThresh)
}

// suppress performs greedy non-maximum suppression on candidates already
// sorted by descending confidence.
func suppress(candidates []Subject, iouThresh float64) []Subject {
	var kept []Subject

	for _, c := range candidates {
		overlaps := false
		for _, k := range kept {
			if IoU(c.Box, k.Box) > iouThresh {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}

	return kept
}
