package engagement

import (
	"math"
	"testing"

	"github.com/engagecam/engagecam/pkg/pose"
)

// headSubject builds a subject with the three head keypoints at the given
// x positions, all fully confident.
func headSubject(noseX, leftEyeX, rightEyeX float64) pose.Subject {
	return pose.Subject{
		Keypoints: []pose.Keypoint{
			{X: noseX, Y: 100, Confidence: 1.0},
			{X: leftEyeX, Y: 90, Confidence: 1.0},
			{X: rightEyeX, Y: 90, Confidence: 1.0},
		},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNewTracker(t *testing.T) {
	tr := NewTracker()

	if tr.Score() != 100 {
		t.Errorf("initial score: got %.1f, want 100", tr.Score())
	}
	if tr.Status() != StatusScanning {
		t.Errorf("initial status: got %q, want %q", tr.Status(), StatusScanning)
	}
}

func TestClassify_NoSubject(t *testing.T) {
	tests := []struct {
		name     string
		subjects []pose.Subject
	}{
		{name: "empty detection", subjects: nil},
		{name: "zero subjects", subjects: []pose.Subject{}},
		{
			name:     "too few keypoints",
			subjects: []pose.Subject{{Keypoints: []pose.Keypoint{{X: 1, Y: 1, Confidence: 1}}}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := NewTracker()

			score, status := tr.Classify(tc.subjects)
			if score != 0 {
				t.Errorf("score: got %.1f, want 0", score)
			}
			if status != StatusNoSubject {
				t.Errorf("status: got %q, want %q", status, StatusNoSubject)
			}
			if tr.Score() != 100 {
				t.Errorf("smoothed score mutated: got %.1f, want 100", tr.Score())
			}
		})
	}
}

func TestClassify_LowVisibility(t *testing.T) {
	tests := []struct {
		name string
		conf [3]float64 // nose, left eye, right eye
	}{
		{name: "dim nose", conf: [3]float64{0.4, 0.9, 0.9}},
		{name: "dim left eye", conf: [3]float64{0.9, 0.49, 0.9}},
		{name: "dim right eye", conf: [3]float64{0.9, 0.9, 0.1}},
		{name: "all dim", conf: [3]float64{0.1, 0.1, 0.1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := NewTracker()
			subject := headSubject(50, 40, 60)
			for i := range subject.Keypoints {
				subject.Keypoints[i].Confidence = tc.conf[i]
			}

			score, status := tr.Classify([]pose.Subject{subject})
			if score != lowVisibilityScore {
				t.Errorf("score: got %.1f, want %.1f", score, lowVisibilityScore)
			}
			if status != StatusLowVisibility {
				t.Errorf("status: got %q, want %q", status, StatusLowVisibility)
			}
			if tr.Score() != 100 {
				t.Errorf("smoothed score mutated: got %.1f, want 100", tr.Score())
			}
		})
	}
}

func TestClassify_CenteredNose(t *testing.T) {
	// Nose exactly at the eye midpoint: raw score 100, smoothing keeps
	// the score at 100 and the subject reads as engaged.
	tr := NewTracker()

	score, status := tr.Classify([]pose.Subject{headSubject(50, 40, 60)})
	if !almostEqual(score, 100) {
		t.Errorf("score: got %.4f, want 100", score)
	}
	if status != StatusEngaged {
		t.Errorf("status: got %q, want %q", status, StatusEngaged)
	}
}

func TestClassify_SmoothingMovesTowardRaw(t *testing.T) {
	// From a low previous score, a perfect frame moves the smoothed
	// score 20% of the way toward 100.
	tr := &Tracker{score: 50, status: StatusScanning}

	score, status := tr.Classify([]pose.Subject{headSubject(50, 40, 60)})
	if !almostEqual(score, 60) { // 50*0.8 + 100*0.2
		t.Errorf("score: got %.4f, want 60", score)
	}
	// Exactly 60 is not above the engaged threshold.
	if status != StatusDistracted {
		t.Errorf("status: got %q, want %q", status, StatusDistracted)
	}
}

func TestClassify_YawPenalty(t *testing.T) {
	// Nose offset 5px against a 20px eye width: yaw ratio 0.25, raw
	// score 50, smoothed from 100 down to 90.
	tr := NewTracker()

	score, status := tr.Classify([]pose.Subject{headSubject(45, 40, 60)})
	if !almostEqual(score, 90) { // 100*0.8 + 50*0.2
		t.Errorf("score: got %.4f, want 90", score)
	}
	if status != StatusEngaged {
		t.Errorf("status: got %q, want %q", status, StatusEngaged)
	}
}

func TestClassify_DegenerateEyeWidth(t *testing.T) {
	// Coincident eyes force yaw ratio 1.0 and raw score 0.
	tr := NewTracker()

	score, _ := tr.Classify([]pose.Subject{headSubject(50, 40, 40)})
	if !almostEqual(score, 80) { // 100*0.8 + 0*0.2
		t.Errorf("score: got %.4f, want 80", score)
	}
}

func TestClassify_StatusBoundariesStrict(t *testing.T) {
	tests := []struct {
		name      string
		prevScore float64
		want      float64
		status    string
	}{
		// A fully turned head yields raw score 0, so the smoothed score
		// lands exactly on the boundary from a chosen starting point.
		{name: "exactly 60 is distracted", prevScore: 75, want: 60, status: StatusDistracted},
		{name: "exactly 30 is looking away", prevScore: 37.5, want: 30, status: StatusLookingAway},
		{name: "just above 60 is engaged", prevScore: 76, want: 60.8, status: StatusEngaged},
		{name: "just above 30 is distracted", prevScore: 38, want: 30.4, status: StatusDistracted},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := &Tracker{score: tc.prevScore, status: StatusScanning}

			// Nose far off the eye midpoint: yaw ratio >= 0.5, raw 0.
			score, status := tr.Classify([]pose.Subject{headSubject(80, 40, 60)})
			if !almostEqual(score, tc.want) {
				t.Errorf("score: got %.4f, want %.4f", score, tc.want)
			}
			if status != tc.status {
				t.Errorf("status: got %q, want %q", status, tc.status)
			}
		})
	}
}

func TestObserve_AbsenceDecay(t *testing.T) {
	tr := NewTracker()

	for i := 0; i < 20; i++ {
		score, status := tr.Observe(nil)
		want := 100 - float64(i+1)*5
		if !almostEqual(score, want) {
			t.Fatalf("frame %d: score got %.1f, want %.1f", i, score, want)
		}
		if status != StatusSearching {
			t.Fatalf("frame %d: status got %q, want %q", i, status, StatusSearching)
		}
	}

	// Floored at zero, never negative.
	for i := 0; i < 5; i++ {
		if score, _ := tr.Observe(nil); score != 0 {
			t.Fatalf("score went below floor: %.1f", score)
		}
	}
}

func TestObserve_AdoptsClassifyResult(t *testing.T) {
	tr := NewTracker()

	score, status := tr.Observe([]pose.Subject{headSubject(50, 40, 60)})
	if !almostEqual(score, 100) || status != StatusEngaged {
		t.Errorf("got (%.1f, %q), want (100, %q)", score, status, StatusEngaged)
	}
	if tr.Status() != StatusEngaged {
		t.Errorf("status not adopted: %q", tr.Status())
	}
}

func TestObserve_LowVisibilityOverridesState(t *testing.T) {
	// The low-visibility override bypasses smoothing inside Classify,
	// but the loop still adopts 20 as the current score.
	tr := NewTracker()
	subject := headSubject(50, 40, 60)
	subject.Keypoints[0].Confidence = 0.2

	score, status := tr.Observe([]pose.Subject{subject})
	if score != lowVisibilityScore || status != StatusLowVisibility {
		t.Fatalf("got (%.1f, %q), want (%.1f, %q)",
			score, status, lowVisibilityScore, StatusLowVisibility)
	}
	if tr.Score() != lowVisibilityScore {
		t.Errorf("score not adopted: %.1f", tr.Score())
	}

	// The next geometric frame smooths from the adopted 20.
	score, _ = tr.Observe([]pose.Subject{headSubject(50, 40, 60)})
	if !almostEqual(score, 36) { // 20*0.8 + 100*0.2
		t.Errorf("score after override: got %.4f, want 36", score)
	}
}

func TestTrackersAreIndependent(t *testing.T) {
	a := NewTracker()
	b := NewTracker()

	for i := 0; i < 10; i++ {
		a.Observe(nil)
	}

	if b.Score() != 100 {
		t.Errorf("second tracker affected: %.1f", b.Score())
	}
}
