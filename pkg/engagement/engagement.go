// Package engagement derives a heuristic attention score from head
// keypoints.
//
// The horizontal offset of the nose from the eye midpoint, normalized by
// eye width, is a cheap proxy for head yaw: near zero when the subject
// faces the camera, growing as the head turns. The per-frame estimate is
// smoothed with an exponentially weighted moving average held by a
// Tracker, so multiple independent trackers can coexist.
package engagement

import (
	"math"

	"github.com/engagecam/engagecam/pkg/pose"
)

// Status labels reported by the tracker.
const (
	StatusScanning      = "Scanning..."
	StatusSearching     = "SEARCHING..."
	StatusNoSubject     = "No Subject"
	StatusLowVisibility = "Low Visibility"
	StatusEngaged       = "ENGAGED"
	StatusDistracted    = "DISTRACTED"
	StatusLookingAway   = "LOOKING AWAY"
)

// Heuristic constants, kept exactly as tuned.
const (
	initialScore       = 100.0
	keepWeight         = 0.8 // weight of the previous smoothed score
	rawWeight          = 0.2 // weight of the new raw estimate
	yawPenalty         = 200.0
	engagedAbove       = 60.0
	distractedAbove    = 30.0
	lowVisibilityScore = 20.0
	minKeypointConf    = 0.5
	absenceDecay       = 5.0
)

// Tracker holds the smoothed attention score and current status for one
// video stream.
type Tracker struct {
	score  float64
	status string
}

// NewTracker returns a tracker in its startup state.
func NewTracker() *Tracker {
	return &Tracker{
		score:  initialScore,
		status: StatusScanning,
	}
}

// Score returns the current smoothed attention score.
func (t *Tracker) Score() float64 {
	return t.score
}

// Status returns the current status label.
func (t *Tracker) Status() string {
	return t.status
}

// hasSubject reports whether the detection carries a usable first
// subject. A subject missing the head keypoints is treated as absent.
func hasSubject(subjects []pose.Subject) bool {
	return len(subjects) > 0 && len(subjects[0].Keypoints) >= 3
}

// Classify scores the first subject of a detection.
//
// The empty and low-visibility branches return fixed scores and leave
// the smoothing state untouched; only the geometric branch folds a new
// raw estimate into the moving average.
func (t *Tracker) Classify(subjects []pose.Subject) (float64, string) {
	if !hasSubject(subjects) {
		return 0, StatusNoSubject
	}

	kp := subjects[0].Keypoints
	nose := kp[pose.KeypointNose]
	leftEye := kp[pose.KeypointLeftEye]
	rightEye := kp[pose.KeypointRightEye]

	if nose.Confidence < minKeypointConf ||
		leftEye.Confidence < minKeypointConf ||
		rightEye.Confidence < minKeypointConf {
		return lowVisibilityScore, StatusLowVisibility
	}

	eyeMidpoint := (leftEye.X + rightEye.X) / 2
	deviation := math.Abs(nose.X - eyeMidpoint)
	eyeWidth := math.Abs(rightEye.X - leftEye.X)

	yawRatio := 1.0
	if eyeWidth > 0 {
		yawRatio = deviation / eyeWidth
	}

	rawScore := math.Max(0, 100-yawRatio*yawPenalty)
	t.score = t.score*keepWeight + rawScore*rawWeight

	switch {
	case t.score > engagedAbove:
		return t.score, StatusEngaged
	case t.score > distractedAbove:
		return t.score, StatusDistracted
	default:
		return t.score, StatusLookingAway
	}
}

// Observe advances the tracker by one frame.
//
// With a subject present the Classify result is adopted as current state,
// fixed override scores included. With no subject the score decays by a
// fixed step, floored at zero, and the status reads as searching.
func (t *Tracker) Observe(subjects []pose.Subject) (float64, string) {
	if !hasSubject(subjects) {
		t.status = StatusSearching
		t.score = math.Max(0, t.score-absenceDecay)
		return t.score, t.status
	}

	score, status := t.Classify(subjects)
	t.score = score
	t.status = status
	return score, status
}
