// Package hud renders the engagement overlay onto captured frames.
//
// Geometry and palette follow the original tracker UI: cyan corner
// borders, a magenta gaze triangle over the face, and an attention bar
// with score-dependent color.
package hud

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/engagecam/engagecam/pkg/pose"
)

// Palette.
var (
	cyan    = color.RGBA{R: 0, G: 255, B: 255}
	magenta = color.RGBA{R: 255, G: 0, B: 255}
	green   = color.RGBA{R: 0, G: 255, B: 0}
	red     = color.RGBA{R: 255, G: 0, B: 0}
	white   = color.RGBA{R: 255, G: 255, B: 255}
	gray    = color.RGBA{R: 150, G: 150, B: 150}
	barBack = color.RGBA{R: 50, G: 50, B: 50}
)

const (
	borderInset = 20
	borderArm   = 80
	meshMinConf = 0.5

	barWidth  = 300
	barHeight = 20
	barX      = 50
)

// BarColor returns the attention bar color for a score. The thresholds
// here are looser than the status thresholds on purpose: the bar shifts
// color before the status label does.
func BarColor(score float64) color.RGBA {
	switch {
	case score > 70:
		return green
	case score > 40:
		return cyan
	default:
		return red
	}
}

// DrawOverlay renders the tech borders and the face mesh for a subject.
func DrawOverlay(frame *gocv.Mat, subject pose.Subject) {
	drawBorders(frame)
	drawFaceMesh(frame, subject)
}

// drawBorders draws the corner brackets around the frame edge.
func drawBorders(frame *gocv.Mat) {
	w := frame.Cols()
	h := frame.Rows()
	in := borderInset
	arm := borderInset + borderArm

	corners := [][2]image.Point{
		{image.Pt(in, in), image.Pt(arm, in)},
		{image.Pt(in, in), image.Pt(in, arm)},
		{image.Pt(w-in, in), image.Pt(w-arm, in)},
		{image.Pt(w-in, in), image.Pt(w-in, arm)},
		{image.Pt(in, h-in), image.Pt(arm, h-in)},
		{image.Pt(in, h-in), image.Pt(in, h-arm)},
		{image.Pt(w-in, h-in), image.Pt(w-arm, h-in)},
		{image.Pt(w-in, h-in), image.Pt(w-in, h-arm)},
	}

	for _, c := range corners {
		gocv.Line(frame, c[0], c[1], cyan, 2)
	}
}

// drawFaceMesh connects the nose and eyes into a gaze triangle and dots
// the visible head keypoints.
func drawFaceMesh(frame *gocv.Mat, subject pose.Subject) {
	kp := subject.Keypoints
	if len(kp) <= pose.KeypointRightEar {
		return
	}

	nose := kp[pose.KeypointNose]
	leftEye := kp[pose.KeypointLeftEye]
	rightEye := kp[pose.KeypointRightEye]

	if nose.Confidence > meshMinConf && leftEye.Confidence > meshMinConf && rightEye.Confidence > meshMinConf {
		n := image.Pt(int(nose.X), int(nose.Y))
		l := image.Pt(int(leftEye.X), int(leftEye.Y))
		r := image.Pt(int(rightEye.X), int(rightEye.Y))

		gocv.Line(frame, n, l, magenta, 1)
		gocv.Line(frame, n, r, magenta, 1)
		gocv.Line(frame, l, r, magenta, 1)
	}

	for i := pose.KeypointNose; i <= pose.KeypointRightEar; i++ {
		if kp[i].Confidence > meshMinConf {
			gocv.Circle(frame, image.Pt(int(kp[i].X), int(kp[i].Y)), 3, cyan, -1)
		}
	}
}

// DrawStatus renders the attention bar, score and status labels, and the
// system tag.
func DrawStatus(frame *gocv.Mat, score float64, status string) {
	w := frame.Cols()
	h := frame.Rows()
	barY := h - 50

	fill := int(score / 100 * barWidth)
	if fill < 0 {
		fill = 0
	}
	if fill > barWidth {
		fill = barWidth
	}
	c := BarColor(score)

	gocv.Rectangle(frame, image.Rect(barX, barY, barX+barWidth, barY+barHeight), barBack, -1)
	if fill > 0 {
		gocv.Rectangle(frame, image.Rect(barX, barY, barX+fill, barY+barHeight), c, -1)
	}
	gocv.Rectangle(frame, image.Rect(barX, barY, barX+barWidth, barY+barHeight), white, 1)

	gocv.PutText(frame, fmt.Sprintf("ATTENTION: %d%%", int(score)),
		image.Pt(barX, barY-10), gocv.FontHersheySimplex, 0.6, c, 2)
	gocv.PutText(frame, fmt.Sprintf("STATUS: %s", status),
		image.Pt(50, 80), gocv.FontHersheySimplex, 0.8, c, 2)
	gocv.PutText(frame, "AI-VISION-SYS v1.0",
		image.Pt(w-200, h-30), gocv.FontHersheySimplex, 0.5, gray, 1)
}
