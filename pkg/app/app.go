// Package app runs the per-frame capture, inference, and render loop.
package app

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/engagecam/engagecam/internal/log"
	"github.com/engagecam/engagecam/pkg/capture"
	"github.com/engagecam/engagecam/pkg/engagement"
	"github.com/engagecam/engagecam/pkg/hud"
	"github.com/engagecam/engagecam/pkg/pose"
)

const keyEscape = 27

// App owns the single-threaded frame pipeline: capture, pose inference,
// engagement scoring, HUD rendering, display.
type App struct {
	source    *capture.Source
	estimator pose.Estimator
	tracker   *engagement.Tracker
	window    *gocv.Window
	log       *slog.Logger
}

// New assembles the pipeline around an opened source, estimator, and
// window. The caller keeps ownership of all three and closes them.
func New(source *capture.Source, estimator pose.Estimator, window *gocv.Window) *App {
	return &App{
		source:    source,
		estimator: estimator,
		tracker:   engagement.NewTracker(),
		window:    window,
		log:       log.With("session_id", uuid.NewString()),
	}
}

// Run blocks in the frame loop until the context is cancelled, Escape is
// pressed, or frame acquisition fails. Each iteration blocks in turn on
// capture, inference, and display; there is no overlap and no retry.
func (a *App) Run(ctx context.Context) error {
	frame := gocv.NewMat()
	defer frame.Close()

	a.log.Info("engagement loop started")

	for {
		select {
		case <-ctx.Done():
			a.log.Info("engagement loop cancelled")
			return nil
		default:
		}

		if !a.source.Read(&frame) {
			a.log.Warn("frame acquisition failed, stopping")
			return nil
		}

		// Mirror for a natural selfie view.
		gocv.Flip(frame, &frame, 1)

		subjects, err := a.estimator.Detect(frame)
		if err != nil {
			// Inference failure is a per-frame condition, not fatal.
			a.log.Debug("inference failed", "error", err)
			subjects = nil
		}

		score, status := a.tracker.Observe(subjects)

		if len(subjects) > 0 {
			hud.DrawOverlay(&frame, subjects[0])
		}
		hud.DrawStatus(&frame, score, status)

		a.window.IMShow(frame)
		if a.window.WaitKey(1) == keyEscape {
			a.log.Info("escape pressed, stopping", "score", score, "status", status)
			return nil
		}
	}
}
