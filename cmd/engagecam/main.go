// Engagecam - real-time engagement tracking
//
// Captures the local camera, runs YOLOv8 pose per frame, scores head
// yaw into an attention value, and overlays a HUD in a preview window.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"github.com/engagecam/engagecam/internal/config"
	"github.com/engagecam/engagecam/internal/log"
	"github.com/engagecam/engagecam/pkg/app"
	"github.com/engagecam/engagecam/pkg/capture"
	"github.com/engagecam/engagecam/pkg/pose"
)

const windowTitle = "Real-Time Engagement Tracker - YOLOv8"

var flags struct {
	model    string
	backend  string
	logLevel string
	device   int
	width    int
	height   int
}

func main() {
	// Optional .env for local development; env vars win either way.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "engagecam",
		Short:        "Real-time engagement tracking with a pose-estimation HUD",
		SilenceUsage: true,
		RunE:         run,
	}

	defaults := capture.DefaultConfig()
	root.Flags().StringVar(&flags.model, "model", config.ModelPath(), "path to the YOLOv8 pose ONNX model")
	root.Flags().StringVar(&flags.backend, "backend", config.Backend(), "inference backend (dnn or ort)")
	root.Flags().StringVar(&flags.logLevel, "log-level", config.LogLevel(), "log level (debug, info, warn, error)")
	root.Flags().IntVar(&flags.device, "device", config.DeviceID(), "capture device index")
	root.Flags().IntVar(&flags.width, "width", defaults.Width, "requested frame width")
	root.Flags().IntVar(&flags.height, "height", defaults.Height, "requested frame height")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log.Init(flags.logLevel)

	poseCfg := pose.DefaultConfig()
	poseCfg.ModelPath = flags.model
	if err := poseCfg.Validate(); err != nil {
		return err
	}

	estimator, err := pose.New(flags.backend, poseCfg)
	if err != nil {
		return fmt.Errorf("create estimator: %w", err)
	}
	defer estimator.Close()

	capCfg := capture.DefaultConfig()
	capCfg.DeviceID = flags.device
	capCfg.Width = flags.width
	capCfg.Height = flags.height

	source, err := capture.Open(capCfg)
	if err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer source.Close()

	window := gocv.NewWindow(windowTitle)
	defer window.Close()

	log.Info("starting",
		"backend", flags.backend,
		"model", flags.model,
		"device", flags.device,
		"resolution", fmt.Sprintf("%dx%d", flags.width, flags.height))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.New(source, estimator, window).Run(ctx)
}
