package cmdlets

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gizmo-platform/parker/pkg/drive"
	"github.com/gizmo-platform/parker/pkg/eventstream"
	"github.com/gizmo-platform/parker/pkg/gamepad"
	phttp "github.com/gizmo-platform/parker/pkg/http"
	"github.com/gizmo-platform/parker/pkg/metrics"
	"github.com/gizmo-platform/parker/pkg/trajectory"
)

var (
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Follow the line and park on request",
		Long:  runCmdLongDocs,
		Run:   runCmdRun,
	}

	runCmdLongDocs = `run is the main vehicle process.  After startup it waits for the operator to press pause, then follows the line.  Pressing a color button asks the vehicle to find a spot of that color; once it has pulled alongside, pressing pause again parks, and one more press leaves the spot.

Use --images to drive from a directory of still frames instead of the camera, which is useful for checking a config on the bench.`

	runImages string
)

func init() {
	runCmd.Flags().StringVar(&runImages, "images", "", "Directory of frames to use instead of the camera")
	rootCmd.AddCommand(runCmd)
}

func runCmdRun(c *cobra.Command, args []string) {
	os.Exit(func() int {
		cfg, err := loadConfig()
		if err != nil {
			appLogger.Error("Error loading config", "error", err)
			return 1
		}
		initLogger("parker", cfg.Log)

		ctx, cancel := signalContext()
		defer cancel()

		m := metrics.New(metrics.WithLogger(appLogger))
		es := eventstream.New(appLogger)
		appLogger.Info("Starting run", "run", es.RunID())

		jsc := newJoystick(cfg)
		defer jsc.Close()
		ch := gamepad.NewChannel(jsc,
			gamepad.WithChannelLogger(appLogger),
			gamepad.WithMetrics(m),
			gamepad.WithDebounce(cfg.Timing.Debounce.Duration),
			gamepad.WithRetryInterval(cfg.Timing.InputRetry.Duration),
			gamepad.WithPauseButton(cfg.Gamepad.PauseButton),
			gamepad.WithColorButtons(cfg.Gamepad.ColorButtons),
		)
		ch.Start()
		defer ch.Stop()

		cam, closeCam, err := newCamera(cfg, m, runImages)
		if err != nil {
			appLogger.Error("Error opening camera", "error", err)
			return 1
		}
		defer closeCam()

		player := trajectory.NewPlayer(
			trajectory.NewDirStore(cfg.Recordings),
			cfg.Steering,
			cfg.Speed,
			trajectory.WithLogger(appLogger),
			trajectory.WithMetrics(m),
			trajectory.WithEventStreamer(es),
		)
		uturn, err := player.Load(trajectory.UTurn)
		if err != nil {
			appLogger.Error("The U-turn must be recorded before running", "error", err)
			return 1
		}

		v := newVESC(cfg)
		machine := drive.New(cfg, v, ch,
			drive.WithLogger(appLogger),
			drive.WithMetrics(m),
			drive.WithEventStreamer(es),
			drive.WithPlayer(player),
			drive.WithUTurn(uturn),
		)

		if cfg.StatusAddr != "" {
			srv, err := phttp.NewServer(
				phttp.WithLogger(appLogger),
				phttp.WithPrometheusRegistry(m.Registry()),
				phttp.WithConfig(cfg),
				phttp.WithStatusReporter(machine),
				phttp.WithInputController(ch),
				phttp.WithEventStreamer(es),
			)
			if err != nil {
				appLogger.Error("Error creating status server", "error", err)
				return 1
			}
			printHUDCode(cfg, os.Stdout)
			go func() {
				if err := srv.Serve(cfg.StatusAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					appLogger.Error("Status server failed", "error", err)
				}
			}()
			defer func() {
				sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer scancel()
				srv.Shutdown(sctx)
			}()
		}

		appLogger.Info("Press pause to start")
		es.PublishLogLine("Waiting for the start signal")
		if err := ch.WaitForStart(ctx); err != nil {
			appLogger.Info("Shutdown requested before start")
			return 0
		}

		if err := v.Connect(ctx); err != nil {
			appLogger.Error("Could not connect to VESC", "error", err)
			return 1
		}

		if err := machine.Run(ctx, ch, cam); err != nil {
			appLogger.Error("Control loop failed", "error", err)
			return 2
		}
		appLogger.Info("Shutdown requested")
		return 0
	}())
}
