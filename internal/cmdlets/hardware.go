package cmdlets

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gizmo-platform/parker/pkg/camera"
	"github.com/gizmo-platform/parker/pkg/config"
	"github.com/gizmo-platform/parker/pkg/gamepad"
	"github.com/gizmo-platform/parker/pkg/metrics"
	"github.com/gizmo-platform/parker/pkg/vesc"
)

// signalContext is cancelled on the first interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newVESC(cfg *config.Config) *vesc.VESC {
	return vesc.New(
		vesc.WithLogger(appLogger),
		vesc.WithPort(cfg.VESC.Port),
		vesc.WithBaud(cfg.VESC.Baud),
	)
}

// newJoystick binds the configured controller.  A controller that
// isn't plugged in yet is not an error, it is bound when it shows up.
func newJoystick(cfg *config.Config) *gamepad.JSController {
	jsc := gamepad.NewJSController(gamepad.WithLogger(appLogger))
	if err := jsc.BindController(cfg.Gamepad.ID); err != nil {
		appLogger.Warn("Controller not available yet", "error", err)
	}
	return jsc
}

// newCamera opens the webcam, or replays still images from a
// directory when one is given.
func newCamera(cfg *config.Config, m *metrics.Metrics, images string) (camera.Source, func(), error) {
	if images != "" {
		src, err := camera.NewDirSource(images)
		return src, func() {}, err
	}
	w := camera.NewWebcam(
		cfg.Camera.Device,
		cfg.Camera.Width,
		cfg.Camera.Height,
		cfg.Camera.FPS,
		cfg.Camera.QueueDepth,
		camera.WithLogger(appLogger),
		camera.WithMetrics(m),
	)
	return w, func() { w.Close() }, nil
}
