package drive

import (
	"context"
	"errors"
	"image"
	"io"
	"time"

	"github.com/gizmo-platform/parker/pkg/camera"
	"github.com/gizmo-platform/parker/pkg/gamepad"
)

// Inputs is where the runner reads the operator's intent each tick.
type Inputs interface {
	Snapshot() gamepad.Snapshot
}

// Run ticks the machine until ctx is cancelled or a tick fails.  A
// frame is pulled from src only when the tick asks for one.  An
// unplugged camera holds the vehicle and is retried.  On the way out
// the vehicle is stopped, and the actuator is closed if it can be.
func (m *Machine) Run(ctx context.Context, in Inputs, src camera.Source) error {
	defer m.shutdown()

	m.l.Info("Control loop starting")
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		err := m.Tick(ctx, in.Snapshot(), lazyFrame(ctx, src))
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, camera.ErrUnplugged):
			m.fault(err)
			m.Hold()
			if !m.sleep(ctx, m.cfg.Timing.CameraRetry.Duration) {
				return nil
			}
			continue
		default:
			m.fault(err)
			return err
		}

		if !m.sleep(ctx, m.cfg.Timing.Tick.Duration) {
			return nil
		}
	}
}

func (m *Machine) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-m.clk.After(d):
		return true
	}
}

func (m *Machine) shutdown() {
	m.l.Info("Control loop stopping")
	m.Hold()
	c, ok := m.act.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		m.l.Warn("Error closing actuator", "error", err)
	}
}

// lazyFrame fetches at most one frame no matter how many times the
// returned function is called.
func lazyFrame(ctx context.Context, src camera.Source) FrameFunc {
	var (
		img  image.Image
		err  error
		done bool
	)
	return func() (image.Image, error) {
		if !done {
			img, err = src.Next(ctx)
			done = true
		}
		return img, err
	}
}
