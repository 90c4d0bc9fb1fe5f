// Package rc drives the vehicle by hand from the gamepad.  It is
// used to move the vehicle around and to record maneuvers.
package rc

import (
	"context"
	"errors"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/go-hclog"

	"github.com/gizmo-platform/parker/pkg/config"
	"github.com/gizmo-platform/parker/pkg/gamepad"
	"github.com/gizmo-platform/parker/pkg/trajectory"
	"github.com/gizmo-platform/parker/pkg/watchdog"
)

const (
	axisMin = -32768
	axisMax = 32767

	// Triggers rest at the bottom of the axis.  Anything this close
	// to released counts as released.
	triggerDeadzone = 0.05
)

// Driver maps gamepad input onto steering and speed.
type Driver struct {
	l   hclog.Logger
	clk clock.Clock

	src gamepad.Source
	act trajectory.Actuator
	dog *watchdog.Dog

	steering config.SteeringRange
	speed    config.SpeedRange
	axes     config.Gamepad
	timeout  config.Duration

	mu       sync.Mutex
	position float64
	forward  float64
	reverse  float64
	command  int
}

// New returns a driver reading src and commanding act.
func New(cfg *config.Config, src gamepad.Source, act trajectory.Actuator, opts ...Option) *Driver {
	d := &Driver{
		l:        hclog.NewNullLogger(),
		clk:      clock.New(),
		src:      src,
		act:      act,
		steering: cfg.Steering,
		speed:    cfg.Speed,
		axes:     cfg.Gamepad,
		timeout:  cfg.Timing.SafetyTimeout,
		position: cfg.Steering.Neutral,
	}
	for _, o := range opts {
		o(d)
	}
	d.dog = watchdog.New(
		watchdog.WithName("rc"),
		watchdog.WithLogger(d.l),
		watchdog.WithClock(d.clk),
		watchdog.WithFoodDuration(d.timeout.Duration),
		watchdog.WithHandFunction(d.safetyStop),
	)
	return d
}

// Run drives until ctx is cancelled, then stops the vehicle with the
// wheels straight.
func (d *Driver) Run(ctx context.Context) error {
	defer d.dog.Stop()
	defer d.stop()

	d.l.Info("Use the left stick to steer, RT to drive forward and LT to reverse")
	for {
		events, err := d.src.Poll(ctx)
		switch {
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, gamepad.ErrUnplugged):
			d.l.Warn("Controller disconnected")
		case err != nil:
			return err
		default:
			d.dog.Feed()
			d.apply(events)
		}

		if err := d.act.SetSpeed(d.Speed()); err != nil {
			d.l.Warn("Speed command failed", "error", err)
		}
	}
}

func (d *Driver) apply(events []gamepad.Event) {
	for _, ev := range events {
		if ev.Kind != gamepad.Axis {
			continue
		}
		switch ev.Code {
		case d.axes.SteeringAxis:
			pos := SteeringFor(ev.Value, d.steering)
			d.mu.Lock()
			d.position = pos
			d.mu.Unlock()
			d.l.Trace("Steering", "raw", ev.Value, "servo", pos)
			if err := d.act.SetSteering(pos); err != nil {
				d.l.Warn("Steering command failed", "error", err)
			}
		case d.axes.ForwardAxis:
			d.mu.Lock()
			d.forward = trigger(ev.Value)
			d.mu.Unlock()
		case d.axes.ReverseAxis:
			d.mu.Lock()
			d.reverse = trigger(ev.Value)
			d.mu.Unlock()
		}
	}
}

// safetyStop releases both triggers when the controller has been
// silent for too long.
func (d *Driver) safetyStop() {
	d.l.Warn("Safety timeout: no controller input, stopping motor")
	d.mu.Lock()
	defer d.mu.Unlock()
	d.forward = 0
	d.reverse = 0
}

func (d *Driver) stop() {
	if err := d.act.SetSpeed(0); err != nil {
		d.l.Warn("Error stopping motor", "error", err)
	}
	if err := d.act.SetSteering(d.steering.Neutral); err != nil {
		d.l.Warn("Error centering steering", "error", err)
	}
	d.l.Info("Motor stopped, steering reset")
}

// Speed is the motor command for the current trigger positions.
func (d *Driver) Speed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.command = SpeedFor(d.forward, d.reverse, d.speed)
	return d.command
}

// Sample returns the last steering and speed commands.  It is a
// trajectory.Sampler.
func (d *Driver) Sample() (float64, float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position, float64(d.command)
}

// SteeringFor maps a raw stick value onto the servo range.
func SteeringFor(raw int, r config.SteeringRange) float64 {
	n := normalize(float64(raw), axisMin, axisMax, -1, 1)
	pos := normalize(n, -1, 1, r.Left, r.Right)
	return max(r.Left, min(r.Right, pos))
}

// SpeedFor maps trigger positions in [0,1] onto a motor command.
// Both triggers together mean no throttle.
func SpeedFor(forward, reverse float64, r config.SpeedRange) int {
	switch {
	case forward > 0 && reverse > 0:
		return 0
	case forward > 0:
		return int(scale(forward, float64(r.ForwardMin), float64(r.ForwardMax)))
	case reverse > 0:
		return int(scale(reverse, float64(r.ReverseMin), float64(r.ReverseMax)))
	default:
		return 0
	}
}

func trigger(raw int) float64 {
	v := normalize(float64(raw), axisMin, axisMax, 0, 1)
	if v < triggerDeadzone {
		return 0
	}
	return min(v, 1)
}

func normalize(v, minRaw, maxRaw, minNorm, maxNorm float64) float64 {
	return (v-minRaw)/(maxRaw-minRaw)*(maxNorm-minNorm) + minNorm
}

func scale(v, lo, hi float64) float64 {
	return v*(hi-lo) + lo
}
