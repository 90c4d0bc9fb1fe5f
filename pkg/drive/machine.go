// Package drive decides, once per camera frame, what the vehicle
// should do: follow the line, stop for a parking spot, run a recorded
// maneuver, or hold still for the operator.
package drive

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/go-hclog"

	"github.com/gizmo-platform/parker/pkg/config"
	"github.com/gizmo-platform/parker/pkg/eventstream"
	"github.com/gizmo-platform/parker/pkg/gamepad"
	"github.com/gizmo-platform/parker/pkg/metrics"
	"github.com/gizmo-platform/parker/pkg/spot"
	"github.com/gizmo-platform/parker/pkg/trajectory"
	"github.com/gizmo-platform/parker/pkg/vision"
)

// Controls is the part of the input channel the state machine is
// allowed to change.
type Controls interface {
	SetMotionPaused(bool)
	ClearRequestedColor()
}

// Detector finds parking spot markers.
type Detector interface {
	DetectSpot(color string, img image.Image) (bool, spot.Side)
	ColorInRow(color string, img image.Image, row int) bool
}

// Player runs recorded maneuvers.
type Player interface {
	ReplayManeuver(context.Context, trajectory.Maneuver, trajectory.Actuator) error
	ReplayNamed(context.Context, trajectory.Maneuver, trajectory.Trajectory, trajectory.Actuator) error
}

// EventStreamer receives human readable status as the vehicle runs.
type EventStreamer interface {
	PublishError(error)
	PublishLogLine(string)
	PublishStateChange(from, to, side string)
	PublishDetection(color, side string)
}

// FrameFunc returns the frame for the current tick.  It is only
// called when the tick needs to look at the track.
type FrameFunc func() (image.Image, error)

// Status is a copy of what the machine is doing, for display.
type Status struct {
	State          string
	Side           string
	Paused         bool
	RequestedColor string
	LineLost       int
	Steering       float64
	Speed          int
}

// Machine is the drive state machine.  Tick is not safe for
// concurrent use; Status may be called from anywhere.
type Machine struct {
	l       hclog.Logger
	clk     clock.Clock
	metrics *metrics.Metrics
	es      EventStreamer

	cfg        *config.Config
	act        trajectory.Actuator
	controls   Controls
	perception *vision.Perception
	detector   Detector
	player     Player
	uturn      trajectory.Trajectory

	phase    phase
	paused   bool
	lost     int
	followed bool

	sMutex sync.Mutex
	status Status
}

// New returns a machine in the line following state.
func New(cfg *config.Config, act trajectory.Actuator, controls Controls, opts ...Option) *Machine {
	m := &Machine{
		l:          hclog.NewNullLogger(),
		clk:        clock.New(),
		metrics:    metrics.New(),
		es:         eventstream.NewNullStreamer(),
		cfg:        cfg,
		act:        act,
		controls:   controls,
		perception: vision.New(cfg.Colors[cfg.LineColor]),
		phase:      lineFollowing{},
	}
	for _, o := range opts {
		o(m)
	}
	if m.detector == nil {
		m.detector = spot.New(cfg.Grid, cfg.Colors, spot.WithLogger(m.l))
	}
	if m.player == nil {
		m.player = trajectory.NewPlayer(
			trajectory.NewDirStore(cfg.Recordings),
			cfg.Steering,
			cfg.Speed,
			trajectory.WithLogger(m.l),
			trajectory.WithClock(m.clk),
			trajectory.WithMetrics(m.metrics),
		)
	}
	m.status.State = LineFollowing.String()
	m.status.Side = spot.None.String()
	m.metrics.SetState(LineFollowing.String())
	return m
}

// State returns the current state.
func (m *Machine) State() RobotState {
	return m.phase.state()
}

// Side returns the side of the spot being parked in, if any.
func (m *Machine) Side() spot.Side {
	return m.phase.side()
}

// Status returns a copy of the last tick's outcome.
func (m *Machine) Status() Status {
	m.sMutex.Lock()
	defer m.sMutex.Unlock()
	return m.status
}

// Tick runs one pass of the control loop against a snapshot of the
// operator controls taken at the start of the tick.  An error means
// the loop should not continue, except for a camera that has been
// unplugged, which the runner retries.
func (m *Machine) Tick(ctx context.Context, snap gamepad.Snapshot, frame FrameFunc) error {
	m.metrics.Tick()
	defer m.publishStatus(snap)

	if snap.MotionPaused != m.paused {
		m.paused = snap.MotionPaused
		if m.paused {
			m.say("Motion paused")
			m.followed = false
		} else {
			m.say("Motion resumed")
			if done, err := m.resumed(ctx); done || err != nil {
				return err
			}
		}
	}

	if m.paused {
		m.Hold()
		return nil
	}

	color := snap.RequestedColor
	if color != "" {
		if _, ok := m.phase.(lineFollowing); ok {
			img, err := frame()
			if err != nil {
				return err
			}
			if found, side := m.detector.DetectSpot(color, img); found {
				m.say(fmt.Sprintf("Detected %s spot on %s side, stopping", color, side))
				m.es.PublishDetection(color, side.String())
				m.metrics.SpotDetected(color, side.String())
				m.command(m.cfg.Steering.Neutral, 0)
				m.transition(settling{since: m.clk.Now(), at: side})
			}
		}
	}

	if s, ok := m.phase.(settling); ok {
		if m.clk.Since(s.since) < m.cfg.Timing.Settle.Duration {
			return nil
		}
		m.say("Resuming line following after pause")
		m.command(m.cfg.Steering.Neutral, m.cfg.Speed.ForwardMin)
		m.transition(colorDetected{at: s.at})
	}

	if d, ok := m.phase.(colorDetected); ok && color != "" {
		img, err := frame()
		if err != nil {
			return err
		}
		top := m.detector.ColorInRow(color, img, 1)
		bottom := m.detector.ColorInRow(color, img, 3)
		if bottom && !top {
			m.say(fmt.Sprintf("%s spot only visible in the bottom row, waiting for operator", color))
			m.command(m.cfg.Steering.Neutral, 0)
			m.forcePause(true)
			m.transition(colorDisappeared{at: d.at})
			return nil
		}
	}

	switch m.phase.(type) {
	case lineFollowing, colorDetected:
		return m.followLine(ctx, frame)
	}
	return nil
}

// resumed handles the operator releasing the pause.  done is true if
// a maneuver ran, which ends the tick.
func (m *Machine) resumed(ctx context.Context) (bool, error) {
	switch p := m.phase.(type) {
	case colorDisappeared:
		man, err := trajectory.ParkingFor(p.at)
		if err != nil {
			return true, err
		}
		m.say(fmt.Sprintf("Executing %s", man))
		if err := m.player.ReplayManeuver(ctx, man, m.act); err != nil {
			if ctx.Err() != nil {
				return true, err
			}
			m.fault(fmt.Errorf("parking aborted: %w", err))
			m.forcePause(true)
			return true, nil
		}
		m.forcePause(true)
		m.transition(parked{at: p.at})
		m.say("Parking done, resume again to exit")
		return true, nil
	case parked:
		man, err := trajectory.ExitFor(p.at)
		if err != nil {
			return true, err
		}
		m.say(fmt.Sprintf("Executing %s", man))
		if err := m.player.ReplayManeuver(ctx, man, m.act); err != nil {
			if ctx.Err() != nil {
				return true, err
			}
			m.fault(fmt.Errorf("exit aborted: %w", err))
			m.forcePause(true)
			return true, nil
		}
		m.controls.ClearRequestedColor()
		m.transition(lineFollowing{})
		m.forcePause(false)
		m.say("Exit done, resuming line following")
		return true, nil
	}
	return false, nil
}

func (m *Machine) followLine(ctx context.Context, frame FrameFunc) error {
	img, err := frame()
	if err != nil {
		return err
	}
	cropped := vision.Crop(img, m.cfg.Lines.Horizontal)
	mask := m.perception.LineMask(cropped)

	if vision.EndpointReached(mask, m.cfg.Lines.Line1, m.cfg.Lines.Line2) {
		m.say("Endpoint detected, performing U-turn")
		if m.uturn != nil {
			err = m.player.ReplayNamed(ctx, trajectory.UTurn, m.uturn, m.act)
		} else {
			err = m.player.ReplayManeuver(ctx, trajectory.UTurn, m.act)
		}
		if err != nil && ctx.Err() == nil {
			m.fault(fmt.Errorf("u-turn aborted: %w", err))
			m.Hold()
			return nil
		}
		return err
	}

	cx, ok := vision.LinePosition(mask)
	if ok {
		m.lost = 0
		m.metrics.SetLineLost(0)
		offset := vision.SteeringOffset(cx, mask.Width, m.cfg.Centerline)
		m.command(m.SteeringFor(offset), m.cfg.Speed.ForwardMin)
		if !m.followed {
			m.say("Following line")
			m.followed = true
		}
		return nil
	}

	m.lost++
	m.metrics.SetLineLost(m.lost)
	m.l.Warn("Line lost", "frames", m.lost)
	if m.lost > m.cfg.LineLostThreshold {
		m.l.Warn("Line lost beyond threshold, stopping")
		m.command(m.cfg.Steering.Neutral, 0)
		return nil
	}
	m.command(m.cfg.Steering.Neutral, m.cfg.Speed.ForwardMin/2)
	return nil
}

// SteeringFor converts a steering offset into a clamped servo
// position.
func (m *Machine) SteeringFor(offset float64) float64 {
	s := m.cfg.Steering
	pos := s.Neutral + offset*(s.Right-s.Neutral)
	return max(s.Left, min(s.Right, pos))
}

// Hold stops the vehicle with the wheels straight.
func (m *Machine) Hold() {
	m.command(m.cfg.Steering.Neutral, 0)
}

func (m *Machine) command(steering float64, speed int) {
	if err := m.act.SetSteering(steering); err != nil {
		m.l.Warn("Steering command failed", "error", err)
	}
	if err := m.act.SetSpeed(speed); err != nil {
		m.l.Warn("Speed command failed", "error", err)
	}
	m.metrics.SetCommand(steering, speed)

	m.sMutex.Lock()
	m.status.Steering = steering
	m.status.Speed = speed
	m.sMutex.Unlock()
}

func (m *Machine) forcePause(p bool) {
	m.controls.SetMotionPaused(p)
	m.paused = p
}

func (m *Machine) transition(next phase) {
	from := m.phase.state()
	m.phase = next
	to := next.state()
	if from == to {
		return
	}
	m.l.Info("State change", "from", from, "to", to, "side", next.side())
	m.es.PublishStateChange(from.String(), to.String(), next.side().String())
	m.metrics.SetState(to.String())
}

func (m *Machine) say(msg string) {
	m.l.Info(msg)
	m.es.PublishLogLine(msg)
}

func (m *Machine) fault(err error) {
	m.l.Error("Fault", "error", err)
	m.es.PublishError(err)
}

func (m *Machine) publishStatus(snap gamepad.Snapshot) {
	m.sMutex.Lock()
	defer m.sMutex.Unlock()
	m.status.State = m.phase.state().String()
	m.status.Side = m.phase.side().String()
	m.status.Paused = m.paused
	m.status.RequestedColor = snap.RequestedColor
	m.status.LineLost = m.lost
}
