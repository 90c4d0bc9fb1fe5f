package trajectory

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/gizmo-platform/parker/pkg/config"
	"github.com/gizmo-platform/parker/pkg/metrics"
)

// ManeuverPublisher is told when a maneuver starts.
type ManeuverPublisher interface {
	PublishManeuver(maneuver, id string)
}

// Player replays trajectories into an actuator, holding every command
// for as long as it was held when it was recorded.
type Player struct {
	l       hclog.Logger
	clk     clock.Clock
	metrics *metrics.Metrics
	es      ManeuverPublisher

	store    Store
	steering config.SteeringRange
	speed    config.SpeedRange
}

// PlayerOption configures the Player.
type PlayerOption func(*Player)

// WithLogger sets the logger for the player.
func WithLogger(l hclog.Logger) PlayerOption {
	return func(p *Player) {
		p.l = l.Named("trajectory")
	}
}

// WithClock sets the clock used to pace replays.
func WithClock(c clock.Clock) PlayerOption {
	return func(p *Player) {
		p.clk = c
	}
}

// WithMetrics counts replays.
func WithMetrics(m *metrics.Metrics) PlayerOption {
	return func(p *Player) {
		p.metrics = m
	}
}

// WithEventStreamer announces replays.
func WithEventStreamer(es ManeuverPublisher) PlayerOption {
	return func(p *Player) {
		p.es = es
	}
}

type nullPublisher struct{}

func (nullPublisher) PublishManeuver(_, _ string) {}

// NewPlayer returns a player that loads maneuvers from store and
// keeps commands inside the given ranges.
func NewPlayer(store Store, steering config.SteeringRange, speed config.SpeedRange, opts ...PlayerOption) *Player {
	p := &Player{
		l:        hclog.NewNullLogger(),
		clk:      clock.New(),
		metrics:  metrics.New(),
		es:       nullPublisher{},
		store:    store,
		steering: steering,
		speed:    speed,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Load fetches a maneuver from the store.
func (p *Player) Load(m Maneuver) (Trajectory, error) {
	return p.store.Load(m)
}

// ReplayManeuver loads and replays a maneuver.  A maneuver that can't
// be loaded is reported before any command is sent.
func (p *Player) ReplayManeuver(ctx context.Context, m Maneuver, act Actuator) error {
	t, err := p.store.Load(m)
	if err != nil {
		p.l.Error("Could not load maneuver", "maneuver", m, "error", err)
		p.metrics.ManeuverReplayed(string(m), err)
		return err
	}
	return p.ReplayNamed(ctx, m, t, act)
}

// ReplayNamed replays an already loaded maneuver.
func (p *Player) ReplayNamed(ctx context.Context, m Maneuver, t Trajectory, act Actuator) error {
	id := uuid.New().String()
	p.es.PublishManeuver(string(m), id)
	p.l.Info("Starting maneuver", "maneuver", m, "id", id, "points", len(t), "seconds", t.Duration())

	err := p.Replay(ctx, t, act)
	p.metrics.ManeuverReplayed(string(m), err)
	if err != nil {
		p.l.Warn("Maneuver interrupted", "maneuver", m, "id", id, "error", err)
		return err
	}
	p.l.Info("Maneuver complete", "maneuver", m, "id", id)
	return nil
}

// Replay sends each point but the last to the actuator and waits
// until the next point is due.  The wait is the recorded gap, so time
// spent sending doesn't stretch the maneuver.  The vehicle is always
// stopped afterwards, even if ctx ends the replay early.
func (p *Player) Replay(ctx context.Context, t Trajectory, act Actuator) error {
	defer p.stop(act)

	for i := 0; i+1 < len(t); i++ {
		cur, next := t[i], t[i+1]

		steering := p.ClampSteering(cur.Steering)
		speed := p.ClampSpeed(cur.Speed)
		p.send(act, steering, speed)

		wait := time.Duration((next.Time - cur.Time) * float64(time.Second))
		if wait <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.clk.After(wait):
		}
	}
	return nil
}

// ClampSteering limits a servo position to the safe range.  NaN is
// treated as neutral.
func (p *Player) ClampSteering(s float64) float64 {
	if math.IsNaN(s) {
		return p.steering.Neutral
	}
	return max(p.steering.Left, min(p.steering.Right, s))
}

// ClampSpeed limits a speed to the range between full reverse and
// full forward, truncating any fraction.  NaN is treated as stopped.
func (p *Player) ClampSpeed(s float64) int {
	if math.IsNaN(s) {
		return 0
	}
	return int(max(float64(p.speed.ReverseMin), min(float64(p.speed.ForwardMax), s)))
}

func (p *Player) send(act Actuator, steering float64, speed int) {
	if err := act.SetSteering(steering); err != nil {
		p.l.Warn("Steering command failed", "error", err)
	}
	if err := act.SetSpeed(speed); err != nil {
		p.l.Warn("Speed command failed", "error", err)
	}
	p.metrics.SetCommand(steering, speed)
}

func (p *Player) stop(act Actuator) {
	if err := act.SetSpeed(0); err != nil {
		p.l.Warn("Stop command failed", "error", err)
	}
	if err := act.SetSteering(p.steering.Neutral); err != nil {
		p.l.Warn("Stop command failed", "error", err)
	}
	p.metrics.SetCommand(p.steering.Neutral, 0)
}
