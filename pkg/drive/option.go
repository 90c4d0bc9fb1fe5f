package drive

import (
	"github.com/benbjohnson/clock"
	"github.com/hashicorp/go-hclog"

	"github.com/gizmo-platform/parker/pkg/metrics"
	"github.com/gizmo-platform/parker/pkg/trajectory"
)

// Option configures the Machine.
type Option func(*Machine)

// WithLogger sets the logger for the machine.
func WithLogger(l hclog.Logger) Option {
	return func(m *Machine) {
		m.l = l.Named("drive")
	}
}

// WithClock sets the clock used for the settle window.
func WithClock(c clock.Clock) Option {
	return func(m *Machine) {
		m.clk = c
	}
}

// WithMetrics reports the machine's progress.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Machine) {
		m.metrics = mt
	}
}

// WithEventStreamer sends status lines to the given streamer.
func WithEventStreamer(es EventStreamer) Option {
	return func(m *Machine) {
		m.es = es
	}
}

// WithDetector replaces the spot detector built from the config.
func WithDetector(d Detector) Option {
	return func(m *Machine) {
		m.detector = d
	}
}

// WithPlayer replaces the trajectory player built from the config.
func WithPlayer(p Player) Option {
	return func(m *Machine) {
		m.player = p
	}
}

// WithUTurn provides a U-turn loaded ahead of time, so the turn does
// not wait on the disk when the endpoint is reached.
func WithUTurn(t trajectory.Trajectory) Option {
	return func(m *Machine) {
		m.uturn = t
	}
}
