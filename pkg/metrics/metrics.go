package metrics

import (
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics binds the registry as well as the metrics collection.
type Metrics struct {
	l hclog.Logger

	r *prometheus.Registry

	driveTicks     prometheus.Counter
	driveState     *prometheus.GaugeVec
	driveLineLost  prometheus.Gauge
	driveSteering  prometheus.Gauge
	driveSpeed     prometheus.Gauge
	spotDetections *prometheus.CounterVec
	maneuvers      *prometheus.CounterVec
	framesDropped  prometheus.Counter
	inputReconnect prometheus.Counter
	inputPaused    prometheus.Gauge
}

// Option provides a configuration framework to setup the metrics
// package.
type Option func(m *Metrics)

// States lists the label values of the state gauge, so that all of
// them are exported even before they are entered.
var States = []string{"LINE_FOLLOWING", "COLOR_DETECTED", "COLOR_DISAPPEARED", "PARKED"}

// New returns an initialized instance of the metrics system.
func New(opts ...Option) *Metrics {
	x := &Metrics{
		l: hclog.NewNullLogger(),
		r: prometheus.NewRegistry(),

		driveTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parker",
			Subsystem: "drive",
			Name:      "ticks_total",
			Help:      "Number of control loop ticks run.",
		}),

		driveState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "parker",
			Subsystem: "drive",
			Name:      "state",
			Help:      "Set to 1 for the state the vehicle is currently in.",
		}, []string{"state"}),

		driveLineLost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "parker",
			Subsystem: "drive",
			Name:      "line_lost_ticks",
			Help:      "Consecutive ticks without a line.",
		}),

		driveSteering: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "parker",
			Subsystem: "drive",
			Name:      "steering_position",
			Help:      "Last commanded servo position.",
		}),

		driveSpeed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "parker",
			Subsystem: "drive",
			Name:      "speed_rpm",
			Help:      "Last commanded motor speed.",
		}),

		spotDetections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parker",
			Subsystem: "spot",
			Name:      "detections_total",
			Help:      "Parking spots found, by color and side.",
		}, []string{"color", "side"}),

		maneuvers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parker",
			Subsystem: "trajectory",
			Name:      "replays_total",
			Help:      "Maneuver replays by maneuver and outcome.",
		}, []string{"maneuver", "result"}),

		framesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parker",
			Subsystem: "camera",
			Name:      "frames_dropped_total",
			Help:      "Frames replaced before they were read.",
		}),

		inputReconnect: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parker",
			Subsystem: "input",
			Name:      "reconnects_total",
			Help:      "Times the remote controller was found unplugged.",
		}),

		inputPaused: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "parker",
			Subsystem: "input",
			Name:      "motion_paused",
			Help:      "1 when the operator has paused motion.",
		}),
	}

	x.r.MustRegister(x.driveTicks)
	x.r.MustRegister(x.driveState)
	x.r.MustRegister(x.driveLineLost)
	x.r.MustRegister(x.driveSteering)
	x.r.MustRegister(x.driveSpeed)
	x.r.MustRegister(x.spotDetections)
	x.r.MustRegister(x.maneuvers)
	x.r.MustRegister(x.framesDropped)
	x.r.MustRegister(x.inputReconnect)
	x.r.MustRegister(x.inputPaused)

	for _, s := range States {
		x.driveState.With(prometheus.Labels{"state": s}).Set(0)
	}

	for _, o := range opts {
		o(x)
	}

	return x
}

// Registry provides access to the registry that this instance
// manages.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.r
}

// Tick counts one pass of the control loop.
func (m *Metrics) Tick() {
	m.driveTicks.Inc()
}

// SetState marks state as the current state and clears all others.
func (m *Metrics) SetState(state string) {
	for _, s := range States {
		m.driveState.With(prometheus.Labels{"state": s}).Set(fCast(s == state))
	}
	m.l.Trace("State gauge updated", "state", state)
}

// SetLineLost records the current run of ticks without a line.
func (m *Metrics) SetLineLost(n int) {
	m.driveLineLost.Set(float64(n))
}

// SetCommand records the last commands sent to the drive.
func (m *Metrics) SetCommand(steering float64, speed int) {
	m.driveSteering.Set(steering)
	m.driveSpeed.Set(float64(speed))
}

// SpotDetected counts a parking spot found on the given side.
func (m *Metrics) SpotDetected(color, side string) {
	m.spotDetections.With(prometheus.Labels{"color": color, "side": side}).Inc()
}

// ManeuverReplayed counts a maneuver replay along with whether it
// succeeded.
func (m *Metrics) ManeuverReplayed(maneuver string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.maneuvers.With(prometheus.Labels{"maneuver": maneuver, "result": result}).Inc()
}

// FramesDropped adds n to the dropped frame counter.
func (m *Metrics) FramesDropped(n uint64) {
	m.framesDropped.Add(float64(n))
}

// InputReconnect counts a controller disconnect.
func (m *Metrics) InputReconnect() {
	m.inputReconnect.Inc()
}

// SetPaused records the operator pause flag.
func (m *Metrics) SetPaused(p bool) {
	m.inputPaused.Set(fCast(p))
}

func fCast(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
