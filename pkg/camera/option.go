package camera

import (
	"github.com/hashicorp/go-hclog"

	"github.com/gizmo-platform/parker/pkg/metrics"
)

// Option configures the webcam.
type Option func(*Webcam)

// WithLogger sets the logger for the webcam.
func WithLogger(l hclog.Logger) Option { return func(w *Webcam) { w.l = l.Named("camera") } }

// WithMetrics counts dropped frames.
func WithMetrics(m *metrics.Metrics) Option { return func(w *Webcam) { w.metrics = m } }
