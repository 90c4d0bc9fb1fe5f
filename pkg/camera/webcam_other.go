//go:build !linux

package camera

import (
	"context"
	"errors"
	"image"

	"github.com/hashicorp/go-hclog"

	"github.com/gizmo-platform/parker/pkg/metrics"
)

// Webcam is only available on linux.
type Webcam struct {
	l       hclog.Logger
	metrics *metrics.Metrics
}

// NewWebcam returns a source that always fails.
func NewWebcam(device string, width, height, fps, depth int, opts ...Option) *Webcam {
	w := &Webcam{l: hclog.NewNullLogger()}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Next always fails: V4L2 capture needs linux.
func (w *Webcam) Next(context.Context) (image.Image, error) {
	return nil, errors.New("webcam capture is only supported on linux")
}

// Close does nothing.
func (w *Webcam) Close() error { return nil }
