package trajectory

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/go-hclog"
)

// Sampler returns the steering and speed currently being commanded.
type Sampler func() (steering float64, speed float64)

// Recorder samples the commands sent during manual driving and writes
// them out as a trajectory.
type Recorder struct {
	l        hclog.Logger
	clk      clock.Clock
	interval time.Duration
}

// RecorderOption configures the Recorder.
type RecorderOption func(*Recorder)

// WithRecorderLogger sets the logger for the recorder.
func WithRecorderLogger(l hclog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.l = l.Named("recorder")
	}
}

// WithRecorderClock sets the clock the recorder samples on.
func WithRecorderClock(c clock.Clock) RecorderOption {
	return func(r *Recorder) {
		r.clk = c
	}
}

// NewRecorder returns a recorder that samples every interval.
func NewRecorder(interval time.Duration, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		l:        hclog.NewNullLogger(),
		clk:      clock.New(),
		interval: interval,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run writes the header and then one row per interval until ctx is
// done.  Each row is flushed as it is written so that a recording
// interrupted by a crash keeps everything up to that point.
func (r *Recorder) Run(ctx context.Context, w io.Writer, sample Sampler) (int, error) {
	t := r.clk.Ticker(r.interval)
	defer t.Stop()
	start := r.clk.Now()

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return 0, err
	}
	cw.Flush()

	rows := 0
	for {
		select {
		case <-ctx.Done():
			r.l.Info("Recording stopped", "rows", rows)
			return rows, nil
		case now := <-t.C:
			steering, speed := sample()
			p := Point{Time: now.Sub(start).Seconds(), Steering: steering, Speed: speed}
			if err := cw.Write(formatPoint(p)); err != nil {
				return rows, err
			}
			cw.Flush()
			if err := cw.Error(); err != nil {
				return rows, err
			}
			rows++
			r.l.Trace("Recorded", "t", p.Time, "steering", steering, "speed", speed)
		}
	}
}
