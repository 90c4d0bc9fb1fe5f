// Package camera provides frames to the control loop.  Capture runs
// ahead of processing and only the newest few frames are kept, so a
// slow consumer sees skipped frames rather than stale ones.
package camera

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/gizmo-platform/parker/pkg/metrics"
)

// ErrUnplugged is returned when the camera has gone away.  The
// caller is expected to wait and try again.
var ErrUnplugged = errors.New("camera unplugged")

// Source hands out frames.  Next blocks until a frame is available
// or ctx is done.
type Source interface {
	Next(context.Context) (image.Image, error)
}

// Latest is a bounded frame queue that drops the oldest frame when a
// new one arrives and it is full.
type Latest struct {
	metrics *metrics.Metrics

	mu      sync.Mutex
	frames  []image.Image
	depth   int
	dropped uint64
	err     error

	ready chan struct{}
}

// NewLatest returns an empty queue holding up to depth frames.
func NewLatest(depth int, m *metrics.Metrics) *Latest {
	if depth < 1 {
		depth = 1
	}
	if m == nil {
		m = metrics.New()
	}
	return &Latest{
		metrics: m,
		depth:   depth,
		frames:  make([]image.Image, 0, depth),
		ready:   make(chan struct{}, 1),
	}
}

// Put adds a frame, dropping the oldest if the queue is full.  It
// never blocks.
func (l *Latest) Put(img image.Image) {
	l.mu.Lock()
	if len(l.frames) == l.depth {
		l.frames = append(l.frames[:0], l.frames[1:]...)
		l.dropped++
		l.metrics.FramesDropped(1)
	}
	l.frames = append(l.frames, img)
	l.mu.Unlock()
	l.signal()
}

// Fail records that the producer has stopped.  Frames already queued
// are still handed out, after which Next returns err.
func (l *Latest) Fail(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
	l.signal()
}

func (l *Latest) signal() {
	select {
	case l.ready <- struct{}{}:
	default:
	}
}

// Next returns the oldest queued frame.
func (l *Latest) Next(ctx context.Context) (image.Image, error) {
	for {
		l.mu.Lock()
		if len(l.frames) > 0 {
			img := l.frames[0]
			l.frames[0] = nil
			l.frames = l.frames[1:]
			l.mu.Unlock()
			return img, nil
		}
		if l.err != nil {
			err := l.err
			l.mu.Unlock()
			return nil, err
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-l.ready:
		}
	}
}

// Dropped is the number of frames discarded unread.
func (l *Latest) Dropped() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}
