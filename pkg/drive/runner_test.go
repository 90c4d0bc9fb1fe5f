package drive

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"

	"github.com/gizmo-platform/parker/pkg/camera"
	"github.com/gizmo-platform/parker/pkg/config"
	"github.com/gizmo-platform/parker/pkg/gamepad"
)

type staticInputs struct{ snap gamepad.Snapshot }

func (s staticInputs) Snapshot() gamepad.Snapshot { return s.snap }

// scriptedCamera returns errs in order, then frames until stop is
// reached, at which point it cancels the run.
type scriptedCamera struct {
	sync.Mutex
	errs   []error
	calls  int
	stop   int
	cancel context.CancelFunc
}

func (c *scriptedCamera) Next(context.Context) (image.Image, error) {
	c.Lock()
	defer c.Unlock()
	c.calls++
	if c.calls >= c.stop {
		c.cancel()
	}
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		return nil, err
	}
	return track(), nil
}

func fastConfig() *config.Config {
	cfg := config.Default()
	cfg.Timing.Tick = config.Duration{Duration: time.Millisecond}
	cfg.Timing.CameraRetry = config.Duration{Duration: time.Millisecond}
	return cfg
}

func TestRunRetriesUnpluggedCamera(t *testing.T) {
	act := new(fakeActuator)
	es := new(fakeStreamer)
	m := New(fastConfig(), act, new(fakeControls),
		WithPlayer(new(fakePlayer)),
		WithClock(clock.New()),
		WithEventStreamer(es),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cam := &scriptedCamera{
		errs:   []error{camera.ErrUnplugged, camera.ErrUnplugged},
		stop:   5,
		cancel: cancel,
	}

	assert.NoError(t, m.Run(ctx, staticInputs{}, cam))
	assert.Equal(t, 5, cam.calls)
	assert.Len(t, es.errs, 2)
	assert.True(t, act.closed)
	assert.Equal(t, command{0.52, 0}, act.last())

	// Frames after the camera came back were followed.
	var drove bool
	for _, c := range act.commands {
		if c.speed == 1800 {
			drove = true
		}
	}
	assert.True(t, drove)
}

func TestRunStopsOnOtherErrors(t *testing.T) {
	act := new(fakeActuator)
	m := New(fastConfig(), act, new(fakeControls), WithPlayer(new(fakePlayer)))

	boom := errors.New("boom")
	cam := &scriptedCamera{errs: []error{boom}, stop: 100, cancel: func() {}}

	err := m.Run(context.Background(), staticInputs{}, cam)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, cam.calls)
	assert.True(t, act.closed)
	assert.Equal(t, command{0.52, 0}, act.last())
}

func TestRunCancelled(t *testing.T) {
	act := new(fakeActuator)
	m := New(fastConfig(), act, new(fakeControls), WithPlayer(new(fakePlayer)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cam := &scriptedCamera{stop: 100, cancel: func() {}}
	assert.NoError(t, m.Run(ctx, staticInputs{snap: gamepad.Snapshot{MotionPaused: true}}, cam))
	assert.Equal(t, 0, cam.calls)
	assert.True(t, act.closed)
}

func TestLazyFrameFetchesOnce(t *testing.T) {
	cam := &scriptedCamera{stop: 100, cancel: func() {}}
	f := lazyFrame(context.Background(), cam)
	_, _ = f()
	_, _ = f()
	assert.Equal(t, 1, cam.calls)
}
