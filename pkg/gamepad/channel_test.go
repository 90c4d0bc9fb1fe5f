package gamepad

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	errs    []error
	batches [][]Event
}

func (f *fakeSource) push(ev ...Event) {
	f.mu.Lock()
	f.batches = append(f.batches, ev)
	f.mu.Unlock()
}

func (f *fakeSource) Poll(ctx context.Context) ([]Event, error) {
	f.mu.Lock()
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		f.mu.Unlock()
		return nil, err
	}
	if len(f.batches) > 0 {
		b := f.batches[0]
		f.batches = f.batches[1:]
		f.mu.Unlock()
		return b, nil
	}
	f.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Millisecond):
		return nil, nil
	}
}

func press(code int) Event   { return Event{Kind: Button, Code: code, Pressed: true} }
func release(code int) Event { return Event{Kind: Button, Code: code} }

func TestPauseDebounce(t *testing.T) {
	mck := clock.NewMock()
	c := NewChannel(&fakeSource{}, WithClock(mck))

	c.handle(press(ButtonY))
	assert.True(t, c.MotionPaused())

	mck.Add(299 * time.Millisecond)
	c.handle(press(ButtonY))
	assert.True(t, c.MotionPaused(), "press inside the window is ignored")

	// The window runs from the last accepted toggle, not the
	// last press.
	mck.Add(time.Millisecond)
	c.handle(press(ButtonY))
	assert.False(t, c.MotionPaused())

	mck.Add(300 * time.Millisecond)
	c.handle(press(ButtonY))
	assert.True(t, c.MotionPaused())
}

func TestReleaseAndAxisIgnored(t *testing.T) {
	mck := clock.NewMock()
	c := NewChannel(&fakeSource{}, WithClock(mck))

	c.handle(release(ButtonY))
	c.handle(Event{Kind: Axis, Code: ButtonY, Value: 1})
	assert.False(t, c.MotionPaused())

	c.handle(release(ButtonX))
	assert.Empty(t, c.RequestedColor())
}

func TestColorButtons(t *testing.T) {
	c := NewChannel(&fakeSource{}, WithClock(clock.NewMock()))

	c.handle(press(ButtonX))
	assert.Equal(t, "blue", c.RequestedColor())
	c.handle(press(ButtonA))
	assert.Equal(t, "green", c.RequestedColor())
	c.handle(press(ButtonB))
	assert.Equal(t, "red", c.RequestedColor())
	assert.False(t, c.MotionPaused())

	c.ClearRequestedColor()
	assert.Equal(t, Snapshot{}, c.Snapshot())
}

func TestCustomButtons(t *testing.T) {
	c := NewChannel(&fakeSource{},
		WithClock(clock.NewMock()),
		WithPauseButton(ButtonStart),
		WithColorButtons(map[int]string{ButtonLShoulder: "purple"}),
	)

	c.handle(press(ButtonY))
	assert.False(t, c.MotionPaused())
	c.handle(press(ButtonStart))
	assert.True(t, c.MotionPaused())
	c.handle(press(ButtonLShoulder))
	assert.Equal(t, Snapshot{MotionPaused: true, RequestedColor: "purple"}, c.Snapshot())
}

func TestSetMotionPausedDoesNotDebounce(t *testing.T) {
	mck := clock.NewMock()
	c := NewChannel(&fakeSource{}, WithClock(mck))

	c.SetMotionPaused(true)
	c.handle(press(ButtonY))
	assert.False(t, c.MotionPaused())
}

func TestRunLoop(t *testing.T) {
	src := &fakeSource{errs: []error{ErrUnplugged, assert.AnError}}
	src.push(press(ButtonX), press(ButtonY))

	c := NewChannel(src, WithRetryInterval(time.Millisecond))
	c.Start()
	defer c.Stop()

	require.Eventually(t, func() bool {
		return c.MotionPaused() && c.RequestedColor() == "blue"
	}, 2*time.Second, time.Millisecond)
}

func TestStopJoins(t *testing.T) {
	c := NewChannel(&fakeSource{})
	c.Start()

	done := make(chan struct{})
	go func() {
		c.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}

	// A second stop is harmless.
	c.Stop()
}

func TestWaitForStart(t *testing.T) {
	src := &fakeSource{}
	c := NewChannel(src)
	c.Start()
	defer c.Stop()

	go func() {
		time.Sleep(20 * time.Millisecond)
		src.push(press(ButtonY))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.WaitForStart(ctx))
	assert.False(t, c.MotionPaused(), "start signal is consumed")
}

func TestWaitForStartCancelled(t *testing.T) {
	c := NewChannel(&fakeSource{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.WaitForStart(ctx), context.DeadlineExceeded)
}
