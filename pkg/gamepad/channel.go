package gamepad

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/go-hclog"

	"github.com/gizmo-platform/parker/pkg/metrics"
)

const (
	// errorPause is how long to wait after a poll error that
	// isn't a disconnect.
	errorPause = 100 * time.Millisecond

	// startPoll is how often WaitForStart looks at the pause
	// flag.
	startPoll = 10 * time.Millisecond
)

// Channel runs in the background for the life of the process and
// turns controller input into the operator state: whether motion is
// paused and which spot color has been requested.  The two fields
// have separate locks and are only ever copied out.
type Channel struct {
	l       hclog.Logger
	clk     clock.Clock
	metrics *metrics.Metrics
	src     Source

	pauseButton  int
	colorButtons map[int]string
	debounce     time.Duration
	retry        time.Duration

	pMutex     sync.Mutex
	paused     bool
	lastToggle time.Time
	toggled    bool

	cMutex sync.Mutex
	color  string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewChannel returns a channel reading from src.  It does nothing
// until Start is called.
func NewChannel(src Source, opts ...ChannelOption) *Channel {
	c := &Channel{
		l:           hclog.NewNullLogger(),
		clk:         clock.New(),
		metrics:     metrics.New(),
		src:         src,
		pauseButton: ButtonY,
		colorButtons: map[int]string{
			ButtonX: "blue",
			ButtonA: "green",
			ButtonB: "red",
		},
		debounce: 300 * time.Millisecond,
		retry:    time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start launches the polling goroutine.
func (c *Channel) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.wg.Add(1)
	go c.run(ctx)
	c.l.Info("Input channel started")
}

// Stop signals the polling goroutine and waits for it to exit.
func (c *Channel) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	c.wg.Wait()
	c.cancel = nil
	c.l.Info("Input channel stopped")
}

func (c *Channel) run(ctx context.Context) {
	defer c.wg.Done()

	for ctx.Err() == nil {
		events, err := c.src.Poll(ctx)
		switch {
		case err == nil:
			for _, ev := range events {
				c.handle(ev)
			}
		case ctx.Err() != nil:
			return
		case errors.Is(err, ErrUnplugged):
			c.l.Warn("Controller unplugged, retrying", "error", err, "retry", c.retry)
			c.metrics.InputReconnect()
			c.sleep(ctx, c.retry)
		default:
			c.l.Error("Error reading controller", "error", err)
			c.sleep(ctx, errorPause)
		}
	}
}

func (c *Channel) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-c.clk.After(d):
	}
}

// handle applies one event.  Only press edges matter; releases and
// axis movement are ignored.
func (c *Channel) handle(ev Event) {
	if ev.Kind != Button || !ev.Pressed {
		return
	}

	if ev.Code == c.pauseButton {
		c.togglePause()
		return
	}

	if color, ok := c.colorButtons[ev.Code]; ok {
		c.cMutex.Lock()
		c.color = color
		c.cMutex.Unlock()
		c.l.Info("Color requested", "color", color)
	}
}

func (c *Channel) togglePause() {
	c.pMutex.Lock()
	defer c.pMutex.Unlock()

	now := c.clk.Now()
	if c.toggled && now.Sub(c.lastToggle) < c.debounce {
		c.l.Debug("Ignoring pause press inside debounce window")
		return
	}
	c.toggled = true
	c.lastToggle = now
	c.paused = !c.paused
	c.metrics.SetPaused(c.paused)
	c.l.Info("Motion pause toggled", "paused", c.paused)
}

// MotionPaused reports whether the operator has paused motion.
func (c *Channel) MotionPaused() bool {
	c.pMutex.Lock()
	defer c.pMutex.Unlock()
	return c.paused
}

// SetMotionPaused forces the pause flag.  It does not count as a
// toggle for debouncing.
func (c *Channel) SetMotionPaused(p bool) {
	c.pMutex.Lock()
	c.paused = p
	c.pMutex.Unlock()
	c.metrics.SetPaused(p)
}

// RequestedColor returns the requested spot color, or an empty
// string if there isn't one.
func (c *Channel) RequestedColor() string {
	c.cMutex.Lock()
	defer c.cMutex.Unlock()
	return c.color
}

// ClearRequestedColor forgets the requested color.
func (c *Channel) ClearRequestedColor() {
	c.cMutex.Lock()
	c.color = ""
	c.cMutex.Unlock()
}

// Snapshot copies out both fields.  Each is read under its own lock.
func (c *Channel) Snapshot() Snapshot {
	return Snapshot{
		MotionPaused:   c.MotionPaused(),
		RequestedColor: c.RequestedColor(),
	}
}

// WaitForStart blocks until the operator toggles pause on, then
// clears it so that the vehicle starts moving.
func (c *Channel) WaitForStart(ctx context.Context) error {
	t := c.clk.Ticker(startPoll)
	defer t.Stop()

	for {
		c.pMutex.Lock()
		if c.paused {
			c.paused = false
			c.pMutex.Unlock()
			c.metrics.SetPaused(false)
			c.l.Info("Start signal received")
			return nil
		}
		c.pMutex.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}
