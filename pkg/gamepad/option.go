package gamepad

import (
	"time"

	"github.com/0xcafed00d/joystick"
	"github.com/benbjohnson/clock"
	"github.com/hashicorp/go-hclog"

	"github.com/gizmo-platform/parker/pkg/metrics"
)

// Option is used to enable variadic option passing to the joystick
// controller.
type Option func(jsc *JSController)

// WithLogger sets the logging instance for the gamepad controller.
func WithLogger(l hclog.Logger) Option {
	return func(jsc *JSController) {
		jsc.l = l.Named("gamepad-controller")
	}
}

// WithPollRate sets how often the joystick is read.
func WithPollRate(d time.Duration) Option {
	return func(jsc *JSController) {
		jsc.rate = d
	}
}

// WithPollClock sets the clock that paces Poll.
func WithPollClock(clk clock.Clock) Option {
	return func(jsc *JSController) {
		jsc.clk = clk
	}
}

// WithOpener replaces the function used to open joysticks, which is
// mostly useful for testing.
func WithOpener(f func(int) (joystick.Joystick, error)) Option {
	return func(jsc *JSController) {
		jsc.open = f
	}
}

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithChannelLogger sets the logger for the channel.
func WithChannelLogger(l hclog.Logger) ChannelOption {
	return func(c *Channel) {
		c.l = l.Named("input")
	}
}

// WithClock sets the clock used for debouncing and retry waits.
func WithClock(clk clock.Clock) ChannelOption {
	return func(c *Channel) {
		c.clk = clk
	}
}

// WithDebounce sets the window in which repeated pause presses are
// ignored.
func WithDebounce(d time.Duration) ChannelOption {
	return func(c *Channel) {
		c.debounce = d
	}
}

// WithRetryInterval sets how long to wait after the controller is
// found unplugged.
func WithRetryInterval(d time.Duration) ChannelOption {
	return func(c *Channel) {
		c.retry = d
	}
}

// WithPauseButton sets the button that toggles motion.
func WithPauseButton(b int) ChannelOption {
	return func(c *Channel) {
		c.pauseButton = b
	}
}

// WithColorButtons maps buttons to the colors they request.
func WithColorButtons(m map[int]string) ChannelOption {
	return func(c *Channel) {
		c.colorButtons = m
	}
}

// WithMetrics reports pause state and reconnects.
func WithMetrics(m *metrics.Metrics) ChannelOption {
	return func(c *Channel) {
		c.metrics = m
	}
}
