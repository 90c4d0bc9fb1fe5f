package rc

import (
	"github.com/benbjohnson/clock"
	"github.com/hashicorp/go-hclog"
)

// Option configures the Driver.
type Option func(*Driver)

// WithLogger sets the logger for the driver.
func WithLogger(l hclog.Logger) Option {
	return func(d *Driver) {
		d.l = l.Named("rc")
	}
}

// WithClock sets the clock used by the safety timeout.
func WithClock(c clock.Clock) Option {
	return func(d *Driver) {
		d.clk = c
	}
}
