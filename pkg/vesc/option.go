package vesc

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/go-hclog"
)

// Option configures the driver.
type Option func(*VESC)

// WithLogger sets the logger for the driver.
func WithLogger(l hclog.Logger) Option { return func(v *VESC) { v.l = l.Named("vesc") } }

// WithPort sets the serial port.  AutoPort searches for it.
func WithPort(p string) Option { return func(v *VESC) { v.port = p } }

// WithBaud sets the baud rate.
func WithBaud(b int) Option { return func(v *VESC) { v.baud = b } }

// WithOpener replaces the function that opens the serial port.
func WithOpener(o Opener) Option { return func(v *VESC) { v.open = o } }

// WithFinder replaces the USB port search.
func WithFinder(f func() (string, error)) Option { return func(v *VESC) { v.find = f } }

// WithClock sets the clock that paces the heartbeat.
func WithClock(c clock.Clock) Option { return func(v *VESC) { v.clk = c } }

// WithHeartbeat sets how often the keepalive is sent.
func WithHeartbeat(d time.Duration) Option { return func(v *VESC) { v.heartbeat = d } }

// WithRetries sets how many times and how often Connect tries.
func WithRetries(attempts uint64, interval time.Duration) Option {
	return func(v *VESC) {
		if attempts < 1 {
			attempts = 1
		}
		v.attempts = attempts
		v.interval = interval
	}
}
