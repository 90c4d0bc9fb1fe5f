// Package vesc drives the vehicle's motor controller over its USB
// serial link.
package vesc

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// AutoPort asks for the port to be found by USB ID.
const AutoPort = "auto"

// The controller enumerates as an STM32 virtual COM port.
const (
	usbVID = "0483"
	usbPID = "5740"
)

var (
	// ErrNoPort is returned when no controller is plugged in.
	ErrNoPort = errors.New("no vesc found")

	// ErrClosed is returned for commands sent after Close.
	ErrClosed = errors.New("vesc is closed")

	// ErrDisconnected is returned for commands sent while the link
	// is being brought back up.
	ErrDisconnected = errors.New("vesc is reconnecting")
)

// Port is the part of a serial port the driver uses.
type Port interface {
	io.Writer
	io.Closer
}

// Opener opens the named port at the given baud rate.
type Opener func(name string, baud int) (Port, error)

// VESC is a connection to the motor controller.  It implements the
// drive actuator.
type VESC struct {
	l   hclog.Logger
	clk clock.Clock

	port      string
	baud      int
	open      Opener
	find      func() (string, error)
	heartbeat time.Duration
	attempts  uint64
	interval  time.Duration

	mu           sync.Mutex
	conn         Port
	closed       bool
	started      bool
	reconnecting bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns an unconnected driver.
func New(opts ...Option) *VESC {
	v := &VESC{
		l:         hclog.NewNullLogger(),
		clk:       clock.New(),
		port:      AutoPort,
		baud:      115200,
		open:      openSerial,
		find:      FindPort,
		heartbeat: 100 * time.Millisecond,
		attempts:  5,
		interval:  2 * time.Second,
	}
	for _, o := range opts {
		o(v)
	}
	v.ctx, v.cancel = context.WithCancel(context.Background())
	return v
}

func openSerial(name string, baud int) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
	return serial.Open(name, mode)
}

// FindPort looks through the USB serial ports for the controller.
func FindPort() (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", err
	}
	for _, port := range ports {
		if !port.IsUSB {
			continue
		}
		if strings.EqualFold(port.VID, usbVID) && strings.EqualFold(port.PID, usbPID) {
			return port.Name, nil
		}
	}
	return "", ErrNoPort
}

// Connect opens the port, retrying a few times since the controller
// is often still booting when the vehicle is powered on.  Once
// connected, a heartbeat keeps the controller from timing out.
// Connecting an already connected driver does nothing.
func (v *VESC) Connect(ctx context.Context) error {
	v.mu.Lock()
	started, closed := v.started, v.closed
	v.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if started {
		return nil
	}

	attempt := 0
	op := func() error {
		attempt++
		v.l.Info("Connecting to VESC", "attempt", attempt, "of", v.attempts)
		v.mu.Lock()
		defer v.mu.Unlock()
		if v.closed {
			return backoff.Permanent(ErrClosed)
		}
		if err := v.dial(); err != nil {
			v.l.Warn("Could not connect to VESC", "error", err)
			return err
		}
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(v.interval), v.attempts-1),
		ctx,
	)
	if err := backoff.Retry(op, bo); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	if !v.started {
		v.started = true
		v.wg.Add(1)
		go v.doHeartbeat()
	}
	return nil
}

// startReconnect must be called with mu held.
func (v *VESC) startReconnect() {
	if v.reconnecting || v.closed {
		return
	}
	v.reconnecting = true
	v.wg.Add(1)
	go v.doReconnect()
}

// doReconnect redials at the connect interval until the link is back
// or the driver is closed.
func (v *VESC) doReconnect() {
	defer v.wg.Done()

	op := func() error {
		v.mu.Lock()
		defer v.mu.Unlock()
		if v.closed {
			return backoff.Permanent(ErrClosed)
		}
		if v.conn != nil {
			return nil
		}
		return v.dial()
	}
	notify := func(err error, d time.Duration) {
		v.l.Warn("VESC reconnect failed", "error", err, "retry", d)
	}

	bo := backoff.WithContext(backoff.NewConstantBackOff(v.interval), v.ctx)
	err := backoff.RetryNotify(op, bo, notify)

	v.mu.Lock()
	v.reconnecting = false
	v.mu.Unlock()
	if err != nil {
		v.l.Debug("Reconnect abandoned", "error", err)
	}
}

// dial must be called with mu held.
func (v *VESC) dial() error {
	name := v.port
	if name == AutoPort {
		found, err := v.find()
		if err != nil {
			return err
		}
		name = found
	}
	conn, err := v.open(name, v.baud)
	if err != nil {
		return err
	}
	v.conn = conn
	v.l.Info("VESC connected", "port", name, "baud", v.baud)
	return nil
}

func (v *VESC) doHeartbeat() {
	defer v.wg.Done()
	t := v.clk.Ticker(v.heartbeat)
	defer t.Stop()
	for {
		select {
		case <-v.ctx.Done():
			return
		case <-t.C:
			if err := v.send(EncodeAlive()); err != nil {
				v.l.Trace("Heartbeat failed", "error", err)
			}
		}
	}
}

// SetSteering moves the steering servo.
func (v *VESC) SetSteering(pos float64) error {
	return v.send(EncodeServoPos(pos))
}

// SetSpeed sets the motor speed in electrical RPM.
func (v *VESC) SetSpeed(rpm int) error {
	return v.send(EncodeRPM(rpm))
}

// send writes a frame.  A failed write drops the connection and
// starts redialing in the background; commands sent in the meantime
// fail with ErrDisconnected.
func (v *VESC) send(frame []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return ErrClosed
	}
	if v.conn == nil {
		v.startReconnect()
		return ErrDisconnected
	}
	if _, err := v.conn.Write(frame); err != nil {
		v.l.Warn("Write to VESC failed, will reconnect", "error", err)
		v.conn.Close()
		v.conn = nil
		v.startReconnect()
		return err
	}
	return nil
}

// Close stops the heartbeat and releases the port.
func (v *VESC) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	v.mu.Unlock()

	v.cancel()
	v.wg.Wait()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.conn == nil {
		return nil
	}
	err := v.conn.Close()
	v.conn = nil
	return err
}
