package gamepad

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/0xcafed00d/joystick"
	"github.com/benbjohnson/clock"
	"github.com/hashicorp/go-hclog"
)

// Button and axis numbers as reported by the joystick driver for an
// XBox style pad.
const (
	ButtonA          = 0
	ButtonB          = 1
	ButtonX          = 2
	ButtonY          = 3
	ButtonLShoulder  = 4
	ButtonRShoulder  = 5
	ButtonBack       = 6
	ButtonStart      = 7
	ButtonLogo       = 8
	ButtonLeftStick  = 9
	ButtonRightStick = 10

	AxisLX = 0
	AxisLY = 1
	AxisLT = 2
	AxisRX = 3
	AxisRY = 4
	AxisRT = 5
	AxisDX = 6
	AxisDY = 7
)

// ErrNotBound is returned when the controller is read before a
// joystick has been bound.
var ErrNotBound = errors.New("no joystick is bound")

// Values abstracts over the joystick to the given values that
// are returned by a gamepad.
type Values struct {
	AxisLX           int
	AxisLY           int
	AxisRX           int
	AxisRY           int
	AxisLT           int
	AxisRT           int
	AxisDX           int
	AxisDY           int
	ButtonBack       bool
	ButtonStart      bool
	ButtonLogo       bool
	ButtonLeftStick  bool
	ButtonRightStick bool
	ButtonX          bool
	ButtonY          bool
	ButtonA          bool
	ButtonB          bool
	ButtonLShoulder  bool
	ButtonRShoulder  bool

	// Axes holds every axis by number, for mappings that don't
	// use the named ones.
	Axes []int
}

// JSController handles the action of actually fetching data from the
// joystick and making it available to the rest of the system.  It is
// also a Source, turning the polled joystick state into events.
type JSController struct {
	l   hclog.Logger
	clk clock.Clock

	id   int
	rate time.Duration
	open func(int) (joystick.Joystick, error)

	cMutex sync.Mutex
	js     joystick.Joystick
	last   joystick.State
	primed bool

	sMutex sync.RWMutex
	state  Values
}

// NewJSController sets up the joystick controller.
func NewJSController(opts ...Option) *JSController {
	jsc := &JSController{
		l:    hclog.NewNullLogger(),
		clk:  clock.New(),
		rate: time.Millisecond * 20,
		open: joystick.Open,
	}

	for _, o := range opts {
		o(jsc)
	}
	return jsc
}

// BindController attaches the joystick with the given number.
func (j *JSController) BindController(id int) error {
	j.cMutex.Lock()
	defer j.cMutex.Unlock()

	j.id = id
	return j.bind()
}

// Rebind closes and reopens the bound joystick.
func (j *JSController) Rebind() error {
	j.cMutex.Lock()
	defer j.cMutex.Unlock()

	j.release()
	return j.bind()
}

// Close releases the joystick.
func (j *JSController) Close() {
	j.cMutex.Lock()
	defer j.cMutex.Unlock()
	j.release()
}

func (j *JSController) bind() error {
	js, err := j.open(j.id)
	if err != nil {
		return err
	}
	j.js = js
	j.primed = false
	j.l.Info("Successfully bound controller", "jsid", j.id, "name", js.Name())
	return nil
}

func (j *JSController) release() {
	if j.js != nil {
		j.js.Close()
		j.js = nil
	}
}

// GetState returns the values from the last read.
func (j *JSController) GetState() Values {
	j.sMutex.RLock()
	defer j.sMutex.RUnlock()
	return j.state
}

// UpdateState reads the joystick and refreshes the values returned
// by GetState.
func (j *JSController) UpdateState() error {
	j.cMutex.Lock()
	defer j.cMutex.Unlock()

	_, err := j.read()
	return err
}

// Poll waits for the poll interval, reads the joystick and returns
// the button edges and axis movements since the previous read.  A
// joystick that can't be opened or read is reported as ErrUnplugged
// and reopened on the next call.
func (j *JSController) Poll(ctx context.Context) ([]Event, error) {
	t := j.clk.Timer(j.rate)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.C:
	}

	j.cMutex.Lock()
	defer j.cMutex.Unlock()

	if j.js == nil {
		if err := j.bind(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnplugged, err)
		}
	}

	prev, primed := j.last, j.primed
	cur, err := j.read()
	if err != nil {
		j.release()
		return nil, fmt.Errorf("%w: %v", ErrUnplugged, err)
	}
	if !primed {
		// Buttons already held when the pad was plugged in
		// are not presses.
		return nil, nil
	}
	return diffState(prev, cur), nil
}

// read must be called with cMutex held.
func (j *JSController) read() (joystick.State, error) {
	if j.js == nil {
		return joystick.State{}, ErrNotBound
	}
	jinfo, err := j.js.Read()
	if err != nil {
		return joystick.State{}, err
	}
	j.last = jinfo
	j.primed = true

	axis := func(i int) int {
		if i < len(jinfo.AxisData) {
			return jinfo.AxisData[i]
		}
		return 0
	}
	button := func(i int) bool {
		return (jinfo.Buttons & (1 << uint32(i))) != 0
	}

	jvals := Values{
		AxisLX: axis(AxisLX),
		AxisLY: axis(AxisLY),

		AxisRX: axis(AxisRX),
		AxisRY: axis(AxisRY),

		AxisLT: axis(AxisLT),
		AxisRT: axis(AxisRT),

		AxisDX: axis(AxisDX),
		AxisDY: axis(AxisDY),

		ButtonBack:       button(ButtonBack),
		ButtonStart:      button(ButtonStart),
		ButtonLogo:       button(ButtonLogo),
		ButtonLeftStick:  button(ButtonLeftStick),
		ButtonRightStick: button(ButtonRightStick),
		ButtonX:          button(ButtonX),
		ButtonY:          button(ButtonY),
		ButtonA:          button(ButtonA),
		ButtonB:          button(ButtonB),
		ButtonLShoulder:  button(ButtonLShoulder),
		ButtonRShoulder:  button(ButtonRShoulder),

		Axes: append([]int(nil), jinfo.AxisData...),
	}

	j.sMutex.Lock()
	j.state = jvals
	j.sMutex.Unlock()
	j.l.Trace("Refreshed state")
	return jinfo, nil
}

// diffState turns two successive joystick reads into events.
// Buttons are reported in ascending order, then axes.
func diffState(prev, cur joystick.State) []Event {
	out := []Event{}
	changed := prev.Buttons ^ cur.Buttons
	for i := 0; i < 32; i++ {
		bit := uint32(1) << uint32(i)
		if changed&bit == 0 {
			continue
		}
		out = append(out, Event{Kind: Button, Code: i, Pressed: cur.Buttons&bit != 0})
	}
	for i, v := range cur.AxisData {
		if i < len(prev.AxisData) && prev.AxisData[i] == v {
			continue
		}
		out = append(out, Event{Kind: Axis, Code: i, Value: v})
	}
	return out
}
