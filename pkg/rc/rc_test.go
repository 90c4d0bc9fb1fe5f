package rc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gizmo-platform/parker/pkg/config"
	"github.com/gizmo-platform/parker/pkg/gamepad"
)

type fakeActuator struct {
	sync.Mutex
	steering []float64
	speeds   []int
}

func (a *fakeActuator) SetSteering(s float64) error {
	a.Lock()
	defer a.Unlock()
	a.steering = append(a.steering, s)
	return nil
}

func (a *fakeActuator) SetSpeed(s int) error {
	a.Lock()
	defer a.Unlock()
	a.speeds = append(a.speeds, s)
	return nil
}

// scriptedSource returns each step in turn and then cancels the run.
type scriptedSource struct {
	steps  []step
	cancel context.CancelFunc
}

type step struct {
	events []gamepad.Event
	err    error
}

func (s *scriptedSource) Poll(ctx context.Context) ([]gamepad.Event, error) {
	if len(s.steps) == 0 {
		s.cancel()
		return nil, ctx.Err()
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	return st.events, st.err
}

func axis(code, value int) gamepad.Event {
	return gamepad.Event{Kind: gamepad.Axis, Code: code, Value: value}
}

func TestSteeringFor(t *testing.T) {
	r := config.Default().Steering
	assert.InDelta(t, 0.12, SteeringFor(axisMin, r), 1e-9)
	assert.InDelta(t, 0.92, SteeringFor(axisMax, r), 1e-9)
	assert.InDelta(t, 0.52, SteeringFor(0, r), 1e-4)
	assert.InDelta(t, 0.92, SteeringFor(100000, r), 1e-9)
}

func TestSpeedFor(t *testing.T) {
	r := config.Default().Speed
	cases := []struct {
		name             string
		forward, reverse float64
		want             int
	}{
		{"idle", 0, 0, 0},
		{"full forward", 1, 0, 6000},
		{"light forward", 0.5, 0, 3900},
		{"full reverse", 0, 1, -2500},
		{"light reverse", 0, 0.5, -2050},
		{"both", 1, 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SpeedFor(tc.forward, tc.reverse, r))
		})
	}
}

func TestTriggerDeadzone(t *testing.T) {
	assert.Equal(t, 0.0, trigger(-32767))
	assert.Equal(t, 0.0, trigger(axisMin))
	assert.InDelta(t, 1.0, trigger(axisMax), 1e-9)
}

func TestRun(t *testing.T) {
	cfg := config.Default()
	act := new(fakeActuator)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &scriptedSource{
		cancel: cancel,
		steps: []step{
			{events: []gamepad.Event{axis(gamepad.AxisLX, axisMax), axis(gamepad.AxisRT, axisMax)}},
			{events: []gamepad.Event{axis(gamepad.AxisLT, axisMax)}},
			{events: []gamepad.Event{axis(gamepad.AxisRT, axisMin)}},
			{err: gamepad.ErrUnplugged},
			{events: []gamepad.Event{{Kind: gamepad.Button, Code: gamepad.ButtonA, Pressed: true}}},
		},
	}
	d := New(cfg, src, act)
	require.NoError(t, d.Run(ctx))

	assert.Equal(t, []int{6000, 0, -2500, -2500, -2500, 0}, act.speeds)
	assert.InDelta(t, 0.92, act.steering[0], 1e-9)
	assert.Equal(t, 0.52, act.steering[len(act.steering)-1])
}

func TestRunFails(t *testing.T) {
	boom := errors.New("boom")
	act := new(fakeActuator)
	src := &scriptedSource{cancel: func() {}, steps: []step{{err: boom}}}
	d := New(config.Default(), src, act)
	assert.ErrorIs(t, d.Run(context.Background()), boom)
	assert.Equal(t, []int{0}, act.speeds)
}

func TestSafetyTimeout(t *testing.T) {
	clk := clock.NewMock()
	d := New(config.Default(), nil, new(fakeActuator), WithClock(clk))
	defer d.dog.Stop()

	d.apply([]gamepad.Event{axis(gamepad.AxisRT, axisMax)})
	assert.Equal(t, 6000, d.Speed())

	clk.Add(time.Second)
	assert.Equal(t, 6000, d.Speed())

	clk.Add(time.Second)
	assert.Eventually(t, func() bool { return d.Speed() == 0 }, time.Second, time.Millisecond)
}

func TestSample(t *testing.T) {
	d := New(config.Default(), nil, new(fakeActuator))
	defer d.dog.Stop()

	s, v := d.Sample()
	assert.Equal(t, 0.52, s)
	assert.Equal(t, 0.0, v)

	d.apply([]gamepad.Event{axis(gamepad.AxisLX, axisMin), axis(gamepad.AxisLT, axisMax)})
	d.Speed()
	s, v = d.Sample()
	assert.InDelta(t, 0.12, s, 1e-9)
	assert.Equal(t, -2500.0, v)
}
