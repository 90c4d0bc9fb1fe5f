package trajectory

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gizmo-platform/parker/pkg/config"
	"github.com/gizmo-platform/parker/pkg/spot"
)

type command struct {
	steering bool
	value    float64
	at       time.Time
}

type fakeActuator struct {
	mu   sync.Mutex
	cmds []command
}

func (f *fakeActuator) SetSteering(s float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cmds = append(f.cmds, command{steering: true, value: s, at: time.Now()})
	return nil
}

func (f *fakeActuator) SetSpeed(s int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cmds = append(f.cmds, command{value: float64(s), at: time.Now()})
	return nil
}

func (f *fakeActuator) commands() []command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]command(nil), f.cmds...)
}

type fakeStore struct {
	t   Trajectory
	err error
}

func (f fakeStore) Load(Maneuver) (Trajectory, error) { return f.t, f.err }

func testPlayer(store Store, opts ...PlayerOption) *Player {
	cfg := config.Default()
	return NewPlayer(store, cfg.Steering, cfg.Speed, opts...)
}

func TestParse(t *testing.T) {
	in := "Timestamp,Steering,RPM\n" +
		"0.0,0.52,1800\n" +
		"0.05,0.6\n" +
		"\n" +
		"0.1, 0.7, 2000.9\n"

	traj, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, Trajectory{
		{Time: 0, Steering: 0.52, Speed: 1800},
		{Time: 0.1, Steering: 0.7, Speed: 2000.9},
	}, traj)
	assert.InDelta(t, 0.1, traj.Duration(), 1e-9)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyTrajectory)

	_, err = Parse(strings.NewReader("Timestamp,Steering,RPM\n"))
	assert.ErrorIs(t, err, ErrEmptyTrajectory)

	_, err = Parse(strings.NewReader("Timestamp,Steering,RPM\n0,0.5,abc\n"))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Parse(strings.NewReader("Timestamp,Steering,RPM\n0,\"0.5,1\n"))
	assert.ErrorIs(t, err, ErrMalformed)

	for _, row := range []string{"0,NaN,NaN", "0,0.5,Inf", "0,-Inf,1800", "+Inf,0.5,1800"} {
		_, err = Parse(strings.NewReader("Timestamp,Steering,RPM\n" + row + "\n0.1,0.5,1800\n"))
		assert.ErrorIs(t, err, ErrMalformed, row)
	}
}

func TestClampNonFinite(t *testing.T) {
	p := testPlayer(fakeStore{})

	assert.Equal(t, 0.52, p.ClampSteering(math.NaN()))
	assert.Equal(t, 0.92, p.ClampSteering(math.Inf(1)))
	assert.Equal(t, 0.12, p.ClampSteering(math.Inf(-1)))

	assert.Equal(t, 0, p.ClampSpeed(math.NaN()))
	assert.Equal(t, 6000, p.ClampSpeed(math.Inf(1)))
	assert.Equal(t, -1600, p.ClampSpeed(math.Inf(-1)))
}

func TestDirStore(t *testing.T) {
	dir := t.TempDir()
	s := NewDirStore(filepath.Join(dir, "recordings"))

	_, err := s.Load(UTurn)
	assert.ErrorIs(t, err, os.ErrNotExist)

	f, err := s.Create(LeftExit)
	require.NoError(t, err)
	want := Trajectory{{0, 0.52, 0}, {1.5, 0.12, -1600}}
	require.NoError(t, Write(f, want))
	require.NoError(t, f.Close())

	got, err := s.Load(LeftExit)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, filepath.Join(dir, "recordings", "Left_Exit.csv"), s.Path(LeftExit))
}

func TestManeuverNames(t *testing.T) {
	m, err := ParseManeuver("Right_Parking")
	require.NoError(t, err)
	assert.Equal(t, RightParking, m)

	_, err = ParseManeuver("Sideways")
	assert.ErrorIs(t, err, ErrUnknownManeuver)

	m, _ = ParkingFor(spot.Left)
	assert.Equal(t, LeftParking, m)
	m, _ = ExitFor(spot.Right)
	assert.Equal(t, RightExit, m)
	_, err = ParkingFor(spot.None)
	assert.ErrorIs(t, err, ErrUnknownManeuver)
}

func TestReplayClampsAndStops(t *testing.T) {
	act := &fakeActuator{}
	p := testPlayer(fakeStore{}, WithClock(clock.NewMock()))

	traj := Trajectory{
		{Time: 0, Steering: 0.0, Speed: 9000},
		{Time: 0, Steering: 1.0, Speed: -3000},
		{Time: 0, Steering: 0.5, Speed: 1234.9},
		{Time: 0, Steering: 0.9, Speed: 0},
	}
	require.NoError(t, p.Replay(context.Background(), traj, act))

	got := []float64{}
	for _, c := range act.commands() {
		got = append(got, c.value)
	}
	assert.Equal(t, []float64{
		0.12, 6000,
		0.92, -1600,
		0.5, 1234,
		0, 0.52,
	}, got)

	cmds := act.commands()
	assert.False(t, cmds[len(cmds)-2].steering, "speed goes to zero first")
	assert.True(t, cmds[len(cmds)-1].steering)
}

func TestReplayShortTrajectories(t *testing.T) {
	for _, traj := range []Trajectory{nil, {{Time: 0, Steering: 0.2, Speed: 3000}}} {
		act := &fakeActuator{}
		p := testPlayer(fakeStore{})
		require.NoError(t, p.Replay(context.Background(), traj, act))

		cmds := act.commands()
		require.Len(t, cmds, 2)
		assert.Equal(t, 0.0, cmds[0].value)
		assert.Equal(t, 0.52, cmds[1].value)
	}
}

func TestReplayPacing(t *testing.T) {
	traj := Trajectory{
		{Time: 10.00, Steering: 0.5, Speed: 1800},
		{Time: 10.03, Steering: 0.5, Speed: 1800},
		{Time: 10.03, Steering: 0.6, Speed: 1900},
		{Time: 10.10, Steering: 0.6, Speed: 1900},
		{Time: 10.05, Steering: 0.7, Speed: 2000},
		{Time: 10.09, Steering: 0.7, Speed: 2000},
	}
	// Speed commands are sent at the start of each of the first
	// five points; the last one is the stop.
	want := []time.Duration{30, 0, 70, 0, 40}

	p := testPlayer(fakeStore{})
	for run := 0; run < 2; run++ {
		act := &fakeActuator{}
		require.NoError(t, p.Replay(context.Background(), traj, act))

		speeds := []command{}
		for _, c := range act.commands() {
			if !c.steering {
				speeds = append(speeds, c)
			}
		}
		require.Len(t, speeds, 6)
		assert.Equal(t, 0.0, speeds[5].value, "run %d ends stopped", run)

		for i, ms := range want {
			gap := speeds[i+1].at.Sub(speeds[i].at)
			assert.InDelta(t, float64(ms*time.Millisecond), float64(gap), float64(25*time.Millisecond), "run %d gap %d", run, i)
		}
	}
}

func TestReplayCancelledStillStops(t *testing.T) {
	act := &fakeActuator{}
	p := testPlayer(fakeStore{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Replay(ctx, Trajectory{{0, 0.5, 1800}, {60, 0.5, 1800}}, act)
	assert.ErrorIs(t, err, context.Canceled)

	cmds := act.commands()
	require.Len(t, cmds, 4)
	assert.Equal(t, 0.0, cmds[2].value)
	assert.Equal(t, 0.52, cmds[3].value)
}

func TestReplayManeuverLoadFailure(t *testing.T) {
	act := &fakeActuator{}
	p := testPlayer(fakeStore{err: ErrMalformed})

	err := p.ReplayManeuver(context.Background(), UTurn, act)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Empty(t, act.commands(), "nothing is sent for a bad file")
}

type recordingPublisher struct{ names []string }

func (r *recordingPublisher) PublishManeuver(m, id string) {
	r.names = append(r.names, m)
}

func TestReplayManeuver(t *testing.T) {
	act := &fakeActuator{}
	pub := &recordingPublisher{}
	p := testPlayer(fakeStore{t: Trajectory{{0, 0.3, 2000}, {0, 0.3, 2000}}}, WithEventStreamer(pub))

	require.NoError(t, p.ReplayManeuver(context.Background(), LeftParking, act))
	assert.Len(t, act.commands(), 4)
	assert.Equal(t, []string{"Left_Parking"}, pub.names)
}

func TestRecorder(t *testing.T) {
	mck := clock.NewMock()
	r := NewRecorder(50*time.Millisecond, WithRecorderClock(mck))

	var buf bytes.Buffer
	var mu sync.Mutex
	n := 0.0
	sample := func() (float64, float64) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return 0.5, 1000 * n
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int)
	go func() {
		rows, err := r.Run(ctx, &syncWriter{w: &buf, mu: &mu}, sample)
		assert.NoError(t, err)
		done <- rows
	}()

	// The header is written after the ticker exists.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return buf.Len() > 0
	}, time.Second, time.Millisecond)
	for i := 0; i < 3; i++ {
		mck.Add(50 * time.Millisecond)
		want := float64(i + 1)
		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return n >= want
		}, time.Second, time.Millisecond)
	}
	cancel()
	rows := <-done
	assert.Equal(t, 3, rows)

	mu.Lock()
	defer mu.Unlock()
	traj, err := Parse(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, traj, 3)
	assert.InDelta(t, 0.05, traj[0].Time, 1e-9)
	assert.InDelta(t, 0.15, traj[2].Time, 1e-9)
	assert.Equal(t, 3000.0, traj[2].Speed)
}

type syncWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func TestWriteFailure(t *testing.T) {
	assert.Error(t, Write(failWriter{}, Trajectory{{0, 0, 0}}))
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }
