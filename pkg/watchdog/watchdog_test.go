package watchdog

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

// The mock clock runs timer functions on their own goroutine, so bites
// are waited for rather than checked immediately.
const settle = time.Second

func TestBitesWhenHungry(t *testing.T) {
	clk := clock.NewMock()
	var bites atomic.Int32
	d := New(
		WithClock(clk),
		WithFoodDuration(1500*time.Millisecond),
		WithHandFunction(func() { bites.Add(1) }),
	)

	clk.Add(time.Second)
	assert.False(t, d.Bitten())
	d.Feed()

	clk.Add(time.Second)
	assert.False(t, d.Bitten())
	assert.Equal(t, int32(0), bites.Load())

	clk.Add(time.Second)
	assert.Eventually(t, func() bool { return bites.Load() == 1 }, settle, time.Millisecond)
	assert.True(t, d.Bitten())

	// Only one bite per missed meal.
	clk.Add(5 * time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), bites.Load())

	d.Feed()
	assert.False(t, d.Bitten())
	clk.Add(2 * time.Second)
	assert.Eventually(t, func() bool { return bites.Load() == 2 }, settle, time.Millisecond)
}

func TestStop(t *testing.T) {
	clk := clock.NewMock()
	var bites atomic.Int32
	d := New(WithClock(clk), WithFoodDuration(time.Second), WithHandFunction(func() { bites.Add(1) }))
	d.Stop()
	clk.Add(5 * time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), bites.Load())
}
