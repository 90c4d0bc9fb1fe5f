// Package watchdog stops things that stop hearing from their inputs.
package watchdog

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/go-hclog"
)

// Option changes features on the dog.
type Option func(*Dog)

// The DogHandFunc is the hand that the dog bites if it doesn't get
// fed frequently enough.
type DogHandFunc func()

// Dog handles the time since its last fed, and the callback that will
// happen if the Dog decides to bite people.
type Dog struct {
	l   hclog.Logger
	clk clock.Clock

	name string

	mu     sync.Mutex
	t      *clock.Timer
	bitten bool

	biteFunc     DogHandFunc
	foodDuration time.Duration
}

// New gets you a new watchdog.  The dog starts out fed.
func New(opts ...Option) *Dog {
	d := &Dog{
		name: "spot",
		l:    hclog.NewNullLogger(),
		clk:  clock.New(),

		biteFunc:     func() {},
		foodDuration: time.Second * 10,
	}
	for _, o := range opts {
		o(d)
	}
	d.t = d.clk.AfterFunc(d.foodDuration, d.Bite)
	return d
}

// Bite calls the BiteFunction if nothing has called Feed within the
// specified number of leeway settings.  The dog only bites once
// between feedings.
func (d *Dog) Bite() {
	d.mu.Lock()
	if d.bitten {
		d.mu.Unlock()
		return
	}
	d.bitten = true
	d.t.Stop()
	d.mu.Unlock()

	d.l.Error("BITE!", "dog", d.name)
	d.biteFunc()
}

// Feed convinces the dog not to bite for the values specified during
// initialization, by default another 10 seconds.
func (d *Dog) Feed() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.bitten {
		d.l.Info("Dog fed again", "dog", d.name)
	}
	d.bitten = false
	d.t.Reset(d.foodDuration)
}

// Bitten reports whether the dog has bitten since it was last fed.
func (d *Dog) Bitten() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bitten
}

// Stop puts the dog to sleep for good.
func (d *Dog) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.t.Stop()
}

// WithHandFunction sets up the hand that the dog will bite.  Not
// setting this kind of defeats the point of having a watchdog.
func WithHandFunction(f DogHandFunc) Option { return func(d *Dog) { d.biteFunc = f } }

// WithFoodDuration sets up how long the dog stays fed for when you
// call Feed().
func WithFoodDuration(fd time.Duration) Option { return func(d *Dog) { d.foodDuration = fd } }

// WithName names the dog.  If you don't specify this, you'll likely
// get bit by a dog named spot.
func WithName(n string) Option { return func(d *Dog) { d.name = n } }

// WithClock sets the clock the dog keeps time with.
func WithClock(c clock.Clock) Option { return func(d *Dog) { d.clk = c } }

// WithLogger provides a logging instance to the watchdog, since you
// probably do not want a silent dog wandering around biting
// goroutines.
func WithLogger(l hclog.Logger) Option { return func(d *Dog) { d.l = l.Named("watchdog") } }
