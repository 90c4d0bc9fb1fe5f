package gamepad

import (
	"context"
	"errors"
)

// ErrUnplugged is returned by a Source when the controller has gone
// away.  It is expected to come back, so callers retry.
var ErrUnplugged = errors.New("controller unplugged")

// EventKind distinguishes button edges from axis samples.
type EventKind int

const (
	// Button events are edges: Pressed is true on the press and
	// false on the release.
	Button EventKind = iota

	// Axis events carry the raw value of an axis that moved.
	Axis
)

// Event is a single input from the controller.
type Event struct {
	Kind    EventKind
	Code    int
	Pressed bool
	Value   int
}

// Source produces input events.  Poll blocks until there is
// something to report or the context is done.
type Source interface {
	Poll(context.Context) ([]Event, error)
}

// Snapshot is a copy of the operator state at one instant.  An empty
// RequestedColor means no color has been chosen.
type Snapshot struct {
	MotionPaused   bool
	RequestedColor string
}
