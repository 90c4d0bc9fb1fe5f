package eventstream

import (
	"time"
)

// EventType is used to identify what type of event is crossing the
// wire.
type EventType uint8

const (
	// EventTypeUnknown is used as a zero value to ensure that this
	// always has to be set to something.
	EventTypeUnknown EventType = iota

	// EventTypeError is pushed when the vehicle hits a fault it
	// reports to the operator.
	EventTypeError

	// EventTypeLogLine carries a human readable status message.
	EventTypeLogLine

	// EventTypeStateChange is fired every time the drive state
	// machine moves between states.
	EventTypeStateChange

	// EventTypeDetection is fired when a parking spot marker is
	// found.
	EventTypeDetection

	// EventTypeManeuver is fired when a recorded maneuver starts
	// replaying.
	EventTypeManeuver
)

// Header is carried by every event.
type Header struct {
	Type EventType
	Run  string
	Time time.Time
}

// EventError contains the underlying error that occured.
type EventError struct {
	Header
	Error string
}

// EventLogLine contains a message from a log.
type EventLogLine struct {
	Header
	Message string
}

// EventStateChange records a transition of the drive state machine.
type EventStateChange struct {
	Header
	From string
	To   string
	Side string
}

// EventDetection records a parking spot marker sighting.
type EventDetection struct {
	Header
	Color string
	Side  string
}

// EventManeuver records the start of a maneuver replay.  ID is unique
// to the replay so that log lines can be matched up with it.
type EventManeuver struct {
	Header
	Maneuver string
	ID       string
}
