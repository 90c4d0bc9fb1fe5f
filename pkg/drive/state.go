package drive

import (
	"time"

	"github.com/gizmo-platform/parker/pkg/spot"
)

// RobotState is the externally visible state of the vehicle.
type RobotState int

const (
	// LineFollowing is the initial state: follow the line and look
	// for the requested spot.
	LineFollowing RobotState = iota

	// ColorDetected means a spot was found and the vehicle is
	// creeping forward until the marker leaves the top of the
	// frame.
	ColorDetected

	// ColorDisappeared means the vehicle is alongside the spot and
	// waiting for the operator to start parking.
	ColorDisappeared

	// Parked means the vehicle is in the spot and waiting for the
	// operator to leave.
	Parked
)

func (s RobotState) String() string {
	switch s {
	case LineFollowing:
		return "LINE_FOLLOWING"
	case ColorDetected:
		return "COLOR_DETECTED"
	case ColorDisappeared:
		return "COLOR_DISAPPEARED"
	case Parked:
		return "PARKED"
	default:
		return "UNKNOWN"
	}
}

// phase is the internal state.  Each variant carries only the data
// that is meaningful in it.
type phase interface {
	state() RobotState
	side() spot.Side
}

type lineFollowing struct{}

func (lineFollowing) state() RobotState { return LineFollowing }
func (lineFollowing) side() spot.Side   { return spot.None }

// settling is the stop after a spot is first seen.  It still counts
// as line following from the outside.
type settling struct {
	since time.Time
	at    spot.Side
}

func (settling) state() RobotState { return LineFollowing }
func (p settling) side() spot.Side { return p.at }

type colorDetected struct{ at spot.Side }

func (colorDetected) state() RobotState { return ColorDetected }
func (p colorDetected) side() spot.Side { return p.at }

type colorDisappeared struct{ at spot.Side }

func (colorDisappeared) state() RobotState { return ColorDisappeared }
func (p colorDisappeared) side() spot.Side { return p.at }

type parked struct{ at spot.Side }

func (parked) state() RobotState { return Parked }
func (p parked) side() spot.Side { return p.at }
