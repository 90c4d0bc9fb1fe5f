// Package trajectory loads, records and replays the timed steering
// and speed sequences that make up the vehicle's canned maneuvers.
package trajectory

import (
	"errors"

	"github.com/gizmo-platform/parker/pkg/spot"
)

var (
	// ErrEmptyTrajectory is returned when a file has no data rows.
	ErrEmptyTrajectory = errors.New("trajectory has no points")

	// ErrUnknownManeuver is returned for a maneuver name that
	// isn't one of the known ones.
	ErrUnknownManeuver = errors.New("no such maneuver")

	// ErrMalformed is wrapped by all parse failures.
	ErrMalformed = errors.New("malformed trajectory")
)

// Point is one recorded sample.  Time is in seconds and only the
// difference between adjacent points matters.
type Point struct {
	Time     float64
	Steering float64
	Speed    float64
}

// Trajectory is an ordered list of points.
type Trajectory []Point

// Actuator is the drive the trajectory is played into.  Commands are
// fire and forget.
type Actuator interface {
	SetSteering(float64) error
	SetSpeed(int) error
}

// Maneuver names a recorded trajectory.
type Maneuver string

// The recorded maneuvers.
const (
	UTurn        Maneuver = "U_Turn"
	LeftParking  Maneuver = "Left_Parking"
	RightParking Maneuver = "Right_Parking"
	LeftExit     Maneuver = "Left_Exit"
	RightExit    Maneuver = "Right_Exit"
)

// Maneuvers lists every known maneuver.
var Maneuvers = []Maneuver{UTurn, LeftParking, RightParking, LeftExit, RightExit}

// ParseManeuver checks that s names a known maneuver.
func ParseManeuver(s string) (Maneuver, error) {
	for _, m := range Maneuvers {
		if string(m) == s {
			return m, nil
		}
	}
	return "", ErrUnknownManeuver
}

// FileName is the name of the file the maneuver is stored in.
func (m Maneuver) FileName() string {
	return string(m) + ".csv"
}

// ParkingFor returns the parking maneuver for a spot on the given
// side.
func ParkingFor(s spot.Side) (Maneuver, error) {
	switch s {
	case spot.Left:
		return LeftParking, nil
	case spot.Right:
		return RightParking, nil
	default:
		return "", ErrUnknownManeuver
	}
}

// ExitFor returns the maneuver that leaves a spot on the given side.
func ExitFor(s spot.Side) (Maneuver, error) {
	switch s {
	case spot.Left:
		return LeftExit, nil
	case spot.Right:
		return RightExit, nil
	default:
		return "", ErrUnknownManeuver
	}
}

// Duration is the time from the first point to the last.
func (t Trajectory) Duration() float64 {
	if len(t) < 2 {
		return 0
	}
	return t[len(t)-1].Time - t[0].Time
}
