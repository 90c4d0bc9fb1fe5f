// Package config contains a convenient structure to pass around
// configuration data.
package config

import (
	"encoding/json"
	"time"
)

// Config holds every tunable of the vehicle.  Nothing in here is
// persisted by the control system itself; it is read once at
// startup and handed to the components that need it.
type Config struct {
	// Colors maps a color name to the HSV bounds that recognize
	// it.  One of these is the line color, the rest are spot
	// marker colors.
	Colors map[string]ColorProfile

	// LineColor names the entry in Colors that describes the
	// painted line.
	LineColor string

	// Grid positions the bars that carve a frame into the 3x5
	// spot detection grid.
	Grid Grid

	// Lines holds the endpoint detection lines and the crop line
	// used for line following.
	Lines Lines

	// Centerline is the percentage of the frame width that the
	// vehicle tries to keep the line on.
	Centerline float64

	Steering SteeringRange
	Speed    SpeedRange

	// LineLostThreshold is the number of consecutive frames
	// without a line that are driven at half speed before the
	// vehicle stops.
	LineLostThreshold int

	Timing  Timing
	Camera  Camera
	VESC    VESC
	Gamepad Gamepad

	// Recordings is the directory that maneuver trajectories are
	// loaded from and recorded to.
	Recordings string

	Log Log

	// StatusAddr is where the status server listens.  Leave it
	// blank to disable the server.
	StatusAddr string

	// StatusInterface is the network interface whose address is
	// shown as a QR code for reaching the status server.
	StatusInterface string
}

// ColorProfile is a set of inclusive bounds in an 8 bit HSV space
// where hue runs 0-179 and saturation and value run 0-255.
type ColorProfile struct {
	LowH  uint8
	HighH uint8
	LowS  uint8
	HighS uint8
	LowV  uint8
	HighV uint8
}

// Grid contains the fractional positions of the spot detection bars.
// Horizontal bars are measured from the bottom of the frame, vertical
// bars from the left.  All values are percentages.
type Grid struct {
	Horizontal1 float64
	Horizontal2 float64
	Vertical1   float64
	Vertical2   float64
	Vertical3   float64
	Vertical4   float64
}

// Lines configures the endpoint detector.  Line1 and Line2 are
// percentages of the frame width, Horizontal is the percentage from
// the bottom of the frame that is kept for line following.
type Lines struct {
	Line1      float64
	Line2      float64
	Horizontal float64
}

// SteeringRange is the safe servo range of the steering.
type SteeringRange struct {
	Left    float64
	Neutral float64
	Right   float64
}

// SpeedRange holds the motor speed commands.  ForwardMin is the
// cruising speed while following the line.
type SpeedRange struct {
	ForwardMin int
	ForwardMax int
	ReverseMin int
	ReverseMax int
}

// Timing groups the various fixed windows used by the system.
type Timing struct {
	Settle         Duration
	Debounce       Duration
	InputRetry     Duration
	CameraRetry    Duration
	Tick           Duration
	SafetyTimeout  Duration
	RecordInterval Duration
}

// Camera configures the frame source.
type Camera struct {
	Device     string
	Width      int
	Height     int
	FPS        int
	QueueDepth int
}

// VESC configures the motor controller link.  A Port of "auto" will
// search the USB serial ports for a VESC.
type VESC struct {
	Port string
	Baud int
}

// Gamepad configures the handheld remote.  Buttons and axes are the
// indexes reported by the joystick driver.
type Gamepad struct {
	ID int

	PauseButton  int
	ColorButtons map[int]string

	SteeringAxis int
	ForwardAxis  int
	ReverseAxis  int
}

// Log configures the persistent log file.
type Log struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// Duration wraps time.Duration so that it can be written as a
// string in the config file.
type Duration struct {
	time.Duration
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts either a duration string ("2.5s") or a
// number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = dur
	default:
		return ErrBadDuration
	}
	return nil
}
