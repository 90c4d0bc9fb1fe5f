package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

var (
	// ErrBadDuration is returned when a duration in the config
	// file is neither a string nor a number.
	ErrBadDuration = errors.New("duration must be a string or a number")

	// ErrInvalid is wrapped by all validation failures.
	ErrInvalid = errors.New("invalid configuration")
)

// Default returns the configuration the vehicle was originally tuned
// with.
func Default() *Config {
	return &Config{
		Colors: map[string]ColorProfile{
			"yellow": {LowH: 8, HighH: 60, LowS: 11, HighS: 193, LowV: 219, HighV: 255},
			"red":    {LowH: 0, HighH: 17, LowS: 107, HighS: 223, LowV: 141, HighV: 199},
			"blue":   {LowH: 71, HighH: 105, LowS: 46, HighS: 119, LowV: 122, HighV: 177},
			"green":  {LowH: 36, HighH: 76, LowS: 67, HighS: 181, LowV: 51, HighV: 211},
		},
		LineColor: "yellow",
		Grid: Grid{
			Horizontal1: 30,
			Horizontal2: 44,
			Vertical1:   1,
			Vertical2:   38,
			Vertical3:   66,
			Vertical4:   99,
		},
		Lines:      Lines{Line1: 26, Line2: 73, Horizontal: 31},
		Centerline: 52,
		Steering:   SteeringRange{Left: 0.12, Neutral: 0.52, Right: 0.92},
		Speed: SpeedRange{
			ForwardMin: 1800,
			ForwardMax: 6000,
			ReverseMin: -1600,
			ReverseMax: -2500,
		},
		LineLostThreshold: 3,
		Timing: Timing{
			Settle:         Duration{2500 * time.Millisecond},
			Debounce:       Duration{300 * time.Millisecond},
			InputRetry:     Duration{time.Second},
			CameraRetry:    Duration{time.Second},
			Tick:           Duration{10 * time.Millisecond},
			SafetyTimeout:  Duration{1500 * time.Millisecond},
			RecordInterval: Duration{50 * time.Millisecond},
		},
		Camera: Camera{
			Device:     "/dev/video0",
			Width:      1280,
			Height:     720,
			FPS:        12,
			QueueDepth: 4,
		},
		VESC: VESC{Port: "auto", Baud: 115200},
		Gamepad: Gamepad{
			ID:          0,
			PauseButton: 3,
			ColorButtons: map[int]string{
				2: "blue",
				0: "green",
				1: "red",
			},
			SteeringAxis: 0,
			ForwardAxis:  5,
			ReverseAxis:  2,
		},
		Recordings: "recordings",
		Log: Log{
			File:       "parker.log",
			MaxSizeMB:  5,
			MaxBackups: 2,
		},
		StatusAddr:      ":8080",
		StatusInterface: "wlan0",
	}
}

// Load reads in a config from the path on disk.  Anything not
// specified in the file keeps its default value.  Maps in the file
// replace the default map entirely rather than adding to it.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	colors, buttons := cfg.Colors, cfg.Gamepad.ColorButtons
	cfg.Colors, cfg.Gamepad.ColorButtons = nil, nil
	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, err
	}
	if cfg.Colors == nil {
		cfg.Colors = colors
	}
	if cfg.Gamepad.ColorButtons == nil {
		cfg.Gamepad.ColorButtons = buttons
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the given path.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// Validate checks the values that would otherwise cause division by
// zero or an unusable vehicle.  Bar ordering is deliberately not
// checked here, it is corrected when the grid is read.
func (c *Config) Validate() error {
	if _, ok := c.Colors[c.LineColor]; !ok {
		return fmt.Errorf("%w: line color %q has no profile", ErrInvalid, c.LineColor)
	}
	for btn, color := range c.Gamepad.ColorButtons {
		if _, ok := c.Colors[color]; !ok {
			return fmt.Errorf("%w: button %d selects unknown color %q", ErrInvalid, btn, color)
		}
	}
	if c.Centerline <= 0 || c.Centerline > 100 {
		return fmt.Errorf("%w: centerline %.1f must be in (0,100]", ErrInvalid, c.Centerline)
	}
	for name, pct := range map[string]float64{
		"Lines.Line1":      c.Lines.Line1,
		"Lines.Line2":      c.Lines.Line2,
		"Lines.Horizontal": c.Lines.Horizontal,
	} {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("%w: %s %.1f must be in [0,100]", ErrInvalid, name, pct)
		}
	}
	s := c.Steering
	if s.Left > s.Neutral || s.Neutral > s.Right {
		return fmt.Errorf("%w: steering must satisfy left <= neutral <= right", ErrInvalid)
	}
	if c.Speed.ReverseMin > c.Speed.ForwardMax {
		return fmt.Errorf("%w: reverse speed exceeds forward speed", ErrInvalid)
	}
	if c.LineLostThreshold < 0 {
		return fmt.Errorf("%w: line lost threshold must not be negative", ErrInvalid)
	}
	return nil
}
