package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
)

// The sections of the config that the wizard knows how to tune.
const (
	SectionGrid       = "Spot grid"
	SectionLines      = "Endpoint and crop lines"
	SectionCenterline = "Centerline"
	SectionSteering   = "Steering range"
	SectionSpeed      = "Speed range"
	SectionColors     = "Color profiles"
)

// Sections lists every section in the order they are asked.
var Sections = []string{
	SectionGrid,
	SectionLines,
	SectionCenterline,
	SectionSteering,
	SectionSpeed,
	SectionColors,
}

var errNotNumber = errors.New("must be a number")

// WizardSurvey walks through the parts of the config that need to be
// tuned on the track.  Values are measured with the inspect command
// and typed in here.
func (c *Config) WizardSurvey(wouldOverwrite bool) error {
	if err := c.bigScaryOverwriteWarning(wouldOverwrite); err != nil {
		return err
	}

	sections := []string{}
	prompt := &survey.MultiSelect{
		Message: "Select the parts of the configuration to tune",
		Options: Sections,
		Default: Sections,
	}
	if err := survey.AskOne(prompt, &sections); err != nil {
		return err
	}

	steps := map[string]func() error{
		SectionGrid:       c.setGrid,
		SectionLines:      c.setLines,
		SectionCenterline: c.setCenterline,
		SectionSteering:   c.setSteering,
		SectionSpeed:      c.setSpeed,
		SectionColors:     c.setColors,
	}
	for _, s := range sections {
		if err := steps[s](); err != nil {
			return err
		}
	}

	return c.Validate()
}

func (c *Config) bigScaryOverwriteWarning(wouldOverwrite bool) error {
	if !wouldOverwrite {
		return nil
	}

	qOverwrite := &survey.Confirm{
		Message: "Overwrite existing config?",
	}

	fmt.Println("The file already exists.  Answers given here replace the values")
	fmt.Println("in it, and the vehicle will need to be checked on the track again.")

	if err := survey.AskOne(qOverwrite, &wouldOverwrite); err != nil {
		return err
	}
	if !wouldOverwrite {
		return fmt.Errorf("configuration canceled")
	}

	return nil
}

func (c *Config) setGrid() error {
	fmt.Println("Horizontal bars are measured up from the bottom of the frame,")
	fmt.Println("vertical bars across from the left, both as a percentage.")
	prompts := []*survey.Question{
		pctQuestion("Horizontal1", "Lower horizontal bar", c.Grid.Horizontal1),
		pctQuestion("Horizontal2", "Upper horizontal bar", c.Grid.Horizontal2),
		pctQuestion("Vertical1", "First vertical bar", c.Grid.Vertical1),
		pctQuestion("Vertical2", "Second vertical bar", c.Grid.Vertical2),
		pctQuestion("Vertical3", "Third vertical bar", c.Grid.Vertical3),
		pctQuestion("Vertical4", "Fourth vertical bar", c.Grid.Vertical4),
	}
	return survey.Ask(prompts, &c.Grid)
}

func (c *Config) setLines() error {
	prompts := []*survey.Question{
		pctQuestion("Line1", "Left endpoint line", c.Lines.Line1),
		pctQuestion("Line2", "Right endpoint line", c.Lines.Line2),
		pctQuestion("Horizontal", "Part of the frame kept for line following", c.Lines.Horizontal),
	}
	return survey.Ask(prompts, &c.Lines)
}

func (c *Config) setCenterline() error {
	q := pctQuestion("Centerline", "Centerline", c.Centerline)
	return survey.AskOne(q.Prompt, &c.Centerline, survey.WithValidator(q.Validate))
}

func (c *Config) setSteering() error {
	prompts := []*survey.Question{
		numQuestion("Left", "Servo position at full left", c.Steering.Left),
		numQuestion("Neutral", "Servo position for straight ahead", c.Steering.Neutral),
		numQuestion("Right", "Servo position at full right", c.Steering.Right),
	}
	return survey.Ask(prompts, &c.Steering)
}

func (c *Config) setSpeed() error {
	prompts := []*survey.Question{
		numQuestion("ForwardMin", "Cruising speed", c.Speed.ForwardMin),
		numQuestion("ForwardMax", "Fastest forward speed", c.Speed.ForwardMax),
		numQuestion("ReverseMin", "Slowest reverse speed", c.Speed.ReverseMin),
		numQuestion("ReverseMax", "Fastest reverse speed", c.Speed.ReverseMax),
	}
	return survey.Ask(prompts, &c.Speed)
}

func (c *Config) setColors() error {
	const done = "(done)"
	for {
		names := make([]string, 0, len(c.Colors))
		for n := range c.Colors {
			names = append(names, n)
		}
		sort.Strings(names)
		name := ""
		prompt := &survey.Select{
			Message: "Select a color to tune",
			Options: append(names, done),
			Default: done,
		}
		if err := survey.AskOne(prompt, &name); err != nil {
			return err
		}
		if name == done {
			return nil
		}

		p := c.Colors[name]
		prompts := []*survey.Question{
			hsvQuestion("LowH", "Lowest hue", p.LowH, 179),
			hsvQuestion("HighH", "Highest hue", p.HighH, 179),
			hsvQuestion("LowS", "Lowest saturation", p.LowS, 255),
			hsvQuestion("HighS", "Highest saturation", p.HighS, 255),
			hsvQuestion("LowV", "Lowest value", p.LowV, 255),
			hsvQuestion("HighV", "Highest value", p.HighV, 255),
		}
		if err := survey.Ask(prompts, &p); err != nil {
			return err
		}
		c.Colors[name] = p
	}
}

func pctQuestion(name, msg string, def float64) *survey.Question {
	return &survey.Question{
		Name:     name,
		Validate: survey.ComposeValidators(survey.Required, rangeValidator(0, 100)),
		Prompt: &survey.Input{
			Message: msg + " (%)",
			Default: strconv.FormatFloat(def, 'f', -1, 64),
		},
	}
}

func numQuestion[T int | float64](name, msg string, def T) *survey.Question {
	return &survey.Question{
		Name:     name,
		Validate: survey.ComposeValidators(survey.Required, numberValidator),
		Prompt: &survey.Input{
			Message: msg,
			Default: fmt.Sprint(def),
		},
	}
}

func hsvQuestion(name, msg string, def uint8, top float64) *survey.Question {
	return &survey.Question{
		Name:     name,
		Validate: survey.ComposeValidators(survey.Required, rangeValidator(0, top)),
		Prompt: &survey.Input{
			Message: fmt.Sprintf("%s (0-%.0f)", msg, top),
			Default: strconv.Itoa(int(def)),
		},
	}
}

func numberValidator(ans interface{}) error {
	_, err := parseAnswer(ans)
	return err
}

func rangeValidator(lo, hi float64) survey.Validator {
	return func(ans interface{}) error {
		v, err := parseAnswer(ans)
		if err != nil {
			return err
		}
		if v < lo || v > hi {
			return fmt.Errorf("must be between %g and %g", lo, hi)
		}
		return nil
	}
}

func parseAnswer(ans interface{}) (float64, error) {
	s, ok := ans.(string)
	if !ok {
		return 0, errNotNumber
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errNotNumber
	}
	return v, nil
}
