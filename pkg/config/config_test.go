package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parker.json")
	body := `{"Centerline": 50, "Timing": {"Settle": "3s"}, "VESC": {"Port": "/dev/ttyACM1"}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50.0, cfg.Centerline)
	assert.Equal(t, 3*time.Second, cfg.Timing.Settle.Duration)
	assert.Equal(t, 300*time.Millisecond, cfg.Timing.Debounce.Duration)
	assert.Equal(t, "/dev/ttyACM1", cfg.VESC.Port)
	assert.Equal(t, 115200, cfg.VESC.Baud)
	assert.Equal(t, "yellow", cfg.LineColor)
}

func TestLoadReplacesMaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parker.json")
	body := `{"Gamepad": {"ColorButtons": {"4": "blue", "5": "green", "6": "red"}}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{4: "blue", 5: "green", 6: "red"}, cfg.Gamepad.ColorButtons)
	assert.Equal(t, Default().Colors, cfg.Colors)

	body = `{"Colors": {"yellow": {"LowH": 20, "HighH": 35, "LowS": 80, "HighS": 255, "LowV": 100, "HighV": 255},
		"blue": {"LowH": 80, "HighH": 130, "LowS": 50, "HighS": 255, "LowV": 50, "HighV": 255}},
		"Gamepad": {"ColorButtons": {"2": "blue"}}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Colors, 2)
	assert.NotContains(t, cfg.Colors, "red")
	assert.Equal(t, map[int]string{2: "blue"}, cfg.Gamepad.ColorButtons)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parker.json")
	cfg := Default()
	cfg.Grid.Vertical2 = 40
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing line color", func(c *Config) { c.LineColor = "purple" }},
		{"unknown button color", func(c *Config) { c.Gamepad.ColorButtons[9] = "purple" }},
		{"zero centerline", func(c *Config) { c.Centerline = 0 }},
		{"line out of range", func(c *Config) { c.Lines.Line2 = 120 }},
		{"steering inverted", func(c *Config) { c.Steering.Left = 0.9 }},
		{"negative threshold", func(c *Config) { c.LineLostThreshold = -1 }},
	}

	require.NoError(t, Default().Validate())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestColorProfileContainsSwapsBounds(t *testing.T) {
	p := ColorProfile{LowH: 60, HighH: 8, LowS: 11, HighS: 193, LowV: 219, HighV: 255}
	assert.True(t, p.Contains(30, 100, 230))
	assert.False(t, p.Contains(70, 100, 230))
	assert.False(t, p.Contains(30, 100, 100))
}

func TestColorNamesExcludesLine(t *testing.T) {
	assert.ElementsMatch(t, []string{"red", "green", "blue"}, Default().ColorNames())
}

func TestDurationAcceptsNumbers(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte("1000000")))
	assert.Equal(t, time.Millisecond, d.Duration)
	assert.ErrorIs(t, d.UnmarshalJSON([]byte("true")), ErrBadDuration)
}

func TestWizardValidators(t *testing.T) {
	pct := rangeValidator(0, 100)
	assert.NoError(t, pct("52"))
	assert.NoError(t, pct("0"))
	assert.Error(t, pct("100.5"))
	assert.Error(t, pct("-1"))
	assert.ErrorIs(t, pct("half"), errNotNumber)
	assert.ErrorIs(t, pct(12), errNotNumber)

	assert.NoError(t, numberValidator("-1600"))
	assert.Error(t, numberValidator(""))
}

func TestWizardQuestions(t *testing.T) {
	q := pctQuestion("Line1", "Left endpoint line", 26)
	assert.Equal(t, "Line1", q.Name)
	assert.Error(t, q.Validate("101"))

	h := hsvQuestion("HighH", "Highest hue", 60, 179)
	assert.NoError(t, h.Validate("179"))
	assert.Error(t, h.Validate("180"))

	n := numQuestion("ForwardMin", "Cruising speed", 1800)
	assert.NoError(t, n.Validate("2000"))
}
