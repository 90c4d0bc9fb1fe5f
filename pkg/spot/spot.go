// Package spot looks for the colored markers that identify a parking
// spot, using the grid to decide which side of the track they are on.
package spot

import (
	"image"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/gizmo-platform/parker/pkg/config"
	"github.com/gizmo-platform/parker/pkg/grid"
	"github.com/gizmo-platform/parker/pkg/vision"
)

// Side identifies which side of the frame a marker is on.  The zero
// value means no side.
type Side int

const (
	// None is no side at all.
	None Side = iota

	// Left markers sit in the second column.
	Left

	// Right markers sit in the fourth column.
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	default:
		return "NONE"
	}
}

const (
	leftCol  = 2
	rightCol = 4
)

// Detector checks grid cells for marker colors.
type Detector struct {
	l hclog.Logger

	bars   config.Grid
	colors map[string]config.ColorProfile

	gMutex sync.Mutex
	grids  map[image.Point]grid.Grid
}

// Option configures the Detector.
type Option func(*Detector)

// WithLogger sets the logger for the detector.
func WithLogger(l hclog.Logger) Option {
	return func(d *Detector) {
		d.l = l.Named("spot")
	}
}

// New returns a Detector for the given grid and color table.
func New(bars config.Grid, colors map[string]config.ColorProfile, opts ...Option) *Detector {
	d := &Detector{
		l:      hclog.NewNullLogger(),
		bars:   bars,
		colors: colors,
		grids:  make(map[image.Point]grid.Grid),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// DetectSpot reports whether a marker of the named color is visible,
// and on which side.  A side needs the color in both its top and
// bottom cell.  Left is checked first and wins if both sides match.
func (d *Detector) DetectSpot(color string, img image.Image) (bool, Side) {
	if d.present(color, img, 1, leftCol) && d.present(color, img, 3, leftCol) {
		return true, Left
	}
	if d.present(color, img, 1, rightCol) && d.present(color, img, 3, rightCol) {
		return true, Right
	}
	return false, None
}

// ColorInRow reports whether the named color is in either marker
// column of the given row.
func (d *Detector) ColorInRow(color string, img image.Image, row int) bool {
	return d.present(color, img, row, leftCol) || d.present(color, img, row, rightCol)
}

func (d *Detector) present(color string, img image.Image, row, col int) bool {
	p, ok := d.colors[color]
	if !ok {
		d.l.Warn("Unknown color requested", "color", color)
		return false
	}

	r, err := d.gridFor(img).CellBounds(row, col)
	if err != nil {
		d.l.Error("Bad grid cell", "error", err)
		return false
	}
	return vision.ColorPresent(img, r, p)
}

func (d *Detector) gridFor(img image.Image) grid.Grid {
	size := img.Bounds().Size()

	d.gMutex.Lock()
	defer d.gMutex.Unlock()
	g, ok := d.grids[size]
	if !ok {
		g = grid.New(d.bars, size.Y, size.X)
		d.grids[size] = g
	}
	return g
}
