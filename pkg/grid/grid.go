// Package grid carves a camera frame into the 3 row by 5 column
// layout used to find parking spot markers.
package grid

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/gizmo-platform/parker/pkg/config"
)

const (
	// Rows is the number of horizontal bands in the grid.
	Rows = 3

	// Cols is the number of vertical bands in the grid.
	Cols = 5
)

// ErrInvalidCell is returned when a row or column outside the grid is
// requested.  This is always a bug in the caller.
var ErrInvalidCell = errors.New("no such grid cell")

// Grid holds the pixel positions of the bars for one frame size.
type Grid struct {
	height int
	width  int

	// rowEdges are the top edges of rows 1..3 followed by the
	// frame height.
	rowEdges [Rows + 1]int

	// colEdges are the left edges of columns 1..5 followed by
	// the frame width.
	colEdges [Cols + 1]int
}

// New computes the grid for a frame of the given size.  The
// configured bars are normalized here: percentages are clamped to
// [0,100], the two horizontals are ordered, and the verticals are
// sorted, so that a misordered config still yields a partition.
func New(bars config.Grid, height, width int) Grid {
	g := Grid{height: height, width: width}

	yh1 := height - int(float64(height)*clampPct(bars.Horizontal1)/100)
	yh2 := height - int(float64(height)*clampPct(bars.Horizontal2)/100)
	if yh1 > yh2 {
		yh1, yh2 = yh2, yh1
	}
	g.rowEdges = [Rows + 1]int{0, yh1, yh2, height}

	verts := []float64{
		clampPct(bars.Vertical1),
		clampPct(bars.Vertical2),
		clampPct(bars.Vertical3),
		clampPct(bars.Vertical4),
	}
	sort.Float64s(verts)
	g.colEdges[0] = 0
	for i, v := range verts {
		g.colEdges[i+1] = int(float64(width) * v / 100)
	}
	g.colEdges[Cols] = width

	return g
}

// CellBounds returns the pixel rectangle of the cell at row, col.
// Rows count from 1 at the top, columns from 1 at the left.  The
// rectangle may be empty when two bars coincide.
func (g Grid) CellBounds(row, col int) (image.Rectangle, error) {
	if row < 1 || row > Rows || col < 1 || col > Cols {
		return image.Rectangle{}, fmt.Errorf("%w: row %d col %d", ErrInvalidCell, row, col)
	}
	return image.Rect(
		g.colEdges[col-1],
		g.rowEdges[row-1],
		g.colEdges[col],
		g.rowEdges[row],
	), nil
}

// Size returns the frame height and width the grid was built for.
func (g Grid) Size() (int, int) {
	return g.height, g.width
}

func clampPct(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
