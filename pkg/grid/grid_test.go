package grid

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gizmo-platform/parker/pkg/config"
)

func TestCellBoundsDefaults(t *testing.T) {
	g := New(config.Default().Grid, 720, 1280)

	// 30% from the bottom is y=504, 44% is y=404 (720-316.8 -> 404).
	r, err := g.CellBounds(1, 2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(12, 0, 486, 404), r)

	r, err = g.CellBounds(3, 4)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(844, 504, 1267, 720), r)

	r, err = g.CellBounds(2, 5)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(1267, 404, 1280, 504), r)
}

func TestCellBoundsInvalid(t *testing.T) {
	g := New(config.Default().Grid, 100, 100)
	for _, rc := range [][2]int{{0, 1}, {4, 1}, {1, 0}, {1, 6}} {
		_, err := g.CellBounds(rc[0], rc[1])
		assert.ErrorIs(t, err, ErrInvalidCell)
	}
}

func TestGridPartitionsFrame(t *testing.T) {
	cases := []struct {
		name string
		h, w int
		bars config.Grid
	}{
		{"defaults", 720, 1280, config.Default().Grid},
		{"swapped horizontals", 480, 640, config.Grid{Horizontal1: 70, Horizontal2: 10, Vertical1: 10, Vertical2: 20, Vertical3: 30, Vertical4: 40}},
		{"unsorted verticals", 37, 91, config.Grid{Horizontal1: 33, Horizontal2: 66, Vertical1: 80, Vertical2: 5, Vertical3: 50, Vertical4: 20}},
		{"coincident bars", 50, 50, config.Grid{Horizontal1: 50, Horizontal2: 50, Vertical1: 0, Vertical2: 0, Vertical3: 100, Vertical4: 100}},
		{"out of range", 64, 64, config.Grid{Horizontal1: -10, Horizontal2: 140, Vertical1: -5, Vertical2: 25, Vertical3: 75, Vertical4: 105}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := New(tc.bars, tc.h, tc.w)
			owner := make([]int, tc.h*tc.w)
			for row := 1; row <= Rows; row++ {
				for col := 1; col <= Cols; col++ {
					r, err := g.CellBounds(row, col)
					require.NoError(t, err)
					assert.True(t, r.Min.X <= r.Max.X && r.Min.Y <= r.Max.Y, "cell %d,%d inverted: %v", row, col, r)
					for y := r.Min.Y; y < r.Max.Y; y++ {
						for x := r.Min.X; x < r.Max.X; x++ {
							owner[y*tc.w+x]++
						}
					}
				}
			}
			for i, n := range owner {
				if !assert.Equal(t, 1, n, "pixel %d,%d", i%tc.w, i/tc.w) {
					return
				}
			}
		})
	}
}

func TestDegenerateCellIsEmpty(t *testing.T) {
	g := New(config.Grid{Horizontal1: 50, Horizontal2: 50, Vertical1: 20, Vertical2: 20, Vertical3: 60, Vertical4: 80}, 100, 100)
	r, err := g.CellBounds(2, 2)
	require.NoError(t, err)
	assert.True(t, r.Empty())
}
