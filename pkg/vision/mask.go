package vision

import (
	"image"
)

// Mask is a binary image.  Coordinates always start at 0,0.
type Mask struct {
	Width  int
	Height int
	Pix    []bool
}

// NewMask returns an empty mask of the given size.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]bool, width*height),
	}
}

// At reports whether the pixel at x,y is set.  Out of range pixels
// are never set.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set changes the pixel at x,y.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, p := range m.Pix {
		if p {
			n++
		}
	}
	return n
}

// AnyIn reports whether any pixel inside r is set.
func (m *Mask) AnyIn(r image.Rectangle) bool {
	r = r.Intersect(image.Rect(0, 0, m.Width, m.Height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x := r.Min.X; x < r.Max.X; x++ {
			if row[x] {
				return true
			}
		}
	}
	return false
}

// Gray renders the mask as a black and white image, mostly for
// looking at it.
func (m *Mask) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, p := range m.Pix {
		if p {
			img.Pix[i] = 255
		}
	}
	return img
}

// Close performs a morphological closing with a size x size square:
// a dilation followed by an erosion.  Pixels beyond the border do not
// contribute to the dilation and do not prevent the erosion.
func (m *Mask) Close(size int) *Mask {
	if size <= 1 {
		return m.clone()
	}
	return m.dilate(size).erode(size)
}

func (m *Mask) clone() *Mask {
	out := NewMask(m.Width, m.Height)
	copy(out.Pix, m.Pix)
	return out
}

func (m *Mask) invert() *Mask {
	out := NewMask(m.Width, m.Height)
	for i, p := range m.Pix {
		out.Pix[i] = !p
	}
	return out
}

func (m *Mask) erode(size int) *Mask {
	return m.invert().dilate(size).invert()
}

// dilate is separable for a square element, so it runs a 1D max
// filter over the rows and then over the columns.
func (m *Mask) dilate(size int) *Mask {
	before := (size - 1) / 2
	after := size - 1 - before

	rows := NewMask(m.Width, m.Height)
	prefix := make([]int, max(m.Width, m.Height)+1)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			prefix[x+1] = prefix[x]
			if m.Pix[y*m.Width+x] {
				prefix[x+1]++
			}
		}
		for x := 0; x < m.Width; x++ {
			lo := max(0, x-after)
			hi := min(m.Width, x+before+1)
			rows.Pix[y*m.Width+x] = prefix[hi]-prefix[lo] > 0
		}
	}

	out := NewMask(m.Width, m.Height)
	for x := 0; x < m.Width; x++ {
		for y := 0; y < m.Height; y++ {
			prefix[y+1] = prefix[y]
			if rows.Pix[y*m.Width+x] {
				prefix[y+1]++
			}
		}
		for y := 0; y < m.Height; y++ {
			lo := max(0, y-after)
			hi := min(m.Height, y+before+1)
			out.Pix[y*m.Width+x] = prefix[hi]-prefix[lo] > 0
		}
	}
	return out
}

// Region is a connected group of set pixels along with its area
// moments.
type Region struct {
	M00 float64
	M10 float64
	M01 float64
	Box image.Rectangle
}

// Centroid returns the center of mass of the region.  ok is false
// for a region with no area.
func (r Region) Centroid() (x, y float64, ok bool) {
	if r.M00 == 0 {
		return 0, 0, false
	}
	return r.M10 / r.M00, r.M01 / r.M00, true
}

// Regions finds all the 8-connected regions in the mask, in the
// order their first pixel is met scanning from the top left.
func (m *Mask) Regions() []Region {
	seen := make([]bool, len(m.Pix))
	stack := []int{}
	out := []Region{}

	for start, set := range m.Pix {
		if !set || seen[start] {
			continue
		}
		reg := Region{Box: image.Rectangle{Min: image.Pt(m.Width, m.Height)}}
		seen[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%m.Width, i/m.Width

			reg.M00++
			reg.M10 += float64(x)
			reg.M01 += float64(y)
			reg.Box.Min.X = min(reg.Box.Min.X, x)
			reg.Box.Min.Y = min(reg.Box.Min.Y, y)
			reg.Box.Max.X = max(reg.Box.Max.X, x+1)
			reg.Box.Max.Y = max(reg.Box.Max.Y, y+1)

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
						continue
					}
					j := ny*m.Width + nx
					if m.Pix[j] && !seen[j] {
						seen[j] = true
						stack = append(stack, j)
					}
				}
			}
		}
		out = append(out, reg)
	}
	return out
}
