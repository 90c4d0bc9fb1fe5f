package vision

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/gizmo-platform/parker/pkg/config"
)

// HSV8 converts 8 bit RGB into the 8 bit HSV space used by the color
// profiles: hue is halved to fit 0-179, saturation and value are
// scaled to 0-255.
func HSV8(r, g, b uint8) (uint8, uint8, uint8) {
	c := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
	h, s, v := c.Hsv()

	hue := math.Round(h / 2)
	if hue >= 180 {
		hue -= 180
	}
	return uint8(hue), uint8(math.Round(s * 255)), uint8(math.Round(v * 255))
}

// ColorMask thresholds img against the profile.  The mask has the
// same size as img, with 0,0 at the image's top left corner.
func ColorMask(img image.Image, p config.ColorProfile) *Mask {
	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	m := NewMask(w, h)

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			i := x * 4
			hh, ss, vv := HSV8(row[i], row[i+1], row[i+2])
			m.Pix[y*w+x] = p.Contains(hh, ss, vv)
		}
	}
	return m
}

// ColorPresent reports whether any pixel of img inside r matches the
// profile.  r is relative to the top left corner of img, and an empty
// r is never a match.
func ColorPresent(img image.Image, r image.Rectangle, p config.ColorProfile) bool {
	if r.Empty() {
		return false
	}
	cell := imaging.Crop(img, r.Add(img.Bounds().Min))
	if cell.Rect.Empty() {
		return false
	}
	return ColorMask(cell, p).Count() > 0
}
