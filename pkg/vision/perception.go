// Package vision turns camera frames into the signals used to drive:
// where the line is, and whether the end of the track has been
// reached.
package vision

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/gizmo-platform/parker/pkg/config"
)

// closeKernel is the size of the square used to bridge gaps in the
// line mask.
const closeKernel = 5

// Perception holds the line color and produces line masks from
// frames.
type Perception struct {
	line config.ColorProfile
}

// New returns a Perception that looks for lines of the given color.
func New(line config.ColorProfile) *Perception {
	return &Perception{line: line}
}

// LineMask thresholds the frame against the line color and closes
// small gaps in the result.
func (p *Perception) LineMask(img image.Image) *Mask {
	return ColorMask(img, p.line).Close(closeKernel)
}

// Crop keeps the part of the frame below a horizontal line placed
// horizontalPercent of the height up from the bottom.
func Crop(img image.Image, horizontalPercent float64) image.Image {
	b := img.Bounds()
	h := b.Dy()
	top := int(float64(h) * (1 - horizontalPercent/100))
	if top < 0 {
		top = 0
	}
	if top > h {
		top = h
	}
	return imaging.Crop(img, image.Rect(0, top, b.Dx(), h).Add(b.Min))
}

// LinePosition returns the x coordinate of the centroid of the
// largest region in the mask.  ok is false when there is no line to
// be found.
func LinePosition(m *Mask) (int, bool) {
	var best *Region
	regions := m.Regions()
	for i := range regions {
		if best == nil || regions[i].M00 > best.M00 {
			best = &regions[i]
		}
	}
	if best == nil {
		return 0, false
	}
	cx, _, ok := best.Centroid()
	if !ok {
		return 0, false
	}
	return int(cx), true
}

// SteeringOffset converts a line position into an offset from the
// centerline, where -1 is the left edge of the frame and 0 is on the
// centerline.  The result is not clamped; positions right of a
// centerline placed left of center exceed 1.
func SteeringOffset(cx, width int, centerlinePercent float64) float64 {
	center := float64(width) * centerlinePercent / 100
	if center == 0 {
		return 0
	}
	return (float64(cx) - center) / center
}

// EndpointReached reports whether the line has spread to both outer
// margins of the mask: left of line1Percent and right of line2Percent
// of the width.  This happens when the vehicle reaches the
// perpendicular marking at the end of the track.
func EndpointReached(m *Mask, line1Percent, line2Percent float64) bool {
	x1 := int(float64(m.Width) * line1Percent / 100)
	x2 := int(float64(m.Width) * line2Percent / 100)

	left := m.AnyIn(image.Rect(0, 0, x1, m.Height))
	right := m.AnyIn(image.Rect(x2, 0, m.Width, m.Height))
	return left && right
}
