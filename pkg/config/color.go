package config

// Contains reports whether the given HSV triple falls within the
// profile.  A low bound that was configured above its high bound is
// swapped rather than treated as an empty range.
func (p ColorProfile) Contains(h, s, v uint8) bool {
	return within(h, p.LowH, p.HighH) &&
		within(s, p.LowS, p.HighS) &&
		within(v, p.LowV, p.HighV)
}

func within(x, lo, hi uint8) bool {
	if lo > hi {
		lo, hi = hi, lo
	}
	return x >= lo && x <= hi
}

// ColorNames returns the spot marker colors, which is every profile
// except the line color.
func (c *Config) ColorNames() []string {
	out := []string{}
	for name := range c.Colors {
		if name == c.LineColor {
			continue
		}
		out = append(out, name)
	}
	return out
}
