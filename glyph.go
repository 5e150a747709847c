package img2ascii

import "math"

// CharAspectRatio is the width:height ratio of a typical monospace
// glyph. Sampling cells are made taller than they are wide by this
// ratio so that the rendered output is not vertically stretched.
const CharAspectRatio = 0.6

// GlyphFor maps an intensity in [0, 255] to a glyph from an ordered
// character ramp. Index 0 of the ramp represents the darkest intensity;
// invert flips the mapping direction. An empty ramp maps everything to
// a space and a single-glyph ramp maps everything to that glyph.
func GlyphFor(intensity float64, ramp []rune, invert bool) rune {
	switch len(ramp) {
	case 0:
		return ' '
	case 1:
		return ramp[0]
	}

	normalized := intensity / 255
	if invert {
		normalized = 1 - normalized
	}

	idx := int(math.Round(normalized * float64(len(ramp)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx > len(ramp)-1 {
		idx = len(ramp) - 1
	}
	return ramp[idx]
}
