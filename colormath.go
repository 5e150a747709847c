// Package img2ascii converts raster frames into stylized ASCII art: a
// frame is partitioned into a grid of cells, each cell's average color
// is reduced to an adjusted intensity, the intensity selects a glyph
// from an ordered character ramp, and the resulting glyph grid can be
// re-rendered to a raster surface at any resolution or to ANSI text.
package img2ascii

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wbrown/img2ascii/imageutil"
)

// contrastEpsilon guards the neutral contrast factor so that a factor
// of exactly 1.0 is a true identity and does not drift values through
// the rounding in the contrast curve.
const contrastEpsilon = 1e-3

// Grayscale reduces an RGB color to a single intensity in [0, 255]
// using ITU-R 601 luma weights (0.299, 0.587, 0.114).
func Grayscale(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// ApplyBrightness scales an intensity by the given factor and clamps
// the result into [0, 255]. A factor of 1.0 is neutral.
func ApplyBrightness(value, factor float64) float64 {
	return clamp255(value * factor)
}

// ApplyContrast stretches an intensity away from the midpoint 128 by
// the given factor and clamps the result into [0, 255]. A factor of
// 1.0 is neutral and returns the value unchanged.
func ApplyContrast(value, factor float64) float64 {
	if math.Abs(factor-1.0) < contrastEpsilon {
		return value
	}
	return clamp255((value-128)*factor + 128)
}

// BlendMode selects the per-channel transform applied to a cell's
// averaged color before it enters the intensity pipeline.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDifference
)

// ParseBlendMode maps a mode name to a BlendMode. Unknown names fall
// back to BlendNormal.
func ParseBlendMode(name string) BlendMode {
	switch strings.ToLower(name) {
	case "multiply":
		return BlendMultiply
	case "screen":
		return BlendScreen
	case "overlay":
		return BlendOverlay
	case "difference":
		return BlendDifference
	default:
		return BlendNormal
	}
}

// String returns the mode name accepted by ParseBlendMode.
func (m BlendMode) String() string {
	switch m {
	case BlendMultiply:
		return "multiply"
	case BlendScreen:
		return "screen"
	case BlendOverlay:
		return "overlay"
	case BlendDifference:
		return "difference"
	default:
		return "normal"
	}
}

// ApplyBlend applies the blend-mode transform to each channel of a
// color independently. The transforms are self-blends: the layer is
// composited with itself, which is what gives multiply its darkening
// and screen its lightening character on a single image.
func ApplyBlend(c imageutil.RGB, mode BlendMode) imageutil.RGB {
	if mode == BlendNormal {
		return c
	}
	return imageutil.RGB{
		R: blendChannel(c.R, mode),
		G: blendChannel(c.G, mode),
		B: blendChannel(c.B, mode),
	}
}

func blendChannel(c uint8, mode BlendMode) uint8 {
	v := int(c)
	switch mode {
	case BlendMultiply:
		v = v * v / 255
	case BlendScreen:
		v = 255 - (255-v)*(255-v)/255
	case BlendOverlay:
		if v < 128 {
			v = 2 * v * v / 255
		} else {
			v = 255 - 2*(255-v)*(255-v)/255
		}
	case BlendDifference:
		if v < 128 {
			v = 128 - v
		} else {
			v = v - 128
		}
	}
	return uint8(v)
}

// HexToRGB parses a "#rrggbb" hex color string. Malformed input falls
// back to white rather than failing, keeping the render pipeline total
// over any settings value.
func HexToRGB(hex string) imageutil.RGB {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return imageutil.RGB{R: 255, G: 255, B: 255}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return imageutil.RGB{R: 255, G: 255, B: 255}
	}
	return imageutil.RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}
}

// RGBToHex formats a color as a lowercase "#rrggbb" string.
func RGBToHex(c imageutil.RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// InterpolateGradient linearly interpolates a color from an ordered
// sequence of stops for a position in [0, 1]. The position is scaled
// into stop index space and the two bracketing stops are mixed per
// channel. Positions at or past 1 clamp to the last stop. Zero stops
// returns white; a single stop is returned unchanged.
func InterpolateGradient(stops []imageutil.RGB, position float64) imageutil.RGB {
	switch len(stops) {
	case 0:
		return imageutil.RGB{R: 255, G: 255, B: 255}
	case 1:
		return stops[0]
	}

	if position <= 0 {
		return stops[0]
	}
	if position >= 1 {
		return stops[len(stops)-1]
	}

	scaled := position * float64(len(stops)-1)
	idx := int(scaled)
	frac := scaled - float64(idx)
	a, b := stops[idx], stops[idx+1]
	return imageutil.RGB{
		R: lerpChannel(a.R, b.R, frac),
		G: lerpChannel(a.G, b.G, frac),
		B: lerpChannel(a.B, b.B, frac),
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
