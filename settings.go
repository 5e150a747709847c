package img2ascii

import (
	"strings"

	"github.com/wbrown/img2ascii/imageutil"
)

// ColorMode selects how a cell's display color is chosen.
type ColorMode int

const (
	// ColorModeOriginal uses the cell's averaged source color.
	ColorModeOriginal ColorMode = iota

	// ColorModeMonochrome paints every cell with one configured color.
	ColorModeMonochrome

	// ColorModeGradient interpolates the gradient stops by the cell's
	// final adjusted intensity.
	ColorModeGradient

	// ColorModeCustom is a legacy alias that renders identically to
	// ColorModeMonochrome. Kept for compatibility; do not add new
	// semantics to it.
	ColorModeCustom
)

// ParseColorMode maps a mode name to a ColorMode. Unknown names fall
// back to ColorModeOriginal.
func ParseColorMode(name string) ColorMode {
	switch strings.ToLower(name) {
	case "monochrome":
		return ColorModeMonochrome
	case "gradient":
		return ColorModeGradient
	case "custom":
		return ColorModeCustom
	default:
		return ColorModeOriginal
	}
}

// String returns the mode name accepted by ParseColorMode.
func (m ColorMode) String() string {
	switch m {
	case ColorModeMonochrome:
		return "monochrome"
	case ColorModeGradient:
		return "gradient"
	case ColorModeCustom:
		return "custom"
	default:
		return "original"
	}
}

// Gradient stop counts are clamped into this range by Normalize.
const (
	MinGradientStops = 2
	MaxGradientStops = 8
)

// Settings holds every knob of the conversion pipeline. A Settings
// value is immutable for the duration of one sampling or rendering
// pass; callers mutate a copy and hand it to the next pass.
type Settings struct {
	// CharacterRamp is the ordered glyph ramp, darkest first. It may
	// be empty (every cell becomes a space) or a single glyph (every
	// cell becomes that glyph); neither is an error.
	CharacterRamp []rune

	// PixelSize is the horizontal sampling step in source pixels.
	// The vertical step is PixelSize / CharAspectRatio.
	PixelSize int

	ColorMode       ColorMode
	MonochromeColor string // hex, used by monochrome/custom modes
	GradientStops   []string

	BackgroundColor       string // hex, used when not transparent
	TransparentBackground bool

	BlendMode  BlendMode
	Contrast   float64 // neutral = 1.0
	Brightness float64 // neutral = 1.0
	Invert     bool
}

// DefaultSettings returns the settings a fresh conversion starts from.
func DefaultSettings() Settings {
	return Settings{
		CharacterRamp:   []rune(".:-=+*#%@"),
		PixelSize:       8,
		ColorMode:       ColorModeOriginal,
		MonochromeColor: "#ffffff",
		GradientStops:   []string{"#000000", "#ffffff"},
		BackgroundColor: "#000000",
		BlendMode:       BlendNormal,
		Contrast:        1.0,
		Brightness:      1.0,
	}
}

// Normalize clamps out-of-range settings values to their documented
// bounds. No settings value ever causes an error: the pipeline is
// total over anything of the nominal type.
func (s *Settings) Normalize() {
	if s.PixelSize < 2 {
		s.PixelSize = 2
	}
	if len(s.GradientStops) > MaxGradientStops {
		s.GradientStops = s.GradientStops[:MaxGradientStops]
	}
	for len(s.GradientStops) < MinGradientStops {
		s.GradientStops = append(s.GradientStops, "#ffffff")
	}
}

// gradientColors resolves the hex stops to RGB once per sampling pass.
func (s *Settings) gradientColors() []imageutil.RGB {
	stops := make([]imageutil.RGB, len(s.GradientStops))
	for i, hex := range s.GradientStops {
		stops[i] = HexToRGB(hex)
	}
	return stops
}
