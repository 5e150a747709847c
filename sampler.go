package img2ascii

import (
	"github.com/wbrown/img2ascii/imageutil"
)

// Cell is one glyph of the ASCII rendition: the glyph itself, its
// display color, and the pixel-space top-left corner of the source
// region it summarizes. Cells are produced fresh on every sampling
// pass and never mutated afterwards.
type Cell struct {
	Glyph rune
	Color imageutil.RGB
	X, Y  int
}

// Sample partitions a raster frame into a grid of cells and converts
// each to a Cell. The horizontal step is PixelSize and the vertical
// step is PixelSize / CharAspectRatio, so sampled blocks come out
// visually square once drawn in a cell taller than it is wide. Any
// fractional remainder at the right and bottom edges is cropped.
//
// The returned grid is row-major, top to bottom, left to right. Its
// dimensions are floor(width/stepX) x floor(height/stepY); they depend
// only on the frame size and PixelSize, so a preview pass and an
// export pass over the same frame produce identical grids.
func Sample(frame *imageutil.RGBAImage, settings Settings) [][]Cell {
	settings.Normalize()

	width, height := frame.Width(), frame.Height()
	stepX := settings.PixelSize
	stepY := float64(settings.PixelSize) / CharAspectRatio

	cols := int(float64(width) / float64(stepX))
	rows := int(float64(height) / stepY)
	if cols <= 0 || rows <= 0 {
		return nil
	}

	mono := HexToRGB(settings.MonochromeColor)
	var gradient []imageutil.RGB
	if settings.ColorMode == ColorModeGradient {
		gradient = settings.gradientColors()
	}

	grid := make([][]Cell, 0, rows)
	for row := 0; row < rows; row++ {
		y0 := int(float64(row) * stepY)
		y1 := int(float64(row+1) * stepY)
		cells := make([]Cell, 0, cols)
		for col := 0; col < cols; col++ {
			x0 := col * stepX

			avg, count := frame.AverageRegion(x0, y0, x0+stepX, y1)
			if count == 0 {
				// Zero-area sampling rectangle; nothing to emit.
				continue
			}

			// Intensity pipeline: blend, grayscale, brightness,
			// contrast, in that order.
			blended := ApplyBlend(avg, settings.BlendMode)
			intensity := Grayscale(blended.R, blended.G, blended.B)
			intensity = ApplyBrightness(intensity, settings.Brightness)
			intensity = ApplyContrast(intensity, settings.Contrast)

			var display imageutil.RGB
			switch settings.ColorMode {
			case ColorModeMonochrome, ColorModeCustom:
				display = mono
			case ColorModeGradient:
				// Gradient color tracks the final intensity, so
				// color and glyph stay correlated.
				display = InterpolateGradient(gradient, intensity/255)
			default:
				// Original mode keeps the pre-blend average, which
				// decorrelates color from glyph intensity.
				display = avg
			}

			cells = append(cells, Cell{
				Glyph: GlyphFor(intensity, settings.CharacterRamp, settings.Invert),
				Color: display,
				X:     x0,
				Y:     y0,
			})
		}
		grid = append(grid, cells)
	}
	return grid
}
