package img2ascii

import (
	"testing"

	"github.com/wbrown/img2ascii/imageutil"
)

func TestSampleAllBlackFrame(t *testing.T) {
	t.Parallel()

	frame := imageutil.CreateSolidImage(16, 16, imageutil.RGB{})
	settings := DefaultSettings() // ramp ".:-=+*#%@", pixel size 8, original

	grid := Sample(frame, settings)

	// stepX = 8, stepY = 8/0.6 = 13.33: 2 columns, 1 row.
	if len(grid) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(grid))
	}
	if len(grid[0]) != 2 {
		t.Fatalf("Expected 2 columns, got %d", len(grid[0]))
	}
	for _, cell := range grid[0] {
		if cell.Glyph != '.' {
			t.Errorf("Black cell should use the darkest glyph, got %q", cell.Glyph)
		}
		if RGBToHex(cell.Color) != "#000000" {
			t.Errorf("Black cell color = %s, want #000000", RGBToHex(cell.Color))
		}
	}
}

func TestSampleAllWhiteFrame(t *testing.T) {
	t.Parallel()

	frame := imageutil.CreateSolidImage(16, 16, imageutil.RGB{R: 255, G: 255, B: 255})
	grid := Sample(frame, DefaultSettings())

	if len(grid) != 1 || len(grid[0]) != 2 {
		t.Fatalf("Expected 1x2 grid, got %dx%d", len(grid), len(grid[0]))
	}
	for _, cell := range grid[0] {
		if cell.Glyph != '@' {
			t.Errorf("White cell should use the lightest glyph, got %q", cell.Glyph)
		}
		if RGBToHex(cell.Color) != "#ffffff" {
			t.Errorf("White cell color = %s, want #ffffff", RGBToHex(cell.Color))
		}
	}
}

func TestSampleGridDimensions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		width, height, pixelSize int
		wantCols, wantRows       int
	}{
		{100, 100, 10, 10, 5},  // stepY = 16.67
		{64, 64, 8, 8, 4},      // stepY = 13.33
		{63, 64, 8, 7, 4},      // right edge cropped
		{16, 13, 8, 2, 0},      // too short for one row
		{4, 4, 2, 2, 1},        // stepY = 3.33
	}
	for _, c := range cases {
		frame := imageutil.CreateSolidImage(c.width, c.height, imageutil.RGB{R: 90, G: 90, B: 90})
		settings := DefaultSettings()
		settings.PixelSize = c.pixelSize
		grid := Sample(frame, settings)

		if c.wantRows == 0 {
			if len(grid) != 0 {
				t.Errorf("%dx%d @%d: expected empty grid, got %d rows",
					c.width, c.height, c.pixelSize, len(grid))
			}
			continue
		}
		if len(grid) != c.wantRows {
			t.Errorf("%dx%d @%d: rows = %d, want %d",
				c.width, c.height, c.pixelSize, len(grid), c.wantRows)
			continue
		}
		for _, row := range grid {
			if len(row) != c.wantCols {
				t.Errorf("%dx%d @%d: cols = %d, want %d",
					c.width, c.height, c.pixelSize, len(row), c.wantCols)
			}
		}
	}
}

func TestSampleUniformFrameIsUniform(t *testing.T) {
	t.Parallel()

	frame := imageutil.CreateSolidImage(80, 80, imageutil.RGB{R: 40, G: 90, B: 160})
	settings := DefaultSettings()
	settings.PixelSize = 4

	grid := Sample(frame, settings)
	if len(grid) == 0 {
		t.Fatal("Expected a non-empty grid")
	}
	first := grid[0][0]
	for _, row := range grid {
		for _, cell := range row {
			if cell.Glyph != first.Glyph || cell.Color != first.Color {
				t.Fatalf("Uniform frame produced non-uniform cell %+v != %+v",
					cell, first)
			}
		}
	}
}

func TestSampleCellCoordinates(t *testing.T) {
	t.Parallel()

	frame := imageutil.CreateSolidImage(32, 32, imageutil.RGB{R: 10, G: 10, B: 10})
	settings := DefaultSettings()
	settings.PixelSize = 8 // stepY = 13.33: rows at y=0 and y=13

	grid := Sample(frame, settings)
	if len(grid) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(grid))
	}
	for colIdx, cell := range grid[0] {
		if cell.X != colIdx*8 || cell.Y != 0 {
			t.Errorf("Row 0 cell %d at (%d,%d), want (%d,0)",
				colIdx, cell.X, cell.Y, colIdx*8)
		}
	}
	if grid[1][0].Y != 13 {
		t.Errorf("Row 1 starts at y=%d, want 13", grid[1][0].Y)
	}
}

func TestSampleMonochromeAndCustomModes(t *testing.T) {
	t.Parallel()

	frame := imageutil.CreateGradientImage(64, 32)
	mono := imageutil.RGB{R: 0, G: 255, B: 128}

	for _, mode := range []ColorMode{ColorModeMonochrome, ColorModeCustom} {
		settings := DefaultSettings()
		settings.ColorMode = mode
		settings.MonochromeColor = "#00ff80"

		grid := Sample(frame, settings)
		for _, row := range grid {
			for _, cell := range row {
				if cell.Color != mono {
					t.Fatalf("%v cell color = %v, want %v", mode, cell.Color, mono)
				}
			}
		}
	}
}

func TestSampleGradientTracksIntensity(t *testing.T) {
	t.Parallel()

	frame := imageutil.CreateGradientImage(64, 32)
	settings := DefaultSettings()
	settings.ColorMode = ColorModeGradient
	settings.GradientStops = []string{"#000000", "#ff0000"}
	settings.PixelSize = 8

	grid := Sample(frame, settings)
	if len(grid) == 0 || len(grid[0]) < 2 {
		t.Fatal("Expected at least two columns")
	}
	row := grid[0]
	// The darkest column interpolates near the first stop, the
	// lightest near the last; red rises monotonically in between.
	prev := -1
	for _, cell := range row {
		if cell.Color.G != 0 || cell.Color.B != 0 {
			t.Fatalf("Gradient cell has non-red channels: %v", cell.Color)
		}
		if int(cell.Color.R) < prev {
			t.Fatalf("Gradient red channel not monotonic across row")
		}
		prev = int(cell.Color.R)
	}
}

func TestSampleInvertFlipsGlyphsNotColors(t *testing.T) {
	t.Parallel()

	frame := imageutil.CreateSolidImage(16, 16, imageutil.RGB{})
	settings := DefaultSettings()
	settings.Invert = true

	grid := Sample(frame, settings)
	cell := grid[0][0]
	if cell.Glyph != '@' {
		t.Errorf("Inverted black cell glyph = %q, want '@'", cell.Glyph)
	}
	if RGBToHex(cell.Color) != "#000000" {
		t.Errorf("Invert must not alter the original-mode color")
	}
}

func TestSampleBrightnessAffectsGlyph(t *testing.T) {
	t.Parallel()

	frame := imageutil.CreateSolidImage(16, 16, imageutil.RGB{R: 128, G: 128, B: 128})
	settings := DefaultSettings()
	settings.Brightness = 2.0

	grid := Sample(frame, settings)
	if grid[0][0].Glyph != '@' {
		t.Errorf("Doubled brightness on mid gray should saturate to '@', got %q",
			grid[0][0].Glyph)
	}

	settings.Brightness = 0
	grid = Sample(frame, settings)
	if grid[0][0].Glyph != '.' {
		t.Errorf("Zero brightness should map to the darkest glyph, got %q",
			grid[0][0].Glyph)
	}
}

func TestSamplePixelSizeClamped(t *testing.T) {
	t.Parallel()

	frame := imageutil.CreateSolidImage(8, 8, imageutil.RGB{R: 200, G: 200, B: 200})
	settings := DefaultSettings()
	settings.PixelSize = 0 // normalizes to the minimum of 2

	grid := Sample(frame, settings)
	if len(grid) == 0 {
		t.Fatal("Expected a non-empty grid after pixel size normalization")
	}
	if len(grid[0]) != 4 {
		t.Errorf("Expected 4 columns at the minimum pixel size, got %d", len(grid[0]))
	}
}
