package img2ascii

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/wbrown/img2ascii/imageutil"
)

// CellRenderer paints a grid of cells onto an RGBA surface. The cell
// count is fixed by the sampling pass; the renderer scales each cell's
// drawn size to fill whatever output dimensions are requested, which
// is what lets an export render at a different resolution than the
// preview without resampling.
type CellRenderer struct {
	ttf *truetype.Font

	// faceCache reuses truetype faces keyed by pixel size; face
	// construction dominates render time otherwise.
	faceCache map[int]font.Face
}

// RendererOption is a functional option for configuring a CellRenderer.
type RendererOption func(*CellRenderer)

// WithFont sets the monospace TrueType font used for glyph drawing.
func WithFont(f *truetype.Font) RendererOption {
	return func(r *CellRenderer) {
		r.ttf = f
	}
}

// WithFontPath loads a TrueType font from disk. A load failure is
// reported to stderr and the renderer falls back to the built-in
// bitmap face.
func WithFontPath(path string) RendererOption {
	return func(r *CellRenderer) {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: could not read font %q: %v\n", path, err)
			return
		}
		f, err := truetype.Parse(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: could not parse font %q: %v\n", path, err)
			return
		}
		r.ttf = f
	}
}

// NewCellRenderer creates a CellRenderer. Without a font option the
// renderer draws glyphs with the built-in fixed-size bitmap face.
func NewCellRenderer(opts ...RendererOption) *CellRenderer {
	r := &CellRenderer{
		faceCache: make(map[int]font.Face),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws the cell grid onto a fresh RGBA surface of the given
// dimensions. The surface is first cleared: fully transparent when
// TransparentBackground is set, otherwise an opaque fill with the
// background color. An empty grid yields just the cleared surface.
func (r *CellRenderer) Render(cells [][]Cell, settings Settings, outputWidth, outputHeight int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, outputWidth, outputHeight))

	if !settings.TransparentBackground {
		bg := HexToRGB(settings.BackgroundColor).ToColor()
		draw.Draw(out, out.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	}

	rows := len(cells)
	if rows == 0 {
		return out
	}
	cols := 0
	for _, row := range cells {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return out
	}

	pitchX := float64(outputWidth) / float64(cols)
	pitchY := float64(outputHeight) / float64(rows)
	face := r.faceFor(int(pitchY))

	drawer := font.Drawer{
		Dst:  out,
		Face: face,
	}
	metrics := face.Metrics()

	for rowIdx, row := range cells {
		baseline := fixed.I(int(float64(rowIdx)*pitchY)) + metrics.Ascent
		for colIdx, cell := range row {
			drawer.Src = image.NewUniform(cell.Color.ToColor())
			drawer.Dot = fixed.Point26_6{
				X: fixed.I(int(float64(colIdx) * pitchX)),
				Y: baseline,
			}
			drawer.DrawString(string(cell.Glyph))
		}
	}
	return out
}

// RenderFrame samples a frame and renders it in one call, at an output
// resolution matching the source frame.
func (r *CellRenderer) RenderFrame(frame *imageutil.RGBAImage, settings Settings) *image.RGBA {
	cells := Sample(frame, settings)
	return r.Render(cells, settings, frame.Width(), frame.Height())
}

// faceFor returns a glyph face sized to the given row pitch. With no
// TrueType font configured this is the fixed 7x13 bitmap face.
func (r *CellRenderer) faceFor(pitch int) font.Face {
	if r.ttf == nil {
		return basicfont.Face7x13
	}
	if pitch < 1 {
		pitch = 1
	}
	if face, ok := r.faceCache[pitch]; ok {
		return face
	}
	face := truetype.NewFace(r.ttf, &truetype.Options{
		Size:    float64(pitch),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	r.faceCache[pitch] = face
	return face
}
