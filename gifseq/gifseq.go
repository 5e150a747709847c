// Package gifseq decodes an animated GIF into an ordered sequence of
// frame patches with display delays and disposal directives, and
// provides the compositor that flattens those patches into full raster
// frames in strict sequence order.
package gifseq

import (
	"fmt"
	"image"
	"image/gif"
	"io"

	"github.com/wbrown/img2ascii/imageutil"
)

const (
	// DefaultDelayMS substitutes for missing or implausibly small GIF
	// frame delays. Browsers apply the same floor.
	DefaultDelayMS = 100

	minDelayMS = 20
)

// Frame is one decoded GIF frame: a paletted patch covering some
// region of the logical screen, how long it is displayed, and whether
// the canvas must be cleared before the patch is drawn.
type Frame struct {
	Patch         image.Image
	Bounds        image.Rectangle
	DelayMS       int
	DisposalClear bool
}

// Sequence is the decoded animation: the logical screen size and the
// ordered frames. It is produced once when the asset is loaded, held
// for the asset's lifetime, and discarded on reset.
type Sequence struct {
	Frames []Frame
	Width  int
	Height int
}

// FrameCount returns the number of frames in the sequence.
func (s *Sequence) FrameCount() int {
	return len(s.Frames)
}

// Duration returns the total display time of one loop in milliseconds.
func (s *Sequence) Duration() int {
	total := 0
	for _, f := range s.Frames {
		total += f.DelayMS
	}
	return total
}

// Decode parses an animated GIF into a Sequence. GIF delays are stored
// in 10ms units; they are converted to milliseconds and floored to
// DefaultDelayMS when absent or below the minimum, matching how the
// frames would play in a browser.
func Decode(r io.Reader) (*Sequence, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode gif: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("gif has no frames")
	}

	width, height := g.Config.Width, g.Config.Height
	if width == 0 || height == 0 {
		b := g.Image[0].Bounds()
		width, height = b.Dx(), b.Dy()
	}

	frames := make([]Frame, len(g.Image))
	for i, img := range g.Image {
		delay := DefaultDelayMS
		if i < len(g.Delay) {
			delay = g.Delay[i] * 10
		}
		if delay < minDelayMS {
			delay = DefaultDelayMS
		}

		clear := false
		if i < len(g.Disposal) {
			switch g.Disposal[i] {
			case gif.DisposalBackground, gif.DisposalPrevious:
				clear = true
			}
		}

		frames[i] = Frame{
			Patch:         img,
			Bounds:        img.Bounds(),
			DelayMS:       delay,
			DisposalClear: clear,
		}
	}

	return &Sequence{
		Frames: frames,
		Width:  width,
		Height: height,
	}, nil
}

// Compositor flattens frame patches onto a persistent canvas in
// sequence order. Frame N+1 always observes frame N's composite; the
// compositor is the only owner of the canvas between calls.
type Compositor struct {
	canvas *imageutil.RGBAImage
}

// NewCompositor creates a compositor with a blank canvas of the
// sequence's logical screen size.
func NewCompositor(width, height int) *Compositor {
	return &Compositor{
		canvas: imageutil.NewRGBAImage(width, height),
	}
}

// Compose applies one frame to the canvas: the canvas is blanked first
// when the frame's disposal directive says so, then the patch is drawn
// over the retained composite, skipping transparent pixels. The
// returned image is a copy; the caller may hold it across later calls.
func (c *Compositor) Compose(f Frame) *imageutil.RGBAImage {
	if f.DisposalClear {
		c.Clear()
	}

	b := f.Bounds.Intersect(c.canvas.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := f.Patch.At(x, y)
			if _, _, _, a := px.RGBA(); a == 0 {
				continue
			}
			c.canvas.Set(x, y, px)
		}
	}
	return c.canvas.Clone()
}

// Clear blanks the canvas to fully transparent.
func (c *Compositor) Clear() {
	for i := range c.canvas.Pix {
		c.canvas.Pix[i] = 0
	}
}

// Flatten composites every frame of a sequence and returns the full
// raster frames in order, paired with the original delays.
func Flatten(seq *Sequence) []*imageutil.RGBAImage {
	comp := NewCompositor(seq.Width, seq.Height)
	out := make([]*imageutil.RGBAImage, len(seq.Frames))
	for i, f := range seq.Frames {
		out[i] = comp.Compose(f)
	}
	return out
}
