package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
)

// Encoder packs a rendered frame sequence into an output container.
type Encoder interface {
	Encode(frames []Frame, width, height int) ([]byte, error)
}

// GIFEncoder writes an animated GIF. Each frame is quantized to a
// 256-color palette with Floyd-Steinberg dithering; display durations
// carry over at GIF's 10ms granularity.
type GIFEncoder struct{}

// Encode implements Encoder.
func (e *GIFEncoder) Encode(frames []Frame, width, height int) ([]byte, error) {
	if len(frames) == 0 {
		return nil, errors.New("gif: no frames to encode")
	}

	out := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(frames)),
		Delay:     make([]int, 0, len(frames)),
		LoopCount: 0,
	}
	bounds := image.Rect(0, 0, width, height)
	for i, f := range frames {
		if f.Image.Bounds() != bounds {
			return nil, fmt.Errorf("gif: frame %d is %v, want %v", i, f.Image.Bounds(), bounds)
		}
		pal := image.NewPaletted(bounds, palette.Plan9)
		draw.FloydSteinberg.Draw(pal, bounds, f.Image, image.Point{})
		out.Image = append(out.Image, pal)
		out.Delay = append(out.Delay, f.DelayMS/10)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, out); err != nil {
		return nil, fmt.Errorf("gif: encoding failed: %w", err)
	}
	return buf.Bytes(), nil
}
