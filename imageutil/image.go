// Package imageutil provides the raster types the conversion pipeline
// operates on: an RGBA image wrapper with cheap pixel access, resizing,
// image file IO, and synthetic test patterns.
package imageutil

import (
	"image"
	"image/color"
)

// RGB represents a color in the RGB color space with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// ToColor converts RGB to color.RGBA for use with standard library.
func (rgb RGB) ToColor() color.RGBA {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// RGBFromColor converts a color.Color to RGB.
func RGBFromColor(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	return RGB{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
	}
}

// RGBAImage wraps image.RGBA with convenience methods for pixel access.
// It is the raster frame type consumed by the sampling pipeline: a
// width x height buffer of RGBA samples, one byte per channel.
type RGBAImage struct {
	*image.RGBA
}

// NewRGBAImage creates a new RGBAImage with the specified dimensions.
func NewRGBAImage(width, height int) *RGBAImage {
	return &RGBAImage{
		RGBA: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// RGBAImageFromImage converts any image.Image to RGBAImage.
func RGBAImageFromImage(img image.Image) *RGBAImage {
	if rgba, ok := img.(*RGBAImage); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := NewRGBAImage(bounds.Dx(), bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x-bounds.Min.X, y-bounds.Min.Y, img.At(x, y))
		}
	}
	return rgba
}

// RGBAImageFromBuffer wraps a raw RGBA byte buffer (4 bytes per pixel,
// row-major) as an RGBAImage. The buffer is used directly, not copied.
func RGBAImageFromBuffer(buf []byte, width, height int) *RGBAImage {
	return &RGBAImage{
		RGBA: &image.RGBA{
			Pix:    buf,
			Stride: width * 4,
			Rect:   image.Rect(0, 0, width, height),
		},
	}
}

// Width returns the image width.
func (img *RGBAImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *RGBAImage) Height() int {
	return img.Bounds().Dy()
}

// GetRGB returns the RGB value at (x, y).
func (img *RGBAImage) GetRGB(x, y int) RGB {
	c := img.RGBAAt(x, y)
	return RGB{R: c.R, G: c.G, B: c.B}
}

// SetRGB sets the RGB value at (x, y).
func (img *RGBAImage) SetRGB(x, y int, c RGB) {
	img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
}

// Clone creates a deep copy of the image.
func (img *RGBAImage) Clone() *RGBAImage {
	clone := NewRGBAImage(img.Width(), img.Height())
	copy(clone.Pix, img.Pix)
	return clone
}

// AverageRegion computes the mean color of the pixels inside the given
// half-open rectangle [x0,x1) x [y0,y1). The rectangle may extend past
// the image edge; out-of-bounds pixels are skipped rather than counted
// as black. The second return value is the number of pixels actually
// sampled; a zero count means the rectangle did not overlap the image
// and the color is undefined.
func (img *RGBAImage) AverageRegion(x0, y0, x1, y1 int) (RGB, int) {
	bounds := img.Bounds()
	if x0 < bounds.Min.X {
		x0 = bounds.Min.X
	}
	if y0 < bounds.Min.Y {
		y0 = bounds.Min.Y
	}
	if x1 > bounds.Max.X {
		x1 = bounds.Max.X
	}
	if y1 > bounds.Max.Y {
		y1 = bounds.Max.Y
	}

	var rSum, gSum, bSum, count int
	for y := y0; y < y1; y++ {
		off := img.PixOffset(x0, y)
		for x := x0; x < x1; x++ {
			rSum += int(img.Pix[off])
			gSum += int(img.Pix[off+1])
			bSum += int(img.Pix[off+2])
			off += 4
			count++
		}
	}
	if count == 0 {
		return RGB{}, 0
	}
	return RGB{
		R: uint8(rSum / count),
		G: uint8(gSum / count),
		B: uint8(bSum / count),
	}, count
}
