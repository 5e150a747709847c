package imageutil

import (
	"image"

	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationArea uses Catmull-Rom, a high-quality choice for
	// both downscaling and upscaling.
	InterpolationArea Interpolation = iota

	// InterpolationLinear uses bilinear interpolation.
	InterpolationLinear

	// InterpolationNearest uses nearest-neighbor interpolation.
	// Fastest but lowest quality.
	InterpolationNearest
)

func scalerFor(interp Interpolation) draw.Scaler {
	switch interp {
	case InterpolationLinear:
		return draw.BiLinear
	case InterpolationNearest:
		return draw.NearestNeighbor
	default:
		return draw.CatmullRom
	}
}

// Resize resizes an RGBA image to the specified dimensions using the
// given interpolation method.
func Resize(img *RGBAImage, width, height int, interp Interpolation) *RGBAImage {
	dst := NewRGBAImage(width, height)
	scalerFor(interp).Scale(dst.RGBA, image.Rect(0, 0, width, height),
		img.RGBA, img.Bounds(), draw.Over, nil)
	return dst
}

// ResizeToWidth resizes an image to the specified width while maintaining
// aspect ratio.
func ResizeToWidth(img *RGBAImage, width int, interp Interpolation) *RGBAImage {
	aspectRatio := float64(img.Width()) / float64(img.Height())
	height := int(float64(width) / aspectRatio)
	if height < 1 {
		height = 1
	}
	return Resize(img, width, height, interp)
}
