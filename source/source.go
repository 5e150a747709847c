// Package source loads a media asset and exposes it as one of three
// frame-source variants: a still image, an animated image backed by a
// decoded GIF sequence, or a seekable video. Downstream code switches
// exhaustively on the variant instead of inspecting the asset at
// runtime.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wbrown/img2ascii/gifseq"
	"github.com/wbrown/img2ascii/imageutil"
)

var (
	// ErrUnsupportedInput reports a file type the loader does not
	// recognize. There is no fallback for it.
	ErrUnsupportedInput = errors.New("unsupported input format")

	// ErrLoadFailure reports an asset that was recognized but could
	// not be loaded or decoded.
	ErrLoadFailure = errors.New("frame source failed to load")

	// ErrSeekTimeout reports a video seek that did not complete
	// before its deadline.
	ErrSeekTimeout = errors.New("video seek timed out")
)

// Source is the tagged frame-source variant. Exactly three types
// implement it: Still, Animation, and Video.
type Source interface {
	// NativeWidth and NativeHeight report the source raster size.
	NativeWidth() int
	NativeHeight() int

	// Close releases anything the source holds open.
	Close() error

	isSource()
}

// Still is a single static raster frame.
type Still struct {
	Image *imageutil.RGBAImage
}

func (s *Still) NativeWidth() int  { return s.Image.Width() }
func (s *Still) NativeHeight() int { return s.Image.Height() }
func (s *Still) Close() error      { return nil }
func (s *Still) isSource()         {}

// Animation is a multi-frame GIF exposed as its composited frame
// sequence.
type Animation struct {
	Seq *gifseq.Sequence
}

func (a *Animation) NativeWidth() int  { return a.Seq.Width }
func (a *Animation) NativeHeight() int { return a.Seq.Height }
func (a *Animation) Close() error      { return nil }
func (a *Animation) isSource()         {}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// Load opens a media file and returns the matching source variant.
// A GIF that fails to parse as an animation degrades to a Still of
// its first displayable frame rather than failing; a file whose
// extension matches nothing returns ErrUnsupportedInput.
func Load(path string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".gif":
		return loadGIF(path)
	case videoExtensions[ext]:
		return OpenVideo(path)
	case imageExtensions[ext]:
		img, err := imageutil.LoadImage(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
		}
		return &Still{Image: img}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedInput, ext)
	}
}

func loadGIF(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}
	defer f.Close()

	seq, err := gifseq.Decode(f)
	if err != nil {
		// Animated decode failed; treat the asset as a static image
		// if the stdlib decoder can make sense of it at all.
		fmt.Fprintf(os.Stderr, "WARNING: gif decode failed (%v), trying as still image\n", err)
		img, stillErr := imageutil.LoadImage(path)
		if stillErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
		}
		return &Still{Image: img}, nil
	}

	if seq.FrameCount() == 1 {
		return &Still{Image: gifseq.Flatten(seq)[0]}, nil
	}
	return &Animation{Seq: seq}, nil
}
