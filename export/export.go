// Package export re-runs the full conversion pipeline over a source's
// complete frame sequence at an export resolution and hands the
// rendered frames to a format encoder. Export never shares rasters
// with the live preview; it allocates its own compositor and surfaces.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/gifseq"
	"github.com/wbrown/img2ascii/imageutil"
	"github.com/wbrown/img2ascii/source"
)

// ErrExportFailed wraps any error raised during an export pass. No
// partial output is ever returned alongside it.
var ErrExportFailed = errors.New("export failed")

// Format tags the requested output container.
type Format int

const (
	FormatGIF Format = iota
	FormatMP4
	FormatWebM
)

// ParseFormat maps a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "gif":
		return FormatGIF, nil
	case "mp4":
		return FormatMP4, nil
	case "webm":
		return FormatWebM, nil
	default:
		return 0, fmt.Errorf("unknown export format %q", name)
	}
}

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatMP4:
		return "mp4"
	case FormatWebM:
		return "webm"
	default:
		return "gif"
	}
}

const (
	// DefaultVideoFPS is the fixed rate video sources are resampled
	// at on the frame-sequence path.
	DefaultVideoFPS = 15

	// DefaultMaxVideoFrames caps the frame-sequence path for long
	// videos; export covers min(duration*fps, cap) frames.
	DefaultMaxVideoFrames = 150

	// DefaultCaptureFPS is the fixed rate of the continuous-capture
	// path used for MP4/WebM output.
	DefaultCaptureFPS = 30

	// DefaultStillDurationMS is how long a still image animates on
	// the continuous-capture path.
	DefaultStillDurationMS = 2000
)

// Frame is one rendered output frame and its display duration.
type Frame struct {
	Image   *image.RGBA
	DelayMS int
}

// Options configure one export pass.
type Options struct {
	Width  int
	Height int
	Format Format

	// Progress, when non-nil, receives fractions in [0, 1] as the
	// pass proceeds. It is reset to 0 if the pass fails.
	Progress func(float64)

	// VideoFPS, MaxVideoFrames, and CaptureFPS fall back to the
	// package defaults when zero.
	VideoFPS       int
	MaxVideoFrames int
	CaptureFPS     int
}

func (o *Options) normalize() {
	if o.VideoFPS <= 0 {
		o.VideoFPS = DefaultVideoFPS
	}
	if o.MaxVideoFrames <= 0 {
		o.MaxVideoFrames = DefaultMaxVideoFrames
	}
	if o.CaptureFPS <= 0 {
		o.CaptureFPS = DefaultCaptureFPS
	}
	if o.Progress == nil {
		o.Progress = func(float64) {}
	}
}

// Coordinator runs export passes. The zero value is not usable; create
// one with NewCoordinator.
type Coordinator struct {
	renderer *img2ascii.CellRenderer
	encoders map[Format]Encoder
}

// NewCoordinator creates a Coordinator rendering with the given cell
// renderer and the default encoder per format (stdlib GIF, ffmpeg for
// MP4 and WebM).
func NewCoordinator(renderer *img2ascii.CellRenderer) *Coordinator {
	return &Coordinator{
		renderer: renderer,
		encoders: map[Format]Encoder{
			FormatGIF:  &GIFEncoder{},
			FormatMP4:  &FFmpegEncoder{Codec: "libx264", Container: "mp4"},
			FormatWebM: &FFmpegEncoder{Codec: "libvpx-vp9", Container: "webm"},
		},
	}
}

// SetEncoder overrides the encoder used for a format.
func (c *Coordinator) SetEncoder(f Format, enc Encoder) {
	c.encoders[f] = enc
}

// Export converts the source's full frame sequence at the export
// resolution and encodes it into the requested container. Progress is
// reported as the pass proceeds. Any failure aborts the pass, resets
// progress to zero, and returns without partial output; cancellation
// of ctx is honored between frames.
func (c *Coordinator) Export(ctx context.Context, src source.Source, settings img2ascii.Settings, opts Options) ([]byte, error) {
	opts.normalize()

	enc, ok := c.encoders[opts.Format]
	if !ok {
		return nil, fmt.Errorf("%w: no encoder for format %v", ErrExportFailed, opts.Format)
	}

	frames, err := c.collect(ctx, src, settings, &opts)
	if err != nil {
		opts.Progress(0)
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	blob, err := enc.Encode(frames, opts.Width, opts.Height)
	if err != nil {
		opts.Progress(0)
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return blob, nil
}

// collect renders the output frame sequence for the source/format
// combination.
func (c *Coordinator) collect(ctx context.Context, src source.Source, settings img2ascii.Settings, opts *Options) ([]Frame, error) {
	if opts.Format == FormatGIF {
		return c.collectSequence(ctx, src, settings, opts)
	}
	return c.collectCapture(ctx, src, settings, opts)
}

// collectSequence is the frame-sequence path: every source frame once,
// with its own display duration.
func (c *Coordinator) collectSequence(ctx context.Context, src source.Source, settings img2ascii.Settings, opts *Options) ([]Frame, error) {
	switch s := src.(type) {
	case *source.Still:
		// A still exports as a single 100ms frame.
		frame := c.renderRaster(s.Image, settings, opts)
		opts.Progress(1)
		return []Frame{{Image: frame, DelayMS: 100}}, nil

	case *source.Animation:
		comp := gifseq.NewCompositor(s.Seq.Width, s.Seq.Height)
		frames := make([]Frame, 0, s.Seq.FrameCount())
		for i, gf := range s.Seq.Frames {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			raster := comp.Compose(gf)
			frames = append(frames, Frame{
				Image:   c.renderRaster(raster, settings, opts),
				DelayMS: gf.DelayMS,
			})
			opts.Progress(float64(i+1) / float64(s.Seq.FrameCount()))
		}
		return frames, nil

	case *source.Video:
		return c.collectVideo(ctx, s, settings, opts)

	default:
		return nil, fmt.Errorf("unknown source variant %T", src)
	}
}

// collectVideo resamples a video at a fixed rate up to the frame cap.
// Each seek is a suspension point bounded by the source's timeout.
func (c *Coordinator) collectVideo(ctx context.Context, v *source.Video, settings img2ascii.Settings, opts *Options) ([]Frame, error) {
	total := videoFrameBudget(v.Duration(), opts.VideoFPS, opts.MaxVideoFrames)

	delayMS := 1000 / opts.VideoFPS
	frames := make([]Frame, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		timestamp := time.Duration(float64(i) / float64(opts.VideoFPS) * float64(time.Second))
		if err := v.Seek(ctx, timestamp); err != nil {
			return nil, err
		}
		raster, err := v.CaptureFrame()
		if err != nil {
			return nil, err
		}
		frames = append(frames, Frame{
			Image:   c.renderRaster(raster, settings, opts),
			DelayMS: delayMS,
		})
		opts.Progress(float64(i+1) / float64(total))
	}
	return frames, nil
}

// videoFrameBudget bounds how many frames the frame-sequence path
// pulls from a video: the full duration at the export rate, capped for
// long sources, never fewer than one.
func videoFrameBudget(duration time.Duration, fps, maxFrames int) int {
	total := int(duration.Seconds() * float64(fps))
	if total > maxFrames {
		total = maxFrames
	}
	if total < 1 {
		total = 1
	}
	return total
}

// collectCapture is the continuous-capture path: the rendition is
// re-rendered at a fixed capture rate over the capture duration, which
// stands in for recording the live output surface in real time.
func (c *Coordinator) collectCapture(ctx context.Context, src source.Source, settings img2ascii.Settings, opts *Options) ([]Frame, error) {
	durationMS := captureDurationMS(src)
	total := durationMS * opts.CaptureFPS / 1000
	if total < 1 {
		total = 1
	}
	delayMS := 1000 / opts.CaptureFPS

	var clock *animationClock
	if anim, ok := src.(*source.Animation); ok {
		clock = newAnimationClock(anim.Seq)
	}

	frames := make([]Frame, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		elapsedMS := i * 1000 / opts.CaptureFPS

		var raster *imageutil.RGBAImage
		switch s := src.(type) {
		case *source.Still:
			raster = s.Image
		case *source.Animation:
			raster = clock.advance(elapsedMS)
		case *source.Video:
			timestamp := time.Duration(elapsedMS) * time.Millisecond
			if err := s.Seek(ctx, timestamp); err != nil {
				return nil, err
			}
			frame, err := s.CaptureFrame()
			if err != nil {
				return nil, err
			}
			raster = frame
		default:
			return nil, fmt.Errorf("unknown source variant %T", src)
		}

		frames = append(frames, Frame{
			Image:   c.renderRaster(raster, settings, opts),
			DelayMS: delayMS,
		})
		opts.Progress(float64(i+1) / float64(total))
	}
	return frames, nil
}

// captureDurationMS decides how long the continuous-capture path
// records: the video's duration, one full animation loop, or a fixed
// window for a still. Always at least the still window.
func captureDurationMS(src source.Source) int {
	switch s := src.(type) {
	case *source.Video:
		if ms := int(s.Duration().Milliseconds()); ms > 0 {
			return ms
		}
		return DefaultStillDurationMS
	case *source.Animation:
		if ms := s.Seq.Duration(); ms > DefaultStillDurationMS {
			return ms
		}
		return DefaultStillDurationMS
	default:
		return DefaultStillDurationMS
	}
}

func (c *Coordinator) renderRaster(raster *imageutil.RGBAImage, settings img2ascii.Settings, opts *Options) *image.RGBA {
	cells := img2ascii.Sample(raster, settings)
	return c.renderer.Render(cells, settings, opts.Width, opts.Height)
}

// animationClock walks an animation's frames in order as capture time
// advances, compositing each frame exactly once.
type animationClock struct {
	seq     *gifseq.Sequence
	comp    *gifseq.Compositor
	index   int
	nextMS  int
	current *imageutil.RGBAImage
}

func newAnimationClock(seq *gifseq.Sequence) *animationClock {
	c := &animationClock{
		seq:  seq,
		comp: gifseq.NewCompositor(seq.Width, seq.Height),
	}
	c.current = c.comp.Compose(seq.Frames[0])
	c.nextMS = seq.Frames[0].DelayMS
	c.index = 0
	return c
}

// advance returns the composited frame visible at elapsedMS, walking
// forward through any frames whose display windows have passed.
func (c *animationClock) advance(elapsedMS int) *imageutil.RGBAImage {
	for c.index < c.seq.FrameCount()-1 && elapsedMS >= c.nextMS {
		c.index++
		c.current = c.comp.Compose(c.seq.Frames[c.index])
		c.nextMS += c.seq.Frames[c.index].DelayMS
	}
	return c.current
}
