package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"testing"
	"time"

	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/gifseq"
	"github.com/wbrown/img2ascii/imageutil"
	"github.com/wbrown/img2ascii/source"
)

// stubEncoder records what it was asked to encode.
type stubEncoder struct {
	frames []Frame
	width  int
	height int
	err    error
}

func (s *stubEncoder) Encode(frames []Frame, width, height int) ([]byte, error) {
	s.frames = frames
	s.width = width
	s.height = height
	if s.err != nil {
		return nil, s.err
	}
	return []byte("blob"), nil
}

func solidPatch(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func testStill(w, h int, c color.RGBA) *source.Still {
	return &source.Still{
		Image: imageutil.RGBAImageFromImage(solidPatch(w, h, c)),
	}
}

func testAnimation(delays ...int) *source.Animation {
	seq := &gifseq.Sequence{Width: 16, Height: 16}
	shades := []uint8{0, 128, 255}
	for i, d := range delays {
		shade := shades[i%len(shades)]
		seq.Frames = append(seq.Frames, gifseq.Frame{
			Patch:   solidPatch(16, 16, color.RGBA{shade, shade, shade, 255}),
			Bounds:  image.Rect(0, 0, 16, 16),
			DelayMS: d,
		})
	}
	return &source.Animation{Seq: seq}
}

func newTestCoordinator(stub *stubEncoder, f Format) *Coordinator {
	c := NewCoordinator(img2ascii.NewCellRenderer())
	c.SetEncoder(f, stub)
	return c
}

func TestExportStillSingleFrame(t *testing.T) {
	t.Parallel()

	stub := &stubEncoder{}
	c := newTestCoordinator(stub, FormatGIF)

	var last float64
	blob, err := c.Export(context.Background(), testStill(16, 16, color.RGBA{255, 255, 255, 255}),
		img2ascii.DefaultSettings(), Options{
			Width: 32, Height: 32, Format: FormatGIF,
			Progress: func(p float64) { last = p },
		})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if blob == nil {
		t.Fatal("expected a blob")
	}
	if len(stub.frames) != 1 {
		t.Fatalf("still export produced %d frames, want 1", len(stub.frames))
	}
	if stub.frames[0].DelayMS != 100 {
		t.Errorf("still frame delay = %dms, want 100", stub.frames[0].DelayMS)
	}
	if last != 1 {
		t.Errorf("final progress = %v, want 1", last)
	}
}

func TestExportAnimationPreservesDelays(t *testing.T) {
	t.Parallel()

	stub := &stubEncoder{}
	c := newTestCoordinator(stub, FormatGIF)

	_, err := c.Export(context.Background(), testAnimation(100, 200),
		img2ascii.DefaultSettings(), Options{Width: 32, Height: 32, Format: FormatGIF})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(stub.frames) != 2 {
		t.Fatalf("animation export produced %d frames, want 2", len(stub.frames))
	}
	for i, want := range []int{100, 200} {
		if stub.frames[i].DelayMS != want {
			t.Errorf("frame %d delay = %dms, want %d", i, stub.frames[i].DelayMS, want)
		}
	}
	for i, f := range stub.frames {
		if got := f.Image.Bounds(); got != image.Rect(0, 0, 32, 32) {
			t.Errorf("frame %d bounds = %v, want 32x32", i, got)
		}
	}
}

func TestExportProgressAdvances(t *testing.T) {
	t.Parallel()

	stub := &stubEncoder{}
	c := newTestCoordinator(stub, FormatGIF)

	var reports []float64
	_, err := c.Export(context.Background(), testAnimation(100, 100, 100, 100),
		img2ascii.DefaultSettings(), Options{
			Width: 16, Height: 16, Format: FormatGIF,
			Progress: func(p float64) { reports = append(reports, p) },
		})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(reports) != 4 {
		t.Fatalf("got %d progress reports, want 4", len(reports))
	}
	for i := 1; i < len(reports); i++ {
		if reports[i] <= reports[i-1] {
			t.Errorf("progress not increasing: %v", reports)
		}
	}
	if reports[len(reports)-1] != 1 {
		t.Errorf("final progress = %v, want 1", reports[len(reports)-1])
	}
}

func TestExportEncoderErrorResetsProgress(t *testing.T) {
	t.Parallel()

	stub := &stubEncoder{err: errors.New("disk full")}
	c := newTestCoordinator(stub, FormatGIF)

	var last float64 = -1
	blob, err := c.Export(context.Background(), testStill(16, 16, color.RGBA{0, 0, 0, 255}),
		img2ascii.DefaultSettings(), Options{
			Width: 16, Height: 16, Format: FormatGIF,
			Progress: func(p float64) { last = p },
		})
	if !errors.Is(err, ErrExportFailed) {
		t.Fatalf("err = %v, want ErrExportFailed", err)
	}
	if blob != nil {
		t.Error("failed export must not return partial output")
	}
	if last != 0 {
		t.Errorf("progress after failure = %v, want 0", last)
	}
}

func TestExportCancelledContext(t *testing.T) {
	t.Parallel()

	stub := &stubEncoder{}
	c := newTestCoordinator(stub, FormatGIF)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Export(ctx, testAnimation(100, 100),
		img2ascii.DefaultSettings(), Options{Width: 16, Height: 16, Format: FormatGIF})
	if !errors.Is(err, ErrExportFailed) {
		t.Fatalf("err = %v, want ErrExportFailed", err)
	}
}

func TestExportCapturePathFixedRate(t *testing.T) {
	t.Parallel()

	stub := &stubEncoder{}
	c := newTestCoordinator(stub, FormatMP4)

	// A short animation is captured for the minimum window, not its
	// own loop length.
	_, err := c.Export(context.Background(), testAnimation(100, 200),
		img2ascii.DefaultSettings(), Options{
			Width: 16, Height: 16, Format: FormatMP4, CaptureFPS: 10,
		})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	want := DefaultStillDurationMS * 10 / 1000
	if len(stub.frames) != want {
		t.Fatalf("capture produced %d frames, want %d", len(stub.frames), want)
	}
	for i, f := range stub.frames {
		if f.DelayMS != 100 {
			t.Errorf("frame %d delay = %dms, want 100", i, f.DelayMS)
		}
	}
}

func TestExportCaptureStill(t *testing.T) {
	t.Parallel()

	stub := &stubEncoder{}
	c := newTestCoordinator(stub, FormatWebM)

	_, err := c.Export(context.Background(), testStill(16, 16, color.RGBA{200, 0, 0, 255}),
		img2ascii.DefaultSettings(), Options{
			Width: 16, Height: 16, Format: FormatWebM, CaptureFPS: 5,
		})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if want := DefaultStillDurationMS * 5 / 1000; len(stub.frames) != want {
		t.Fatalf("still capture produced %d frames, want %d", len(stub.frames), want)
	}
}

func TestAnimationClockWalksFrames(t *testing.T) {
	t.Parallel()

	anim := testAnimation(100, 200, 100)
	clock := newAnimationClock(anim.Seq)

	// Frame shades are 0, 128, 255 in order.
	checks := []struct {
		elapsedMS int
		wantShade uint8
	}{
		{0, 0},
		{99, 0},
		{100, 128},
		{299, 128},
		{300, 255},
		{10000, 255}, // clock never wraps; the last frame holds
	}
	for _, c := range checks {
		raster := clock.advance(c.elapsedMS)
		got := raster.GetRGB(0, 0)
		if got.R != c.wantShade {
			t.Errorf("at %dms shade = %d, want %d", c.elapsedMS, got.R, c.wantShade)
		}
	}
}

func TestGIFEncoderRoundTrip(t *testing.T) {
	t.Parallel()

	frames := []Frame{
		{Image: image.NewRGBA(image.Rect(0, 0, 8, 8)), DelayMS: 100},
		{Image: image.NewRGBA(image.Rect(0, 0, 8, 8)), DelayMS: 200},
	}
	enc := &GIFEncoder{}
	blob, err := enc.Encode(frames, 8, 8)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := gif.DecodeAll(bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("DecodeAll failed: %v", err)
	}
	if len(decoded.Image) != 2 {
		t.Fatalf("decoded %d frames, want 2", len(decoded.Image))
	}
	for i, want := range []int{10, 20} {
		if decoded.Delay[i] != want {
			t.Errorf("frame %d delay = %d (10ms units), want %d", i, decoded.Delay[i], want)
		}
	}
}

func TestGIFEncoderRejectsMismatchedBounds(t *testing.T) {
	t.Parallel()

	enc := &GIFEncoder{}
	if _, err := enc.Encode(nil, 8, 8); err == nil {
		t.Error("expected error for empty frame list")
	}
	frames := []Frame{{Image: image.NewRGBA(image.Rect(0, 0, 4, 4)), DelayMS: 100}}
	if _, err := enc.Encode(frames, 8, 8); err == nil {
		t.Error("expected error for mismatched frame bounds")
	}
}

func TestVideoFrameBudget(t *testing.T) {
	t.Parallel()

	checks := []struct {
		duration time.Duration
		want     int
	}{
		{60 * time.Second, 150}, // long videos hit the cap
		{10 * time.Second, 150},
		{5 * time.Second, 75},
		{time.Second, 15},
		{100 * time.Millisecond, 1},
		{0, 1},
	}
	for _, c := range checks {
		got := videoFrameBudget(c.duration, DefaultVideoFPS, DefaultMaxVideoFrames)
		if got != c.want {
			t.Errorf("videoFrameBudget(%v) = %d, want %d", c.duration, got, c.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]Format{"gif": FormatGIF, "MP4": FormatMP4, "webm": FormatWebM} {
		got, err := ParseFormat(name)
		if err != nil {
			t.Fatalf("ParseFormat(%q) failed: %v", name, err)
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %v, want %v", name, got, want)
		}
	}
	if _, err := ParseFormat("avi"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
