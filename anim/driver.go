// Package anim drives live preview of an ASCII rendition: it advances
// the frame source at its native timing and re-runs the sampling and
// rendering pipeline once per display tick, independent of how fast
// the source's own frames change.
package anim

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/gifseq"
	"github.com/wbrown/img2ascii/imageutil"
	"github.com/wbrown/img2ascii/source"
)

// State is the driver's playback state.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

type request int

const (
	reqNone request = iota
	reqPlay
	reqPause
	reqReset
)

// Driver owns the live preview loop for one loaded source. Control
// requests (Play, Pause, Reset) may arrive from any goroutine at any
// time; they take effect at the next tick boundary. The composite
// canvas and the preview surface are owned exclusively by the ticking
// goroutine.
type Driver struct {
	mu      sync.Mutex
	state   State
	pending request

	src      source.Source
	settings img2ascii.Settings
	renderer *img2ascii.CellRenderer

	// GIF playback state: the compositor retains the canvas between
	// frames, frameIndex tracks the displayed frame, lastSwap the
	// moment it was swapped in.
	comp       *gifseq.Compositor
	frameIndex int
	lastSwap   time.Time

	// current is the most recently composed/decoded source raster;
	// preview is the rendered output surface.
	current *imageutil.RGBAImage
	preview *image.RGBA

	outputWidth  int
	outputHeight int
}

// NewDriver creates a driver for the given source. The preview surface
// matches the source's native dimensions unless overridden with
// SetOutputSize.
func NewDriver(src source.Source, settings img2ascii.Settings, renderer *img2ascii.CellRenderer) *Driver {
	d := &Driver{
		state:        StateIdle,
		src:          src,
		settings:     settings,
		renderer:     renderer,
		outputWidth:  src.NativeWidth(),
		outputHeight: src.NativeHeight(),
	}
	if anim, ok := src.(*source.Animation); ok {
		d.comp = gifseq.NewCompositor(anim.Seq.Width, anim.Seq.Height)
	}
	return d
}

// State reports the current playback state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Play requests a transition to Playing at the next tick.
func (d *Driver) Play() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = reqPlay
}

// Pause requests a transition to Paused at the next tick. The current
// frame position is retained for resume.
func (d *Driver) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = reqPause
}

// Reset requests a rewind to the start at the next tick: frame index
// zero for an animation, time zero for a video. The driver re-renders
// once and lands in Paused.
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = reqReset
}

// SetSettings swaps the conversion settings used from the next tick on.
func (d *Driver) SetSettings(s img2ascii.Settings) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settings = s
}

// SetOutputSize changes the preview surface dimensions from the next
// tick on.
func (d *Driver) SetOutputSize(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.outputWidth = width
	d.outputHeight = height
}

// Preview returns the most recently rendered output surface, or nil
// before the first tick renders one. The surface is replaced, never
// mutated, so the caller may keep the returned value.
func (d *Driver) Preview() *image.RGBA {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.preview
}

// Cells returns the most recent sampled cell grid, or nil before the
// first tick.
func (d *Driver) Cells() [][]img2ascii.Cell {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return nil
	}
	return img2ascii.Sample(d.current, d.settings)
}

// Tick advances playback and re-renders the preview. It is the single
// suspension-free unit of work the display loop schedules once per
// refresh; concurrent control requests are applied at its start.
func (d *Driver) Tick(now time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.pending {
	case reqPlay:
		if d.state != StatePlaying {
			d.state = StatePlaying
			d.lastSwap = now
		}
	case reqPause:
		if d.state == StatePlaying {
			d.state = StatePaused
		}
	case reqReset:
		if err := d.rewind(); err != nil {
			d.pending = reqNone
			return err
		}
		d.state = StatePaused
		d.pending = reqNone
		return d.renderLocked()
	}
	d.pending = reqNone

	if d.state != StatePlaying {
		return nil
	}

	if err := d.advanceLocked(now); err != nil {
		return err
	}
	return d.renderLocked()
}

// advanceLocked updates d.current according to the source's native
// timing. Caller holds d.mu.
func (d *Driver) advanceLocked(now time.Time) error {
	switch src := d.src.(type) {
	case *source.Still:
		if d.current == nil {
			d.current = src.Image
		}

	case *source.Animation:
		frames := src.Seq.Frames
		if d.current == nil {
			d.current = d.comp.Compose(frames[d.frameIndex])
			d.lastSwap = now
			return nil
		}
		delay := time.Duration(frames[d.frameIndex].DelayMS) * time.Millisecond
		if now.Sub(d.lastSwap) >= delay {
			d.frameIndex = (d.frameIndex + 1) % len(frames)
			d.current = d.comp.Compose(frames[d.frameIndex])
			d.lastSwap = now
		}

	case *source.Video:
		interval := time.Duration(float64(time.Second) / src.FPS())
		if d.current == nil || now.Sub(d.lastSwap) >= interval {
			frame, err := src.CaptureFrame()
			if err != nil {
				return fmt.Errorf("capture failed: %w", err)
			}
			d.current = frame
			d.lastSwap = now
		}

	default:
		return fmt.Errorf("unknown source variant %T", d.src)
	}
	return nil
}

// rewind returns the source to its first frame. Caller holds d.mu.
func (d *Driver) rewind() error {
	d.frameIndex = 0
	d.current = nil

	switch src := d.src.(type) {
	case *source.Animation:
		d.comp = gifseq.NewCompositor(src.Seq.Width, src.Seq.Height)
		d.current = d.comp.Compose(src.Seq.Frames[0])
	case *source.Video:
		ctx, cancel := context.WithTimeout(context.Background(), source.DefaultSeekTimeout)
		defer cancel()
		if err := src.Seek(ctx, 0); err != nil {
			return err
		}
		frame, err := src.CaptureFrame()
		if err != nil {
			return err
		}
		d.current = frame
	case *source.Still:
		d.current = src.Image
	}
	return nil
}

// renderLocked samples the current raster and repaints the preview
// surface. Caller holds d.mu.
func (d *Driver) renderLocked() error {
	if d.current == nil {
		return nil
	}
	cells := img2ascii.Sample(d.current, d.settings)
	d.preview = d.renderer.Render(cells, d.settings, d.outputWidth, d.outputHeight)
	return nil
}

// Run drives Tick at the given refresh interval until ctx is done.
// All rendering happens on this goroutine.
func (d *Driver) Run(ctx context.Context, refresh time.Duration) error {
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := d.Tick(now); err != nil {
				return err
			}
		}
	}
}
