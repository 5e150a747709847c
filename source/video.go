package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/wbrown/img2ascii/imageutil"
)

// DefaultSeekTimeout bounds a single Seek call when the caller's
// context carries no deadline of its own. Seeks on damaged containers
// can otherwise block forever.
const DefaultSeekTimeout = 5 * time.Second

// Video is a seekable video frame source backed by an OpenCV capture.
// Methods are not safe for concurrent use; the capture belongs to one
// goroutine at a time.
type Video struct {
	mu     sync.Mutex
	cap    *gocv.VideoCapture
	mat    gocv.Mat
	width  int
	height int
	fps    float64
	frames int
	closed bool
}

// OpenVideo opens a video file for frame capture.
func OpenVideo(path string) (*Video, error) {
	cap, err := gocv.OpenVideoCapture(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("%w: could not open %q", ErrLoadFailure, path)
	}

	v := &Video{
		cap:    cap,
		mat:    gocv.NewMat(),
		width:  int(cap.Get(gocv.VideoCaptureFrameWidth)),
		height: int(cap.Get(gocv.VideoCaptureFrameHeight)),
		fps:    cap.Get(gocv.VideoCaptureFPS),
		frames: int(cap.Get(gocv.VideoCaptureFrameCount)),
	}
	if v.fps <= 0 {
		v.fps = 30
	}
	return v, nil
}

func (v *Video) NativeWidth() int  { return v.width }
func (v *Video) NativeHeight() int { return v.height }
func (v *Video) isSource()         {}

// FPS returns the container's declared frame rate.
func (v *Video) FPS() float64 { return v.fps }

// Duration returns the video's play time derived from frame count and
// frame rate; zero when the container does not declare a frame count.
func (v *Video) Duration() time.Duration {
	if v.frames <= 0 {
		return 0
	}
	return time.Duration(float64(v.frames) / v.fps * float64(time.Second))
}

// CurrentTime reports the capture's playhead position.
func (v *Video) CurrentTime() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return time.Duration(v.cap.Get(gocv.VideoCapturePosMsec)) * time.Millisecond
}

// Seek positions the capture at the given timestamp. The underlying
// seek is a blocking call with no native cancellation, so it runs on
// its own goroutine and the wait is bounded by ctx plus
// DefaultSeekTimeout; on timeout the goroutine is abandoned and
// ErrSeekTimeout returned.
func (v *Video) Seek(ctx context.Context, t time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultSeekTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if !v.closed {
			v.cap.Set(gocv.VideoCapturePosMsec, float64(t.Milliseconds()))
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w at %v: %v", ErrSeekTimeout, t, ctx.Err())
	}
}

// CaptureFrame decodes the frame at the current position and advances
// the playhead. The returned raster is an independent copy.
func (v *Video) CaptureFrame() (*imageutil.RGBAImage, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil, fmt.Errorf("%w: capture closed", ErrLoadFailure)
	}
	if ok := v.cap.Read(&v.mat); !ok || v.mat.Empty() {
		return nil, fmt.Errorf("%w: no frame at current position", ErrLoadFailure)
	}

	img, err := v.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}
	return imageutil.RGBAImageFromImage(img), nil
}

// Close releases the capture and its decode buffer.
func (v *Video) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true
	v.mat.Close()
	return v.cap.Close()
}
