package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// FFmpegEncoder shells out to ffmpeg, feeding raw RGBA frames over
// stdin. The capture path produces frames at a fixed rate, so the
// first frame's duration sets the input framerate. Output goes to a
// scratch file because the MP4 muxer needs a seekable target.
type FFmpegEncoder struct {
	Codec     string // e.g. "libx264", "libvpx-vp9"
	Container string // e.g. "mp4", "webm"

	// Binary overrides the ffmpeg executable name, for tests.
	Binary string
}

// Encode implements Encoder.
func (e *FFmpegEncoder) Encode(frames []Frame, width, height int) ([]byte, error) {
	if len(frames) == 0 {
		return nil, errors.New("ffmpeg: no frames to encode")
	}
	fps := 1000 / frames[0].DelayMS
	if fps < 1 {
		fps = 1
	}

	dir, err := os.MkdirTemp("", "img2ascii-export-")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg: scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)
	outPath := filepath.Join(dir, "out."+e.Container)

	binary := e.Binary
	if binary == "" {
		binary = "ffmpeg"
	}
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", "pipe:0",
		"-c:v", e.Codec,
		"-pix_fmt", "yuv420p",
		outPath,
	}

	cmd := exec.Command(binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg: stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg: start: %w", err)
	}

	var writeErr error
	for _, f := range frames {
		if _, err := stdin.Write(f.Image.Pix); err != nil {
			writeErr = err
			break
		}
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, stderr.String())
	}
	if writeErr != nil {
		return nil, fmt.Errorf("ffmpeg: writing frames: %w", writeErr)
	}

	blob, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg: reading output: %w", err)
	}
	return blob, nil
}
