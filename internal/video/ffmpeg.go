package video

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"kartvid/internal/img"
	"kartvid/internal/logging"
)

// maxStderr bounds the ffmpeg diagnostics kept for error messages.
const maxStderr = 4096

// Decoder decodes video files with ffmpeg.
type Decoder struct {
	FFmpeg  string
	FFprobe string
	Logger  *slog.Logger
}

// Open inspects path and returns a handle ready for iteration.
func (d Decoder) Open(ctx context.Context, path string) (*Video, error) {
	probe, err := Inspect(ctx, d.FFprobe, path)
	if err != nil {
		return nil, err
	}
	stream, ok := probe.VideoStream()
	if !ok {
		return nil, fmt.Errorf("open %s: no video stream found", path)
	}
	if stream.Width <= 0 || stream.Height <= 0 {
		return nil, fmt.Errorf("open %s: invalid video dimensions %dx%d", path, stream.Width, stream.Height)
	}
	rate := probe.FrameRate()
	if rate <= 0 {
		return nil, fmt.Errorf("open %s: unknown frame rate", path)
	}
	binary := strings.TrimSpace(d.FFmpeg)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Video{
		Path:   path,
		Probe:  probe,
		Width:  stream.Width,
		Height: stream.Height,
		Rate:   rate,
		ffmpeg: binary,
		logger: logging.NewComponentLogger(d.Logger, "video"),
	}, nil
}

// Video is an opened video file.
type Video struct {
	Path   string
	Probe  Probe
	Width  int
	Height int
	Rate   float64 // frames per second

	ffmpeg string
	logger *slog.Logger
}

// FrameCount returns the declared number of frames, or 0 when unknown.
func (v *Video) FrameCount() int64 {
	return v.Probe.FrameCount()
}

// Frames decodes the video and hands every frame to fn in order. It
// returns the number of frames delivered.
func (v *Video) Frames(ctx context.Context, fn FrameFunc) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, v.ffmpeg,
		"-v", "error", "-nostdin", "-hide_banner",
		"-i", v.Path,
		"-map", "0:v:0",
		"-f", "rawvideo", "-pix_fmt", "rgb24",
		"-",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &limitedWriter{w: &stderr, n: maxStderr}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("ffmpeg pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start ffmpeg: %w", err)
	}
	v.logger.Debug("ffmpeg decoding started",
		logging.String(logging.FieldSource, v.Path),
		logging.Int("width", v.Width),
		logging.Int("height", v.Height),
		logging.Float64("fps", v.Rate),
	)

	count, iterErr := readRawFrames(bufio.NewReaderSize(stdout, 1<<20), v.Width, v.Height, v.Rate, fn)
	stopped := errors.Is(iterErr, ErrStop)
	if stopped || iterErr != nil {
		cancel()
		_, _ = io.Copy(io.Discard, stdout)
	}
	waitErr := cmd.Wait()

	switch {
	case stopped:
		return count, nil
	case iterErr != nil:
		return count, iterErr
	case ctx.Err() != nil && waitErr != nil:
		return count, ctx.Err()
	case waitErr != nil:
		return count, fmt.Errorf("ffmpeg %s: %w: %s", v.Path, waitErr, strings.TrimSpace(stderr.String()))
	}
	return count, nil
}

// readRawFrames slices an rgb24 stream into frames. A trailing partial frame
// is dropped.
func readRawFrames(r io.Reader, width, height int, rate float64, fn FrameFunc) (int, error) {
	size := width * height * 3
	buf := make([]byte, size)
	count := 0
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return count, nil
			}
			return count, fmt.Errorf("read frame %d: %w", count+1, err)
		}
		im := img.New(width, height)
		for i := range im.Pix {
			im.Pix[i] = img.Pixel{R: buf[i*3], G: buf[i*3+1], B: buf[i*3+2]}
		}
		im.SetFullBounds()
		count++
		if err := fn(Frame{Index: count, TimeMs: frameTime(count, rate), Image: im}); err != nil {
			return count, err
		}
	}
}

type limitedWriter struct {
	w io.Writer
	n int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if l.n <= 0 {
		return len(p), nil
	}
	chunk := p
	if len(chunk) > l.n {
		chunk = chunk[:l.n]
	}
	written, err := l.w.Write(chunk)
	l.n -= written
	if err != nil {
		return written, err
	}
	return len(p), nil
}
