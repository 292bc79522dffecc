package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"kartvid/internal/fileutil"
	"kartvid/internal/img"
	"kartvid/internal/logging"
)

// frameExtensions are the still formats img can decode.
var frameExtensions = map[string]bool{
	".ppm":  true,
	".png":  true,
	".webp": true,
	".bmp":  true,
}

// ListFrames returns the frame files in dir in lexical order.
func ListFrames(dir string) ([]string, error) {
	names, err := fileutil.ListSorted(dir, func(name string) bool {
		return !strings.HasPrefix(name, ".") && frameExtensions[strings.ToLower(filepath.Ext(name))]
	})
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	return names, nil
}

// FrameDir is a directory of still frames.
type FrameDir struct {
	Dir    string
	Rate   float64 // frames per second used for timestamps
	Files  []string
	logger *slog.Logger
}

// OpenDir lists the frames of dir. rate supplies the timestamps.
func OpenDir(dir string, rate float64, logger *slog.Logger) (*FrameDir, error) {
	files, err := ListFrames(dir)
	if err != nil {
		return nil, err
	}
	return &FrameDir{
		Dir:    dir,
		Rate:   rate,
		Files:  files,
		logger: logging.NewComponentLogger(logger, "frames"),
	}, nil
}

// FrameCount returns the number of frame files.
func (d *FrameDir) FrameCount() int64 {
	return int64(len(d.Files))
}

// Frames decodes every file in order and hands it to fn. A file that fails
// to decode is logged and skipped, but still occupies its frame number so
// timestamps stay aligned with the file sequence.
func (d *FrameDir) Frames(ctx context.Context, fn FrameFunc) (int, error) {
	count := 0
	for i, name := range d.Files {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		index := i + 1
		path := filepath.Join(d.Dir, name)
		im, err := img.Read(path)
		if err != nil {
			logging.WarnWithContext(d.logger, "frame file not decoded", logging.EventFrameSkipped,
				logging.String(logging.FieldSource, d.Dir),
				logging.Int(logging.FieldFrame, index),
				logging.String("file", name),
				logging.Error(err),
				logging.String(logging.FieldImpact, "frame skipped"),
			)
			continue
		}
		im.SetFullBounds()
		count++
		if err := fn(Frame{Index: index, TimeMs: frameTime(index, d.Rate), Image: im}); err != nil {
			if errors.Is(err, ErrStop) {
				return count, nil
			}
			return count, err
		}
	}
	return count, nil
}
