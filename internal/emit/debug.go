package emit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"kartvid/internal/img"
	"kartvid/internal/textutil"
)

// debugLockName is held in the debug directory while frames are written.
const debugLockName = ".kartvid.lock"

// ErrDebugDirLocked is returned when another process writes to the same
// debug directory.
var ErrDebugDirLocked = errors.New("debug directory in use by another kartvid process")

// DebugFrameWriter stores frames as PNG files named after their source and
// frame number. It holds an exclusive lock on the directory until Close.
type DebugFrameWriter struct {
	dir  string
	lock *flock.Flock
}

// NewDebugFrameWriter creates dir if needed and locks it.
func NewDebugFrameWriter(dir string) (*DebugFrameWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create debug dir: %w", err)
	}
	lock := flock.New(filepath.Join(dir, debugLockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire debug dir lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDebugDirLocked, dir)
	}
	return &DebugFrameWriter{dir: dir, lock: lock}, nil
}

// Path returns where the frame of source with the given index is stored.
func (w *DebugFrameWriter) Path(source string, frame int) string {
	name := fmt.Sprintf("%s_%06d.png", textutil.SanitizeToken(filepath.Base(source)), frame)
	return filepath.Join(w.dir, name)
}

// WriteFrame implements kv.FrameWriter.
func (w *DebugFrameWriter) WriteFrame(source string, frame int, im *img.Image) error {
	return img.Write(w.Path(source, frame), im)
}

// Close releases the directory lock.
func (w *DebugFrameWriter) Close() error {
	if w == nil || w.lock == nil {
		return nil
	}
	return w.lock.Unlock()
}
