package video

import (
	"errors"

	"kartvid/internal/img"
)

// ErrStop ends frame iteration without error when returned by a FrameFunc.
var ErrStop = errors.New("stop iteration")

// Frame is one decoded frame of a source.
type Frame struct {
	Index  int   // 1-based
	TimeMs int64 // position in the source
	Image  *img.Image
}

// FrameFunc consumes frames in order. Returning ErrStop ends iteration; any
// other error aborts it and is returned to the caller.
type FrameFunc func(Frame) error
