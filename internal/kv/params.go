package kv

import (
	"math"
	"strings"

	"kartvid/internal/masks"
)

// Params holds the tuned classification thresholds and race tracking knobs.
type Params struct {
	ThresholdChar   float64
	ThresholdTrack  float64
	ThresholdLakitu float64
	ThresholdPos    float64
	ThresholdItem   float64
	// MinRaceFrames is the number of frames after a race start during which
	// further frames are ignored. A frame MinRaceFrames after the start is
	// the first one classified.
	MinRaceFrames int
	// HistoryFrames sizes the pre-race ring buffer used to smooth characters.
	HistoryFrames int
	// ExceptionTrackPrefix selects tracks whose rank numerals only appear
	// for finished players. Empty disables the exception.
	ExceptionTrackPrefix string
	// ItemsChange makes an item state change alone worth emitting.
	ItemsChange bool
}

// The mask set was captured from NTSC video.
const (
	nominalFramerate = 29.97
	minRaceSeconds   = 2
)

// DefaultParams returns the thresholds the mask set was tuned against.
func DefaultParams() Params {
	return Params{
		ThresholdChar:        0.15,
		ThresholdTrack:       0.11,
		ThresholdLakitu:      0.08,
		ThresholdPos:         0.11,
		ThresholdItem:        0.11,
		MinRaceFrames:        int(math.Ceil(minRaceSeconds * nominalFramerate)),
		HistoryFrames:        10,
		ExceptionTrackPrefix: "y",
		ItemsChange:          true,
	}
}

func (p Params) threshold(c masks.Category) float64 {
	switch c {
	case masks.CategoryChar:
		return p.ThresholdChar
	case masks.CategoryTrack:
		return p.ThresholdTrack
	case masks.CategoryLakitu:
		return p.ThresholdLakitu
	case masks.CategoryPos:
		return p.ThresholdPos
	case masks.CategoryItem:
		return p.ThresholdItem
	default:
		return 0
	}
}

// ExceptionTrack reports whether track needs the finished-players-only
// rank handling.
func (p Params) ExceptionTrack(track string) bool {
	return p.ExceptionTrackPrefix != "" && strings.HasPrefix(track, p.ExceptionTrackPrefix)
}
