package img

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDimensionMismatch is returned when a frame and a mask differ in size.
	ErrDimensionMismatch = errors.New("image dimensions do not match")
	// ErrNoComparablePixels is returned when a mask has no visible pixels
	// inside its bounding box, which would make the score undefined.
	ErrNoComparablePixels = errors.New("mask has no comparable pixels")
)

// maxDistance is the largest possible RGB distance, sqrt(3 * 255^2).
var maxDistance = math.Sqrt(3 * 255 * 255)

// Comparison is the outcome of scoring a frame against a mask.
type Comparison struct {
	// Score is the mean normalized RGB distance over compared pixels.
	// 0 is an exact match; lower is better.
	Score     float64
	Total     int
	Ignored   int
	Compared  int
	Different int
}

// Compare scores frame against mask. Only pixels inside the mask's bounding
// box are visited and near-black mask pixels are skipped.
func Compare(frame, mask *Image) (Comparison, error) {
	return compare(frame, mask, nil)
}

// CompareOverlay scores frame against mask and also returns a debug image
// whose green channel is 255 minus the distance of every differing pixel.
func CompareOverlay(frame, mask *Image) (Comparison, *Image, error) {
	if frame.Width != mask.Width || frame.Height != mask.Height {
		return Comparison{}, nil, dimensionError(frame, mask)
	}
	overlay := New(frame.Width, frame.Height)
	result, err := compare(frame, mask, overlay)
	if err != nil {
		return result, nil, err
	}
	overlay.ComputeBounds()
	return result, overlay, nil
}

func compare(frame, mask, overlay *Image) (Comparison, error) {
	if frame.Width != mask.Width || frame.Height != mask.Height {
		return Comparison{}, dimensionError(frame, mask)
	}

	result := Comparison{Total: frame.Width * frame.Height}
	var sum float64
	for y := mask.MinY; y < mask.MaxY; y++ {
		for x := mask.MinX; x < mask.MaxX; x++ {
			i := x + mask.Width*y
			mpx := mask.Pix[i]
			if mpx.IsBlack() {
				result.Ignored++
				continue
			}
			result.Compared++

			fpx := frame.Pix[i]
			dr := int(mpx.R) - int(fpx.R)
			dg := int(mpx.G) - int(fpx.G)
			db := int(mpx.B) - int(fpx.B)
			dz2 := dr*dr + dg*dg + db*db
			if dz2 == 0 {
				continue
			}

			dist := math.Sqrt(float64(dz2))
			if overlay != nil {
				overlay.Pix[i].G = uint8(max(0, 255-int(dist)))
			}
			result.Different++
			sum += dist
		}
	}

	if result.Compared == 0 {
		result.Score = math.NaN()
		return result, ErrNoComparablePixels
	}
	result.Score = (sum / maxDistance) / float64(result.Compared)
	return result, nil
}

func dimensionError(frame, mask *Image) error {
	return fmt.Errorf("%w: frame %dx%d, mask %dx%d", ErrDimensionMismatch,
		frame.Width, frame.Height, mask.Width, mask.Height)
}
