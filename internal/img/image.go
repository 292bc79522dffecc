package img

import (
	"fmt"
	"image"
	"image/color"
)

// blackLevel is the per-channel value below which a pixel counts as black.
const blackLevel = 2

// Pixel is a single 8-bit RGB sample.
type Pixel struct {
	R, G, B uint8
}

// IsBlack reports whether every channel is below the near-black level.
func (p Pixel) IsBlack() bool {
	return p.R < blackLevel && p.G < blackLevel && p.B < blackLevel
}

// Image is a row-major RGB raster. MinX/MaxX/MinY/MaxY describe the half-open
// box [MinX,MaxX) x [MinY,MaxY) of non-black content; an image with no
// visible content has MinX >= MaxX.
type Image struct {
	Width  int
	Height int
	MinX   int
	MaxX   int
	MinY   int
	MaxY   int
	Pix    []Pixel
}

// New allocates a black image with an empty bounding box.
func New(width, height int) *Image {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("img: invalid dimensions %dx%d", width, height))
	}
	return &Image{
		Width:  width,
		Height: height,
		MinX:   width,
		MaxX:   0,
		MinY:   height,
		MaxY:   0,
		Pix:    make([]Pixel, width*height),
	}
}

// Coord returns the index of (x, y) within Pix.
func (im *Image) Coord(x, y int) int {
	if x < 0 || x >= im.Width || y < 0 || y >= im.Height {
		panic(fmt.Sprintf("img: coordinate (%d, %d) outside %dx%d", x, y, im.Width, im.Height))
	}
	return x + im.Width*y
}

// At returns the pixel at (x, y).
func (im *Image) At(x, y int) Pixel {
	return im.Pix[im.Coord(x, y)]
}

// Set stores p at (x, y). The bounding box is not updated.
func (im *Image) Set(x, y int, p Pixel) {
	im.Pix[im.Coord(x, y)] = p
}

// Empty reports whether the bounding box holds no pixels.
func (im *Image) Empty() bool {
	return im.MinX >= im.MaxX || im.MinY >= im.MaxY
}

// SetFullBounds marks the whole raster as content. Video frames use this
// because scanning them for black borders costs more than it saves.
func (im *Image) SetFullBounds() {
	im.MinX, im.MaxX = 0, im.Width
	im.MinY, im.MaxY = 0, im.Height
}

// ComputeBounds recomputes the bounding box of non-black pixels.
func (im *Image) ComputeBounds() {
	im.MinX, im.MaxX = im.Width, 0
	im.MinY, im.MaxY = im.Height, 0
	for y := 0; y < im.Height; y++ {
		row := im.Pix[y*im.Width : (y+1)*im.Width]
		for x, px := range row {
			if px.IsBlack() {
				continue
			}
			if x < im.MinX {
				im.MinX = x
			}
			if x+1 > im.MaxX {
				im.MaxX = x + 1
			}
			if y < im.MinY {
				im.MinY = y
			}
			if y+1 > im.MaxY {
				im.MaxY = y + 1
			}
		}
	}
}

// Clone returns a deep copy of the image.
func (im *Image) Clone() *Image {
	out := *im
	out.Pix = append([]Pixel(nil), im.Pix...)
	return &out
}

// FromImage converts any decoded image into an RGB raster and computes its
// bounding box. Colors are taken unpremultiplied so a partly transparent mask
// pixel has the same value whichever decoder produced it. Fully transparent
// pixels become black so they are ignored when the result is used as a mask.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	out := New(b.Dx(), b.Dy())
	at := func(x, y int) color.NRGBA {
		return color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
	}
	if s, ok := src.(*image.NRGBA); ok {
		at = s.NRGBAAt
	}
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			c := at(b.Min.X+x, b.Min.Y+y)
			if c.A == 0 {
				continue
			}
			out.Pix[x+out.Width*y] = Pixel{R: c.R, G: c.G, B: c.B}
		}
	}
	out.ComputeBounds()
	return out
}

// RGBA converts the raster to an opaque *image.RGBA for encoding.
func (im *Image) RGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, im.Width, im.Height))
	for i, px := range im.Pix {
		o := i * 4
		out.Pix[o] = px.R
		out.Pix[o+1] = px.G
		out.Pix[o+2] = px.B
		out.Pix[o+3] = 0xff
	}
	return out
}
