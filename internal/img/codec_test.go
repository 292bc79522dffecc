package img

import (
	"bufio"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodePPMWithComment(t *testing.T) {
	data := "P6\n# written by hand\n2 1\n255\n" + string([]byte{0, 1, 1, 200, 100, 50})
	im, err := Decode(bufio.NewReader(strings.NewReader(data)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if im.Width != 2 || im.Height != 1 {
		t.Fatalf("unexpected size %dx%d", im.Width, im.Height)
	}
	if im.At(1, 0) != (Pixel{R: 200, G: 100, B: 50}) {
		t.Fatalf("unexpected pixel %v", im.At(1, 0))
	}
	if im.MinX != 1 || im.MaxX != 2 || im.MinY != 0 || im.MaxY != 1 {
		t.Fatalf("unexpected bounds [%d,%d)x[%d,%d)", im.MinX, im.MaxX, im.MinY, im.MaxY)
	}
}

func TestDecodePPMRejectsDeepColor(t *testing.T) {
	data := "P6 1 1 65535\n" + string(make([]byte, 6))
	if _, err := Decode(bufio.NewReader(strings.NewReader(data))); err == nil {
		t.Fatal("expected error for 16-bit ppm")
	}
}

func TestDecodePPMScalesShallowColor(t *testing.T) {
	data := "P6 2 1 15\n" + string([]byte{15, 7, 0, 0, 15, 20})
	im, err := Decode(bufio.NewReader(strings.NewReader(data)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if im.At(0, 0) != (Pixel{R: 255, G: 119, B: 0}) {
		t.Fatalf("unexpected scaled pixel %v", im.At(0, 0))
	}
	// Out of range samples clamp to full intensity.
	if im.At(1, 0) != (Pixel{R: 0, G: 255, B: 255}) {
		t.Fatalf("unexpected clamped pixel %v", im.At(1, 0))
	}
}

func TestDecodePPMRejectsOversizedHeader(t *testing.T) {
	for _, header := range []string{"P6 100000 2 255\n", "P6 2 100000 255\n", "P6 2 2 0\n"} {
		if _, err := Decode(bufio.NewReader(strings.NewReader(header))); err == nil {
			t.Fatalf("expected error for header %q", header)
		}
	}
}

func TestFromImageUnpremultipliesRGBA(t *testing.T) {
	premul := image.NewRGBA(image.Rect(0, 0, 1, 1))
	premul.SetRGBA(0, 0, color.RGBA{R: 64, G: 32, B: 0, A: 128})
	straight := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	straight.SetNRGBA(0, 0, color.NRGBA{R: 127, G: 63, B: 0, A: 128})

	a, b := FromImage(premul).At(0, 0), FromImage(straight).At(0, 0)
	if a != b || a != (Pixel{R: 127, G: 63, B: 0}) {
		t.Fatalf("decoder type changed pixel value: rgba %v nrgba %v", a, b)
	}
}

func TestDecodePPMTruncated(t *testing.T) {
	data := "P6 2 2 255\n" + string(make([]byte, 5))
	if _, err := Decode(bufio.NewReader(strings.NewReader(data))); err == nil {
		t.Fatal("expected error for truncated ppm")
	}
}

func TestDecodePNGTransparentIsBlack(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 250, G: 250, B: 250, A: 0})
	src.SetNRGBA(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	im, err := Decode(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !im.At(0, 0).IsBlack() {
		t.Fatalf("transparent pixel should decode black, got %v", im.At(0, 0))
	}
	if im.At(2, 1) != (Pixel{R: 10, G: 20, B: 30}) {
		t.Fatalf("unexpected pixel %v", im.At(2, 1))
	}
	if im.MinX != 2 || im.MinY != 1 {
		t.Fatalf("unexpected bounds origin (%d, %d)", im.MinX, im.MinY)
	}
}

func TestWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	src := New(4, 3)
	src.Set(1, 2, Pixel{R: 9, G: 99, B: 199})
	src.ComputeBounds()

	for _, name := range []string{"frame.ppm", "frame.png"} {
		path := filepath.Join(dir, name)
		if err := Write(path, src); err != nil {
			t.Fatalf("Write %s: %v", name, err)
		}
		got, err := Read(path)
		if err != nil {
			t.Fatalf("Read %s: %v", name, err)
		}
		if got.At(1, 2) != src.At(1, 2) || got.MinX != 1 || got.MaxY != 3 {
			t.Fatalf("%s: pixel or bounds lost: %v [%d,%d)", name, got.At(1, 2), got.MinX, got.MaxY)
		}
	}
}

func TestTranslateAndAnd(t *testing.T) {
	src := New(3, 3)
	src.Set(0, 0, Pixel{R: 0xff, G: 0x0f, B: 0xf0})

	moved := TranslateXY(src, 2, 1)
	if moved.At(2, 1) != src.At(0, 0) {
		t.Fatalf("translate lost pixel: %v", moved.At(2, 1))
	}
	if !moved.At(0, 0).IsBlack() {
		t.Fatalf("vacated pixel should be black")
	}

	mask := New(3, 3)
	mask.Set(2, 1, Pixel{R: 0x0f, G: 0xff, B: 0x00})
	if err := And(moved, mask); err != nil {
		t.Fatalf("And: %v", err)
	}
	if moved.At(2, 1) != (Pixel{R: 0x0f, G: 0x0f, B: 0x00}) {
		t.Fatalf("unexpected AND result %v", moved.At(2, 1))
	}
}
