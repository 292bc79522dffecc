package main

import (
	"path/filepath"
	"testing"

	"kartvid/internal/img"
	"kartvid/internal/testsupport"
)

func TestCompareCommand(t *testing.T) {
	kit := testsupport.NewKit(t)
	frame := filepath.Join(t.TempDir(), "frame.png")
	kit.WriteFrame(t, frame, testsupport.View{Start: true})
	mask := filepath.Join(kit.Dir, "lakitu_start.png")
	overlay := filepath.Join(t.TempDir(), "overlay.png")

	stdout, _, err := runCLI(t, []string{"compare", frame, mask, "--overlay", overlay}, "")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	requireContains(t, stdout, "compared pixels:  8")
	requireContains(t, stdout, "different pixels: 0")
	requireContains(t, stdout, "score:            0.000000")
	if _, err := img.Read(overlay); err != nil {
		t.Fatalf("overlay not written: %v", err)
	}
}

func TestCompareCommandDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	if err := img.Write(a, img.New(4, 4)); err != nil {
		t.Fatal(err)
	}
	if err := img.Write(b, img.New(2, 2)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"compare", a, b}, ""); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestAndCommand(t *testing.T) {
	dir := t.TempDir()
	src := img.New(2, 1)
	src.Set(0, 0, img.Pixel{R: 0xff, G: 0x0f, B: 0xf0})
	src.Set(1, 0, img.Pixel{R: 0xff, G: 0xff, B: 0xff})
	mask := img.New(2, 1)
	mask.Set(0, 0, img.Pixel{R: 0x0f, G: 0xff, B: 0xff})

	in := filepath.Join(dir, "in.png")
	maskPath := filepath.Join(dir, "mask.png")
	out := filepath.Join(dir, "out.png")
	if err := img.Write(in, src); err != nil {
		t.Fatal(err)
	}
	if err := img.Write(maskPath, mask); err != nil {
		t.Fatal(err)
	}

	if _, _, err := runCLI(t, []string{"and", in, maskPath, out}, ""); err != nil {
		t.Fatalf("and: %v", err)
	}
	got, err := img.Read(out)
	if err != nil {
		t.Fatal(err)
	}
	if got.At(0, 0) != (img.Pixel{R: 0x0f, G: 0x0f, B: 0xf0}) {
		t.Fatalf("unexpected masked pixel %+v", got.At(0, 0))
	}
	if !got.At(1, 0).IsBlack() {
		t.Fatalf("expected black pixel, got %+v", got.At(1, 0))
	}
}

func TestTranslateCommand(t *testing.T) {
	dir := t.TempDir()
	src := img.New(3, 3)
	src.Set(0, 0, img.Pixel{R: 200})
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	if err := img.Write(in, src); err != nil {
		t.Fatal(err)
	}

	if _, _, err := runCLI(t, []string{"translate", in, "1", "2", out}, ""); err != nil {
		t.Fatalf("translate: %v", err)
	}
	got, err := img.Read(out)
	if err != nil {
		t.Fatal(err)
	}
	if got.At(1, 2) != (img.Pixel{R: 200}) || !got.At(0, 0).IsBlack() {
		t.Fatal("pixel was not shifted by (1, 2)")
	}

	if _, _, err := runCLI(t, []string{"translate", in, "x", "0", out}, ""); err == nil {
		t.Fatal("expected invalid offset error")
	}
}
