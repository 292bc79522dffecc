package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"kartvid/internal/img"
)

// StubBinary writes an executable shell script named name whose body is
// script and returns its path.
func StubBinary(t testing.TB, name, script string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "stubs")
	mkdir(t, dir)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

// RGB24 packs frames as consecutive rgb24 images, the layout ffmpeg
// writes for -f rawvideo -pix_fmt rgb24.
func RGB24(frames ...*img.Image) []byte {
	var out []byte
	for _, f := range frames {
		for _, p := range f.Pix {
			out = append(out, p.R, p.G, p.B)
		}
	}
	return out
}
