package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"kartvid/internal/img"
	"kartvid/internal/testsupport"
)

func solidFrame(w, h int, p img.Pixel) *img.Image {
	im := img.New(w, h)
	for i := range im.Pix {
		im.Pix[i] = p
	}
	return im
}

func TestReadRawFrames(t *testing.T) {
	red := solidFrame(2, 2, img.Pixel{R: 255})
	blue := solidFrame(2, 2, img.Pixel{B: 255})
	data := testsupport.RGB24(red, blue)
	// A trailing partial frame is dropped.
	data = append(data, 1, 2, 3)

	var got []Frame
	n, err := readRawFrames(bytes.NewReader(data), 2, 2, 30, func(f Frame) error {
		got = append(got, f)
		return nil
	})
	if err != nil {
		t.Fatalf("readRawFrames: %v", err)
	}
	if n != 2 || len(got) != 2 {
		t.Fatalf("expected 2 frames, got %d", n)
	}
	if got[0].Index != 1 || got[0].TimeMs != 0 || got[1].Index != 2 || got[1].TimeMs != 33 {
		t.Fatalf("unexpected numbering: %+v %+v", got[0], got[1])
	}
	if got[0].Image.At(1, 1) != (img.Pixel{R: 255}) || got[1].Image.At(0, 0) != (img.Pixel{B: 255}) {
		t.Fatal("unexpected pixel data")
	}
	if got[0].Image.MaxX != 2 || got[0].Image.MaxY != 2 {
		t.Fatalf("expected full bounds, got %+v", got[0].Image)
	}
}

func TestReadRawFramesPropagatesCallbackError(t *testing.T) {
	data := testsupport.RGB24(solidFrame(1, 1, img.Pixel{}), solidFrame(1, 1, img.Pixel{}))
	boom := errors.New("boom")
	n, err := readRawFrames(bytes.NewReader(data), 1, 1, 30, func(Frame) error { return boom })
	if !errors.Is(err, boom) || n != 1 {
		t.Fatalf("expected boom after 1 frame, got %d, %v", n, err)
	}
}

func stubProbe(t *testing.T, w, h int, rate string) string {
	t.Helper()
	body := fmt.Sprintf(`cat <<'JSON'
{"streams":[{"index":0,"codec_type":"video","width":%d,"height":%d,"r_frame_rate":%q,"nb_frames":"3"}],
 "format":{"filename":"race.mp4","tags":{"creation_time":"2026-01-02T15:04:05Z"}}}
JSON`, w, h, rate)
	return testsupport.StubBinary(t, "ffprobe", body)
}

func stubDecoder(t *testing.T, frames ...*img.Image) (string, string) {
	t.Helper()
	raw := filepath.Join(t.TempDir(), "frames.rgb")
	if err := os.WriteFile(raw, testsupport.RGB24(frames...), 0o644); err != nil {
		t.Fatalf("write raw frames: %v", err)
	}
	ffmpeg := testsupport.StubBinary(t, "ffmpeg", fmt.Sprintf("cat %q", raw))
	return ffmpeg, raw
}

func TestDecoderOpenAndFrames(t *testing.T) {
	frames := []*img.Image{
		solidFrame(3, 2, img.Pixel{R: 10}),
		solidFrame(3, 2, img.Pixel{G: 20}),
		solidFrame(3, 2, img.Pixel{B: 30}),
	}
	ffmpeg, _ := stubDecoder(t, frames...)
	d := Decoder{FFmpeg: ffmpeg, FFprobe: stubProbe(t, 3, 2, "25/1")}

	ctx := context.Background()
	v, err := d.Open(ctx, "race.mp4")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if v.Width != 3 || v.Height != 2 || v.Rate != 25 || v.FrameCount() != 3 {
		t.Fatalf("unexpected video: %+v", v)
	}

	var times []int64
	n, err := v.Frames(ctx, func(f Frame) error {
		times = append(times, f.TimeMs)
		return nil
	})
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if n != 3 || len(times) != 3 || times[2] != 80 {
		t.Fatalf("unexpected frames: n=%d times=%v", n, times)
	}
}

func TestFramesStopsEarly(t *testing.T) {
	frames := make([]*img.Image, 10)
	for i := range frames {
		frames[i] = solidFrame(2, 2, img.Pixel{R: uint8(i)})
	}
	ffmpeg, _ := stubDecoder(t, frames...)
	d := Decoder{FFmpeg: ffmpeg, FFprobe: stubProbe(t, 2, 2, "30/1")}
	v, err := d.Open(context.Background(), "race.mp4")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	n, err := v.Frames(context.Background(), func(f Frame) error {
		if f.Index == 4 {
			return ErrStop
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ErrStop should not surface: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 frames, got %d", n)
	}
}

func TestFramesReportsDecoderFailure(t *testing.T) {
	ffmpeg := testsupport.StubBinary(t, "ffmpeg", "echo 'corrupt input' >&2; exit 1")
	d := Decoder{FFmpeg: ffmpeg, FFprobe: stubProbe(t, 2, 2, "30/1")}
	v, err := d.Open(context.Background(), "race.mp4")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, err = v.Frames(context.Background(), func(Frame) error { return nil })
	if err == nil || !bytes.Contains([]byte(err.Error()), []byte("corrupt input")) {
		t.Fatalf("expected ffmpeg stderr in error, got %v", err)
	}
}

func TestOpenRejectsUnusableProbe(t *testing.T) {
	ctx := context.Background()
	noRate := Decoder{FFprobe: stubProbe(t, 2, 2, "0/0")}
	if _, err := noRate.Open(ctx, "race.mp4"); err == nil {
		t.Fatal("expected error for unknown frame rate")
	}
	noSize := Decoder{FFprobe: stubProbe(t, 0, 0, "30/1")}
	if _, err := noSize.Open(ctx, "race.mp4"); err == nil {
		t.Fatal("expected error for missing dimensions")
	}
	failing := Decoder{FFprobe: testsupport.StubBinary(t, "ffprobe", "echo 'no such file' >&2; exit 1")}
	if _, err := failing.Open(ctx, "race.mp4"); err == nil {
		t.Fatal("expected ffprobe failure")
	}
}

func TestLimitedWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &limitedWriter{w: &buf, n: 4}
	if n, err := w.Write([]byte("abcdef")); n != 6 || err != nil {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if n, err := w.Write([]byte("gh")); n != 2 || err != nil {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if buf.String() != "abcd" {
		t.Fatalf("kept %q", buf.String())
	}
}
