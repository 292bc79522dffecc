package img

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"kartvid/internal/fileutil"
)

// MaxDimension bounds the width and height accepted from a PPM header.
const MaxDimension = 1 << 14

// Read decodes an image file. Binary PPM (P6) is recognized by its magic;
// anything else goes through image.Decode (PNG, WebP, BMP). The bounding
// box of the result is computed before returning.
func Read(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	defer f.Close()

	im, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}
	return im, nil
}

// Decode reads one image from r.
func Decode(r *bufio.Reader) (*Image, error) {
	magic, err := r.Peek(3)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if magic[0] == 'P' && magic[1] == '6' && isSpace(magic[2]) {
		im, err := DecodePPM(r)
		if err != nil {
			return nil, err
		}
		im.ComputeBounds()
		return im, nil
	}

	decoded, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if format == "" {
		return nil, errors.New("decode: unknown format")
	}
	return FromImage(decoded), nil
}

// DecodePPM parses a binary P6 PPM with a maximum value of at most 255.
// Samples are rescaled to 0..255 when the maximum is lower. The bounding box
// is left empty; callers decide whether to compute it.
func DecodePPM(r *bufio.Reader) (*Image, error) {
	var fields [4]string
	for i := range fields {
		tok, err := ppmToken(r)
		if err != nil {
			return nil, fmt.Errorf("ppm header: %w", err)
		}
		fields[i] = tok
	}
	if fields[0] != "P6" {
		return nil, fmt.Errorf("ppm header: unsupported magic %q", fields[0])
	}
	width, err := strconv.Atoi(fields[1])
	if err != nil || width <= 0 {
		return nil, fmt.Errorf("ppm header: invalid width %q", fields[1])
	}
	height, err := strconv.Atoi(fields[2])
	if err != nil || height <= 0 {
		return nil, fmt.Errorf("ppm header: invalid height %q", fields[2])
	}
	if width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("ppm header: %dx%d exceeds %d pixels per side", width, height, MaxDimension)
	}
	maxval, err := strconv.Atoi(fields[3])
	if err != nil || maxval <= 0 {
		return nil, fmt.Errorf("ppm header: invalid maxval %q", fields[3])
	}
	if maxval > 255 {
		return nil, fmt.Errorf("ppm header: unsupported color depth %d", maxval)
	}

	im := New(width, height)
	raw := make([]byte, width*height*3)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("ppm pixels: %w", err)
	}
	scale := func(v byte) uint8 { return v }
	if maxval < 255 {
		scale = func(v byte) uint8 {
			if int(v) >= maxval {
				return 255
			}
			return uint8((int(v)*255 + maxval/2) / maxval)
		}
	}
	for i := range im.Pix {
		im.Pix[i] = Pixel{R: scale(raw[i*3]), G: scale(raw[i*3+1]), B: scale(raw[i*3+2])}
	}
	return im, nil
}

// ppmToken returns the next header token and consumes exactly one trailing
// whitespace byte, which matters after the maxval field.
func ppmToken(r *bufio.Reader) (string, error) {
	var buf bytes.Buffer
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		switch {
		case b == '#' && buf.Len() == 0:
			if _, err := r.ReadString('\n'); err != nil {
				return "", err
			}
		case isSpace(b):
			if buf.Len() > 0 {
				return buf.String(), nil
			}
		default:
			buf.WriteByte(b)
		}
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// EncodePPM writes im as a binary P6 PPM.
func EncodePPM(w io.Writer, im *Image) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n%d\n", im.Width, im.Height, 255); err != nil {
		return err
	}
	for _, px := range im.Pix {
		if _, err := bw.Write([]byte{px.R, px.G, px.B}); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// EncodePNG writes im as an opaque PNG.
func EncodePNG(w io.Writer, im *Image) error {
	return png.Encode(w, im.RGBA())
}

// Write encodes im to path, choosing PPM for a ".ppm" extension and PNG
// otherwise. The file is replaced atomically.
func Write(path string, im *Image) error {
	encode := EncodePNG
	if strings.EqualFold(filepath.Ext(path), ".ppm") {
		encode = EncodePPM
	}
	if err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return encode(w, im)
	}); err != nil {
		return fmt.Errorf("write image %s: %w", path, err)
	}
	return nil
}
