package testsupport

import (
	"fmt"
	"path/filepath"
	"testing"

	"kartvid/internal/img"
)

// Kit frame geometry. Every player quadrant is a 10 pixel wide column.
const (
	KitWidth  = 40
	KitHeight = 24
)

// Names available in the kit's mask set.
var (
	KitTracks     = []string{"mario", "yoshi"}
	KitCharacters = []string{"mario", "luigi", "yoshi", "toad"}
	KitItems      = []string{"box", "blank", "mushroom", "banana"}
)

var (
	lakituColor = img.Pixel{R: 250, G: 250, B: 30}
	trackColors = map[string]img.Pixel{
		"mario": {R: 200, G: 50, B: 50},
		"yoshi": {R: 50, G: 200, B: 50},
	}
	placeColors = map[int]img.Pixel{
		1: {R: 255, G: 0, B: 0},
		2: {R: 0, G: 0, B: 255},
		3: {R: 0, G: 255, B: 0},
		4: {R: 255, G: 255, B: 0},
	}
	flagRunning = img.Pixel{R: 60, G: 60, B: 60}
	flagDone    = img.Pixel{R: 255, G: 255, B: 255}
	charColors  = map[string]img.Pixel{
		"mario": {R: 255, G: 128, B: 0},
		"luigi": {R: 0, G: 128, B: 255},
		"yoshi": {R: 128, G: 255, B: 128},
		"toad":  {R: 200, G: 200, B: 255},
	}
	itemColors = map[string]img.Pixel{
		"box":      {R: 255, G: 0, B: 255},
		"blank":    {R: 128, G: 128, B: 128},
		"mushroom": {R: 255, G: 64, B: 64},
		"banana":   {R: 255, G: 255, B: 128},
	}
)

// PlayerView describes what one player quadrant shows. Zero values leave the
// corresponding region black.
type PlayerView struct {
	Place     int
	Final     bool
	Character string
	Item      string
}

// View describes a whole synthetic frame.
type View struct {
	Start   bool
	Track   string
	Players []PlayerView
}

// Kit is a synthetic mask catalog on disk plus a renderer for frames that
// match it exactly.
type Kit struct {
	Dir string
}

// NewKit writes the kit masks into a fresh temp directory.
func NewKit(t testing.TB) *Kit {
	t.Helper()
	k := &Kit{Dir: filepath.Join(t.TempDir(), "masks")}
	k.WriteMasks(t, k.Dir)
	return k
}

// WriteMasks writes every kit mask into dir.
func (k *Kit) WriteMasks(t testing.TB, dir string) {
	t.Helper()
	write := func(name string, im *img.Image) {
		im.ComputeBounds()
		if err := img.Write(filepath.Join(dir, name), im); err != nil {
			t.Fatalf("write mask %s: %v", name, err)
		}
	}
	mkdir(t, dir)

	lakitu := img.New(KitWidth, KitHeight)
	fill(lakitu, 0, 0, 4, 2, lakituColor)
	write("lakitu_start.png", lakitu)

	for _, track := range KitTracks {
		im := img.New(KitWidth, KitHeight)
		fill(im, 4, 0, 4, 2, trackColors[track])
		write("track_"+track+".png", im)
	}

	for square := 1; square <= 4; square++ {
		x0 := (square - 1) * 10
		for place := 1; place <= 4; place++ {
			for _, final := range []bool{false, true} {
				im := img.New(KitWidth, KitHeight)
				drawPlace(im, x0, place, final)
				name := fmt.Sprintf("pos%d_square%d.png", place, square)
				if final {
					name = fmt.Sprintf("pos%d_square%d_final.png", place, square)
				}
				write(name, im)
			}
		}
		for _, char := range KitCharacters {
			im := img.New(KitWidth, KitHeight)
			fill(im, x0, 12, 4, 3, charColors[char])
			write(fmt.Sprintf("char_%s_%d.png", char, square), im)
		}
		for _, item := range KitItems {
			im := img.New(KitWidth, KitHeight)
			fill(im, x0, 17, 4, 3, itemColors[item])
			write(fmt.Sprintf("item_%s_%d.png", item, square), im)
		}
	}
}

// Frame renders v as a frame whose regions match the kit masks exactly.
func (k *Kit) Frame(v View) *img.Image {
	im := img.New(KitWidth, KitHeight)
	if v.Start {
		fill(im, 0, 0, 4, 2, lakituColor)
	}
	if c, ok := trackColors[v.Track]; ok {
		fill(im, 4, 0, 4, 2, c)
	}
	for i, p := range v.Players {
		x0 := i * 10
		if p.Place != 0 {
			drawPlace(im, x0, p.Place, p.Final)
		}
		if c, ok := charColors[p.Character]; ok {
			fill(im, x0, 12, 4, 3, c)
		}
		if c, ok := itemColors[p.Item]; ok {
			fill(im, x0, 17, 4, 3, c)
		}
	}
	im.SetFullBounds()
	return im
}

// WriteFrame renders v and writes it to path as PNG or PPM by extension.
func (k *Kit) WriteFrame(t testing.TB, path string, v View) {
	t.Helper()
	mkdir(t, filepath.Dir(path))
	if err := img.Write(path, k.Frame(v)); err != nil {
		t.Fatalf("write frame %s: %v", path, err)
	}
}

func drawPlace(im *img.Image, x0, place int, final bool) {
	fill(im, x0, 4, 4, 3, placeColors[place])
	flag := flagRunning
	if final {
		flag = flagDone
	}
	fill(im, x0, 8, 4, 2, flag)
}

func fill(im *img.Image, x, y, w, h int, p img.Pixel) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			im.Set(xx, yy, p)
		}
	}
}
