package masks

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"kartvid/internal/img"
)

// MaxSquares is the number of player quadrants on screen.
const MaxSquares = 4

// Category identifies which screen element a mask detects.
type Category int

const (
	CategoryPos Category = iota + 1
	CategoryChar
	CategoryItem
	CategoryLakitu
	CategoryTrack
)

func (c Category) String() string {
	switch c {
	case CategoryPos:
		return "pos"
	case CategoryChar:
		return "char"
	case CategoryItem:
		return "item"
	case CategoryLakitu:
		return "lakitu"
	case CategoryTrack:
		return "track"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// HasSquare reports whether masks of this category belong to one player.
func (c Category) HasSquare() bool {
	return c == CategoryPos || c == CategoryChar || c == CategoryItem
}

// Mask is a decoded reference template with its parsed name fields.
type Mask struct {
	// Name is the file name, including extension.
	Name     string
	Category Category
	// Subject is the track id, character name, or item name.
	Subject string
	// Square is the 1-based player quadrant for pos, char, and item masks.
	Square int
	// Place is the rank shown by a pos mask.
	Place int
	// Final is set for pos masks that show a finished player.
	Final bool
	Image *img.Image
}

var prefixes = []struct {
	prefix   string
	category Category
}{
	{"char_", CategoryChar},
	{"pos", CategoryPos},
	{"item_", CategoryItem},
	{"lakitu_start", CategoryLakitu},
	{"track_", CategoryTrack},
}

// categoryOf returns the category implied by a file name prefix.
func categoryOf(name string) (Category, bool) {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p.prefix) {
			return p.category, true
		}
	}
	return 0, false
}

// ParseName fills a Mask from a file name. Image is left nil. The error
// describes why a name with a known prefix could not be parsed.
func ParseName(name string) (Mask, error) {
	category, ok := categoryOf(name)
	if !ok {
		return Mask{}, fmt.Errorf("%s: unrecognized mask prefix", name)
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	m := Mask{Name: name, Category: category}

	switch category {
	case CategoryTrack:
		id := strings.TrimPrefix(stem, "track_")
		if i := strings.IndexAny(id, "_."); i >= 0 {
			id = id[:i]
		}
		if id == "" {
			return Mask{}, fmt.Errorf("%s: missing track id", name)
		}
		m.Subject = id

	case CategoryPos:
		rest, ok := strings.CutPrefix(stem, "pos")
		if !ok {
			return Mask{}, fmt.Errorf("%s: missing pos prefix", name)
		}
		place, rest, ok := leadingInt(rest)
		if !ok {
			return Mask{}, fmt.Errorf("%s: missing place number", name)
		}
		rest, ok = strings.CutPrefix(rest, "_square")
		if !ok {
			return Mask{}, fmt.Errorf("%s: missing _square", name)
		}
		square, _, ok := leadingInt(rest)
		if !ok {
			return Mask{}, fmt.Errorf("%s: missing square number", name)
		}
		if place < 1 || place > MaxSquares {
			return Mask{}, fmt.Errorf("%s: place %d out of range", name, place)
		}
		m.Place = place
		m.Square = square
		m.Final = strings.HasSuffix(stem, "_final")

	case CategoryChar, CategoryItem:
		rest := strings.TrimPrefix(stem, "char_")
		if category == CategoryItem {
			rest = strings.TrimPrefix(stem, "item_")
		}
		subject, tail, ok := strings.Cut(rest, "_")
		if !ok || subject == "" {
			return Mask{}, fmt.Errorf("%s: expected <name>_<square>", name)
		}
		square, _, ok := leadingInt(tail)
		if !ok {
			return Mask{}, fmt.Errorf("%s: missing square number", name)
		}
		m.Subject = subject
		m.Square = square

	}

	if category.HasSquare() && (m.Square < 1 || m.Square > MaxSquares) {
		return Mask{}, fmt.Errorf("%s: square %d out of range", name, m.Square)
	}
	return m, nil
}

func leadingInt(s string) (int, string, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, s, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, s, false
	}
	return n, s[end:], true
}
