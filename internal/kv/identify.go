package kv

import (
	"fmt"

	"kartvid/internal/img"
	"kartvid/internal/masks"
)

// Ident selects which mask categories Identify evaluates. Position masks are
// always evaluated.
type Ident uint8

const (
	IdentStart Ident = 1 << iota
	IdentTrack
	IdentChars
	IdentItems

	IdentAll = IdentStart | IdentTrack | IdentChars | IdentItems
)

func (w Ident) wants(c masks.Category) bool {
	switch c {
	case masks.CategoryPos:
		return true
	case masks.CategoryLakitu:
		return w&IdentStart != 0
	case masks.CategoryTrack:
		return w&IdentTrack != 0
	case masks.CategoryChar:
		return w&IdentChars != 0
	case masks.CategoryItem:
		return w&IdentItems != 0
	default:
		return false
	}
}

// Identify scores frame against every selected mask in catalog order and
// folds the matches into a fresh Screen. It has no side effects.
func Identify(frame *img.Image, catalog *masks.Catalog, which Ident, params Params) (Screen, error) {
	var s Screen
	for _, m := range catalog.Masks() {
		if !which.wants(m.Category) {
			continue
		}
		res, err := img.Compare(frame, m.Image)
		if err != nil {
			return Screen{}, fmt.Errorf("compare %s: %w", m.Name, err)
		}
		if res.Score > params.threshold(m.Category) {
			continue
		}
		s.match(m, res.Score)
	}
	s.updateDone()
	return s, nil
}

// better is the shared arbitration rule: a candidate replaces the current
// value when nothing is set yet or when it scores strictly lower.
func better[T comparable](val *T, score *float64, cand T, candScore float64) bool {
	var unset T
	if *val != unset && candScore >= *score {
		return false
	}
	*val, *score = cand, candScore
	return true
}

// match applies one mask match to the screen.
func (s *Screen) match(m masks.Mask, score float64) {
	if m.Category.HasSquare() {
		s.NPlayers = max(s.NPlayers, m.Square)
	}

	switch m.Category {
	case masks.CategoryTrack:
		better(&s.Track, &s.TrackScore, m.Subject, score)

	case masks.CategoryLakitu:
		s.Events |= RaceStart

	case masks.CategoryPos:
		p := &s.Players[m.Square-1]
		if !better(&p.Place, &p.PlaceScore, m.Place, score) {
			return
		}
		switch {
		case m.Final:
			p.Lap = LapDone
		case p.Lap == LapDone:
			p.Lap = 0
		}

	case masks.CategoryChar:
		p := &s.Players[m.Square-1]
		better(&p.Character, &p.CharScore, m.Subject, score)

	case masks.CategoryItem:
		p := &s.Players[m.Square-1]
		item := ParseItem(m.Subject)
		if item == ItemUnknown && p.Item != ItemNone {
			return
		}
		if p.Item == ItemNone || p.Item == ItemUnknown || score < p.ItemScore {
			p.Item, p.ItemScore = item, score
		}
	}
}
