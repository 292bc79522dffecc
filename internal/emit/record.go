package emit

import (
	"kartvid/internal/kv"
)

// PlayerRecord is the per-player part of a Record. Unknown values are
// omitted.
type PlayerRecord struct {
	Character string `json:"character,omitempty"`
	Position  int    `json:"position,omitempty"`
	Lap       int    `json:"lap,omitempty"`
	Item      string `json:"item,omitempty"`
	ItemState string `json:"itemstate,omitempty"`
}

// Record is the serialized form of one emitted state.
type Record struct {
	Source  string         `json:"source"`
	Frame   int            `json:"frame"`
	Time    int64          `json:"time"`
	Start   bool           `json:"start"`
	Done    bool           `json:"done"`
	Track   string         `json:"track,omitempty"`
	Players []PlayerRecord `json:"players"`
}

// Header precedes the records of a video source.
type Header struct {
	NFrames int64  `json:"nframes"`
	CrTime  string `json:"crtime,omitempty"`
}

// NewRecord builds the record for cur. Characters missing from cur are taken
// from baseline, which holds the characters seen at race start.
func NewRecord(source string, frame int, timeMs int64, cur kv.Screen, baseline *kv.Screen) Record {
	rec := Record{
		Source:  source,
		Frame:   frame,
		Time:    timeMs,
		Start:   cur.Events.Has(kv.RaceStart),
		Done:    cur.Events.Has(kv.RaceDone),
		Track:   cur.Track,
		Players: make([]PlayerRecord, 0, cur.NPlayers),
	}
	for i, p := range cur.Active() {
		pr := PlayerRecord{
			Character: character(i, p, baseline),
			Position:  p.Place,
			Lap:       p.Lap,
		}
		if p.Item != kv.ItemNone {
			pr.Item = p.Item.String()
		}
		if p.ItemState != kv.ItemStateNone {
			pr.ItemState = p.ItemState.String()
		}
		rec.Players = append(rec.Players, pr)
	}
	return rec
}

func character(i int, p kv.Player, baseline *kv.Screen) string {
	if p.Character == "" && baseline != nil {
		return baseline.Players[i].Character
	}
	return p.Character
}
