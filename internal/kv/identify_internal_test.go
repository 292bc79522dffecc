package kv

import (
	"testing"

	"kartvid/internal/masks"
)

func mustMask(t *testing.T, name string) masks.Mask {
	t.Helper()
	m, err := masks.ParseName(name)
	if err != nil {
		t.Fatalf("ParseName(%s): %v", name, err)
	}
	return m
}

func TestMatchTrackKeepsBestScore(t *testing.T) {
	var s Screen
	s.match(mustMask(t, "track_mario.png"), 0.05)
	s.match(mustMask(t, "track_yoshi.png"), 0.08)
	if s.Track != "mario" || s.TrackScore != 0.05 {
		t.Fatalf("worse track replaced better: %s %v", s.Track, s.TrackScore)
	}
	s.match(mustMask(t, "track_yoshi.png"), 0.01)
	if s.Track != "yoshi" {
		t.Fatalf("better track rejected: %s", s.Track)
	}
}

func TestMatchPositionLaps(t *testing.T) {
	var s Screen
	s.match(mustMask(t, "pos2_square3_final.png"), 0.02)
	if s.NPlayers != 3 {
		t.Fatalf("NPlayers = %d, want 3", s.NPlayers)
	}
	p := s.Players[2]
	if p.Place != 2 || p.Lap != LapDone {
		t.Fatalf("final pos not applied: %+v", p)
	}

	s.match(mustMask(t, "pos3_square3.png"), 0.05)
	if s.Players[2].Place != 2 || s.Players[2].Lap != LapDone {
		t.Fatalf("worse pos should not change player: %+v", s.Players[2])
	}

	s.match(mustMask(t, "pos3_square3.png"), 0.01)
	if s.Players[2].Place != 3 || s.Players[2].Lap != 0 {
		t.Fatalf("better non-final pos should reset lap: %+v", s.Players[2])
	}

	s.match(mustMask(t, "pos1_square1.png"), 0.5)
	if s.NPlayers != 3 {
		t.Fatalf("lower square must not shrink player count: %d", s.NPlayers)
	}
}

func TestMatchItemArbitration(t *testing.T) {
	var s Screen
	s.match(mustMask(t, "item_box_1.png"), 0.02)
	if s.Players[0].Item != ItemUnknown {
		t.Fatalf("box should set unknown: %s", s.Players[0].Item)
	}

	s.match(mustMask(t, "item_star_1.png"), 0.09)
	if s.Players[0].Item != ItemStar {
		t.Fatalf("real item should replace unknown regardless of score: %s", s.Players[0].Item)
	}

	s.match(mustMask(t, "item_box_1.png"), 0.001)
	if s.Players[0].Item != ItemStar {
		t.Fatalf("unknown must not replace a specific item: %s", s.Players[0].Item)
	}

	s.match(mustMask(t, "item_banana_1.png"), 0.10)
	if s.Players[0].Item != ItemStar {
		t.Fatalf("worse real item replaced better: %s", s.Players[0].Item)
	}

	s.match(mustMask(t, "item_banana_1.png"), 0.01)
	if s.Players[0].Item != ItemBanana || s.Players[0].ItemScore != 0.01 {
		t.Fatalf("better real item rejected: %+v", s.Players[0])
	}
	if s.NPlayers != 1 {
		t.Fatalf("NPlayers = %d", s.NPlayers)
	}
}

func TestUpdateDone(t *testing.T) {
	tests := []struct {
		name     string
		nplayers int
		laps     []int
		want     bool
	}{
		{"no players", 0, nil, false},
		{"single finished", 1, []int{LapDone}, true},
		{"single racing", 1, []int{0}, false},
		{"three of four", 4, []int{LapDone, LapDone, 0, LapDone}, true},
		{"two of four", 4, []int{LapDone, 0, 0, LapDone}, false},
		{"one of two", 2, []int{0, LapDone}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Screen{NPlayers: tt.nplayers}
			for i, lap := range tt.laps {
				s.Players[i].Lap = lap
			}
			s.updateDone()
			if got := s.Events.Has(RaceDone); got != tt.want {
				t.Fatalf("RaceDone = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScreenCheckPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for invalid place")
		}
	}()
	s := Screen{NPlayers: 1}
	s.Players[0].Place = 7
	s.Active()
}
