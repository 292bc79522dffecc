package kv

import "testing"

func screen(n int, places, laps []int) Screen {
	s := Screen{NPlayers: n}
	for i := range places {
		s.Players[i].Place = places[i]
	}
	for i := range laps {
		s.Players[i].Lap = laps[i]
	}
	return s
}

func TestInvalid(t *testing.T) {
	base := screen(3, []int{1, 2, 3}, nil)
	tests := []struct {
		name      string
		cur       Screen
		prev      Screen
		exception bool
		want      bool
	}{
		{"valid", screen(3, []int{2, 1, 3}, nil), base, false, false},
		{"player count", screen(2, []int{1, 2}, nil), base, false, true},
		{"missing place", screen(3, []int{1, 0, 3}, nil), base, false, true},
		{"duplicate place", screen(3, []int{1, 1, 3}, nil), base, false, true},
		{"lap reverts", screen(3, []int{1, 2, 3}, nil), screen(3, []int{1, 2, 3}, []int{LapDone}), false, true},
		{"done behind racing", screen(3, []int{3, 1, 2}, []int{LapDone}), base, false, true},
		{"done ahead", screen(3, []int{1, 2, 3}, []int{LapDone}), base, false, false},
		{"exception none finished", screen(3, []int{0, 0, 0}, nil), base, true, true},
		{"exception unfinished exempt", screen(3, []int{1, 0, 0}, []int{LapDone}), base, true, false},
		{"exception finished duplicate", screen(3, []int{1, 1, 0}, []int{LapDone, LapDone}), base, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Invalid(tt.cur, tt.prev, base, tt.exception); got != tt.want {
				t.Fatalf("Invalid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiffer(t *testing.T) {
	a := screen(2, []int{1, 2}, nil)

	b := a
	if Differ(a, b, false, true) {
		t.Fatal("identical screens differ")
	}

	b.Players[0].Place, b.Players[1].Place = 2, 1
	if !Differ(a, b, false, true) {
		t.Fatal("place change not detected")
	}
	if Differ(a, b, true, true) {
		t.Fatal("place change should be ignored on exception tracks")
	}

	c := a
	c.Players[1].Lap = LapDone
	if !Differ(a, c, true, false) {
		t.Fatal("lap change not detected")
	}

	d := a
	d.Players[0].ItemState = ItemStateSlotMachine
	if !Differ(a, d, false, true) {
		t.Fatal("item state change not detected")
	}
	if Differ(a, d, false, false) {
		t.Fatal("item change counted although disabled")
	}

	e := a
	e.Track = "yoshi"
	e.Players[0].Character = "toad"
	if Differ(a, e, false, true) {
		t.Fatal("track and character changes must be ignored")
	}
}
