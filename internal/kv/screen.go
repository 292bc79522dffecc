package kv

import "fmt"

// MaxPlayers is the number of player quadrants on screen.
const MaxPlayers = 4

// LapDone marks a player that has crossed the finish line.
const LapDone = 4

// Events is a bit set of race events seen in a frame.
type Events uint8

const (
	RaceStart Events = 1 << iota
	RaceDone
)

// Has reports whether all bits of e2 are set in e.
func (e Events) Has(e2 Events) bool {
	return e&e2 == e2
}

// Player is the state decoded for one quadrant.
type Player struct {
	Character  string
	CharScore  float64
	Place      int // 1..4, 0 when unknown
	PlaceScore float64
	Lap        int // 1..3, 0 when unknown, LapDone when finished
	Item       Item
	ItemScore  float64
	ItemState  ItemState
}

// Screen is the decoded state of a single frame. It is a value: copying a
// Screen copies every player.
type Screen struct {
	Events     Events
	NPlayers   int
	Track      string
	TrackScore float64
	Players    [MaxPlayers]Player
}

// Active returns the players that take part in the race.
func (s *Screen) Active() []Player {
	s.check()
	return s.Players[:s.NPlayers]
}

// done counts finished players among the active ones.
func (s *Screen) done() int {
	n := 0
	for _, p := range s.Active() {
		if p.Lap == LapDone {
			n++
		}
	}
	return n
}

// updateDone recomputes RaceDone from lap numbers: the race is over once at
// most one player has not finished, since the last place is implied.
func (s *Screen) updateDone() {
	s.Events &^= RaceDone
	n := s.done()
	if s.NPlayers > 0 && n > 0 && n >= s.NPlayers-1 {
		s.Events |= RaceDone
	}
}

// check panics when a Screen violates its own invariants. Only a bug in
// this package can trigger it.
func (s *Screen) check() {
	if s.NPlayers < 0 || s.NPlayers > MaxPlayers {
		panic(fmt.Sprintf("kv: invalid player count %d", s.NPlayers))
	}
	for i, p := range s.Players {
		if p.Place < 0 || p.Place > MaxPlayers {
			panic(fmt.Sprintf("kv: player %d has invalid place %d", i+1, p.Place))
		}
		if p.Lap < 0 || p.Lap > LapDone {
			panic(fmt.Sprintf("kv: player %d has invalid lap %d", i+1, p.Lap))
		}
	}
}
