package racedb

import "time"

// Run is one pass of the race tracker over a source.
type Run struct {
	ID            string
	Source        string
	StartedAt     time.Time
	FinishedAt    time.Time // zero while the run is in progress
	Frames        int
	Emitted       int
	Races         int
	FinishedRaces int
}

// Finished reports whether the run has been closed.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Duration is the wall-clock time the run took, or zero while in progress.
func (r Run) Duration() time.Duration {
	if !r.Finished() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunTotals are the counters recorded when a run finishes.
type RunTotals struct {
	Frames        int
	Emitted       int
	Races         int
	FinishedRaces int
}

// Event is one emitted race state.
type Event struct {
	ID       int64
	RunID    string
	Frame    int
	TimeMs   int64
	Start    bool
	Done     bool
	Track    string
	NPlayers int
	// PlayersJSON is the encoded per-player record array.
	PlayersJSON string
}
