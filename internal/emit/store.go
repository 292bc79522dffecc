package emit

import (
	"context"
	"encoding/json"
	"fmt"

	"kartvid/internal/kv"
	"kartvid/internal/racedb"
)

// StoreEmitter persists each state as an event of one run.
type StoreEmitter struct {
	ctx   context.Context
	store *racedb.Store
	runID string
}

// NewStoreEmitter records events for runID. ctx bounds every insert.
func NewStoreEmitter(ctx context.Context, store *racedb.Store, runID string) *StoreEmitter {
	return &StoreEmitter{ctx: ctx, store: store, runID: runID}
}

// Emit implements kv.Emitter.
func (e *StoreEmitter) Emit(source string, frame int, timeMs int64, cur kv.Screen, baseline *kv.Screen) error {
	rec := NewRecord(source, frame, timeMs, cur, baseline)
	players, err := json.Marshal(rec.Players)
	if err != nil {
		return fmt.Errorf("encode players: %w", err)
	}
	_, err = e.store.AddEvent(e.ctx, racedb.Event{
		RunID:       e.runID,
		Frame:       rec.Frame,
		TimeMs:      rec.Time,
		Start:       rec.Start,
		Done:        rec.Done,
		Track:       rec.Track,
		NPlayers:    cur.NPlayers,
		PlayersJSON: string(players),
	})
	return err
}

// DecodePlayers parses the players stored with an event.
func DecodePlayers(ev racedb.Event) ([]PlayerRecord, error) {
	var players []PlayerRecord
	if err := json.Unmarshal([]byte(ev.PlayersJSON), &players); err != nil {
		return nil, fmt.Errorf("decode players of event %d: %w", ev.ID, err)
	}
	return players, nil
}
