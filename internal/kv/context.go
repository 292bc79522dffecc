package kv

import (
	"fmt"
	"log/slog"

	"kartvid/internal/img"
	"kartvid/internal/logging"
	"kartvid/internal/masks"
)

// Emitter receives every accepted state change. baseline is the state at
// race start, or nil outside a race.
type Emitter interface {
	Emit(source string, frame int, timeMs int64, cur Screen, baseline *Screen) error
}

// FrameWriter stores the raw frame behind an emitted state for debugging.
type FrameWriter interface {
	WriteFrame(source string, frame int, im *img.Image) error
}

// Stats summarizes what a VideoContext did with its frames.
type Stats struct {
	Frames   int // frames handed to Frame
	Ignored  int // frames inside the post-start window
	Skipped  int // frames that could not be identified
	Rejected int // in-race frames dropped as invalid
	Emitted  int
	Races    int // races that started
	Finished int // races that reached RaceDone
	Aborted  int // races interrupted by another start
}

// VideoContext tracks race state across the frames of one video.
type VideoContext struct {
	catalog *masks.Catalog
	params  Params
	emitter Emitter
	frames  FrameWriter
	logger  *slog.Logger

	// last is the previous frame's state, used only for item tracking.
	last     Screen
	prev     Screen // last emitted
	baseline Screen // race start
	history  *Ring[Screen]
	// raceStart is the frame index of the current race start, -1 between races.
	raceStart int
	stats     Stats
}

// Option customizes a VideoContext.
type Option func(*VideoContext)

// WithFrameWriter stores every emitted frame through w.
func WithFrameWriter(w FrameWriter) Option {
	return func(vc *VideoContext) { vc.frames = w }
}

// WithLogger sets the logger used for anomalies.
func WithLogger(logger *slog.Logger) Option {
	return func(vc *VideoContext) { vc.logger = logger }
}

// NewVideoContext returns a context waiting for a race start.
func NewVideoContext(catalog *masks.Catalog, params Params, emitter Emitter, opts ...Option) *VideoContext {
	vc := &VideoContext{
		catalog:   catalog,
		params:    params,
		emitter:   emitter,
		raceStart: -1,
	}
	for _, opt := range opts {
		opt(vc)
	}
	vc.logger = logging.NewComponentLogger(vc.logger, "race")
	vc.history = NewRing[Screen](max(params.HistoryFrames, 1))
	return vc
}

// InRace reports whether a race is in progress.
func (vc *VideoContext) InRace() bool {
	return vc.raceStart >= 0
}

// Stats returns counters for the frames processed so far.
func (vc *VideoContext) Stats() Stats {
	return vc.stats
}

// Frame processes the next frame of source. Frames must arrive in order with
// increasing indexes. Frames that cannot be classified are logged and
// skipped; only emitter failures are returned.
func (vc *VideoContext) Frame(source string, index int, timeMs int64, frame *img.Image) error {
	vc.stats.Frames++
	if vc.InRace() && index-vc.raceStart < vc.params.MinRaceFrames {
		vc.stats.Ignored++
		return nil
	}

	cur, err := Identify(frame, vc.catalog, IdentStart|IdentChars|IdentItems, vc.params)
	if err != nil {
		vc.skip(source, index, err)
		return nil
	}
	vc.advanceItems(&cur, source, index)

	if cur.Events.Has(RaceStart) {
		return vc.start(source, index, timeMs, frame, cur)
	}

	if !vc.InRace() {
		vc.history.Push(cur)
		return nil
	}

	cur.Track, cur.TrackScore = vc.baseline.Track, vc.baseline.TrackScore
	exception := vc.params.ExceptionTrack(vc.baseline.Track)
	if exception && cur.NPlayers > 1 && cur.NPlayers < vc.baseline.NPlayers {
		cur.NPlayers = vc.baseline.NPlayers
		cur.updateDone()
	}

	changedItems := vc.params.ItemsChange && itemsDiffer(cur, vc.prev)
	invalid := Invalid(cur, vc.prev, vc.baseline, exception)
	if changedItems && invalid {
		cur = vc.repair(cur)
		invalid = false
	}
	if invalid {
		vc.stats.Rejected++
		return nil
	}
	if !Differ(cur, vc.prev, exception, vc.params.ItemsChange) {
		return nil
	}

	if exception && cur.Events.Has(RaceDone) {
		fillLastPlace(&cur)
	}

	if err := vc.emit(source, index, timeMs, frame, cur); err != nil {
		return err
	}
	if cur.Events.Has(RaceDone) {
		vc.stats.Finished++
		vc.raceStart = -1
		vc.logger.Info("race finished",
			logging.String(logging.FieldSource, source),
			logging.Int(logging.FieldFrame, index),
			logging.String("track", cur.Track),
		)
	}
	return nil
}

// Finish reports a race still in progress when the source ends and returns
// the final counters.
func (vc *VideoContext) Finish(source string) Stats {
	if vc.InRace() {
		logging.WarnWithContext(vc.logger, "source ended during a race", logging.EventRaceUnfinished,
			logging.String(logging.FieldSource, source),
			logging.Int("race_start_frame", vc.raceStart),
			logging.String(logging.FieldErrorHint, "the recording may be truncated"),
			logging.String(logging.FieldImpact, "no finish state emitted for the last race"),
		)
	}
	return vc.stats
}

func (vc *VideoContext) start(source string, index int, timeMs int64, frame *img.Image, coarse Screen) error {
	cur, err := Identify(frame, vc.catalog, IdentAll, vc.params)
	if err != nil {
		vc.skip(source, index, err)
		return nil
	}
	for i := range cur.Players {
		cur.Players[i].ItemState = coarse.Players[i].ItemState
	}
	vc.last = cur

	if vc.InRace() {
		vc.stats.Aborted++
		logging.WarnWithContext(vc.logger, "race restarted before finishing", logging.EventRaceAborted,
			logging.String(logging.FieldSource, source),
			logging.Int(logging.FieldFrame, index),
			logging.Int("race_start_frame", vc.raceStart),
			logging.String(logging.FieldErrorHint, "expected when a race is quit or reset"),
			logging.String(logging.FieldImpact, "previous race has no finish state"),
		)
	}

	vc.history.Push(cur)
	smoothCharacters(&cur, vc.history.Items())
	vc.history.Clear()

	vc.baseline = cur
	vc.raceStart = index
	vc.stats.Races++
	vc.logger.Info("race started",
		logging.String(logging.FieldSource, source),
		logging.Int(logging.FieldFrame, index),
		logging.Int("players", cur.NPlayers),
		logging.String("track", cur.Track),
	)
	return vc.emit(source, index, timeMs, frame, cur)
}

func (vc *VideoContext) skip(source string, index int, err error) {
	vc.stats.Skipped++
	logging.WarnWithContext(vc.logger, "frame not classified", logging.EventFrameSkipped,
		logging.String(logging.FieldSource, source),
		logging.Int(logging.FieldFrame, index),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check that masks and video share the same resolution"),
		logging.String(logging.FieldImpact, "frame skipped"),
	)
}

// advanceItems runs the item state machine for every player against the
// previous frame, whether or not this frame is emitted later.
func (vc *VideoContext) advanceItems(cur *Screen, source string, index int) {
	for i := range cur.Players {
		prevState := vc.last.Players[i].ItemState
		next, unexpected := NextItemState(prevState, cur.Players[i].Item)
		if unexpected {
			logging.WarnWithContext(vc.logger, "item box emptied before an item was shown", logging.EventItemStateUnexpected,
				logging.String(logging.FieldSource, source),
				logging.Int(logging.FieldFrame, index),
				logging.Int(logging.FieldPlayer, i+1),
				logging.String("item_state", prevState.String()),
				logging.String(logging.FieldImpact, "item state reset to none"),
			)
		}
		cur.Players[i].ItemState = next
	}
	vc.last = *cur
}

// repair keeps ranks and laps from the last emitted state but takes the new
// item information, so an item edge survives an unreadable frame.
func (vc *VideoContext) repair(cur Screen) Screen {
	fixed := cur
	fixed.NPlayers = vc.prev.NPlayers
	for i := range fixed.Players {
		p := &fixed.Players[i]
		q := vc.prev.Players[i]
		p.Place, p.PlaceScore, p.Lap = q.Place, q.PlaceScore, q.Lap
	}
	fixed.updateDone()
	return fixed
}

// fillLastPlace assigns the one rank no player was seen in to the one player
// with no rank.
func fillLastPlace(s *Screen) {
	var taken [MaxPlayers + 1]bool
	missing := -1
	for i, p := range s.Active() {
		if p.Place == 0 {
			if missing >= 0 {
				return
			}
			missing = i
			continue
		}
		taken[p.Place] = true
	}
	if missing < 0 {
		return
	}
	for place := 1; place <= s.NPlayers; place++ {
		if !taken[place] {
			s.Players[missing].Place = place
			return
		}
	}
}

func (vc *VideoContext) emit(source string, index int, timeMs int64, frame *img.Image, cur Screen) error {
	if vc.frames != nil {
		if err := vc.frames.WriteFrame(source, index, frame); err != nil {
			vc.logger.Warn("debug frame not written",
				logging.String(logging.FieldSource, source),
				logging.Int(logging.FieldFrame, index),
				logging.Error(err),
			)
		}
	}
	baseline := vc.baseline
	if err := vc.emitter.Emit(source, index, timeMs, cur, &baseline); err != nil {
		return fmt.Errorf("emit frame %d: %w", index, err)
	}
	vc.prev = cur
	vc.stats.Emitted++
	return nil
}
