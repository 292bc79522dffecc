package emit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kartvid/internal/emit"
	"kartvid/internal/img"
	"kartvid/internal/kv"
	"kartvid/internal/testsupport"
)

func raceScreen() (kv.Screen, kv.Screen) {
	baseline := kv.Screen{
		Events:   kv.RaceStart,
		NPlayers: 2,
		Track:    "yoshi",
	}
	baseline.Players[0] = kv.Player{Character: "mario", Place: 1, Lap: 1}
	baseline.Players[1] = kv.Player{Character: "donkey_kong", Place: 2, Lap: 1}

	cur := kv.Screen{NPlayers: 2, Track: "yoshi"}
	cur.Players[0] = kv.Player{Place: 2, Lap: 2, Item: kv.ItemBanana, ItemState: kv.ItemStateHaveItem}
	cur.Players[1] = kv.Player{Place: 1, Lap: kv.LapDone, ItemState: kv.ItemStateSlotMachine}
	return cur, baseline
}

func TestNewRecordUsesBaselineCharacters(t *testing.T) {
	cur, baseline := raceScreen()
	rec := emit.NewRecord("race.mp4", 42, 1400, cur, &baseline)

	if rec.Source != "race.mp4" || rec.Frame != 42 || rec.Time != 1400 {
		t.Fatalf("unexpected record header: %+v", rec)
	}
	if rec.Start || rec.Done || rec.Track != "yoshi" {
		t.Fatalf("unexpected flags: %+v", rec)
	}
	if len(rec.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(rec.Players))
	}
	p1, p2 := rec.Players[0], rec.Players[1]
	if p1.Character != "mario" || p1.Position != 2 || p1.Lap != 2 || p1.Item != "banana" || p1.ItemState != "haveitem" {
		t.Fatalf("unexpected player 1: %+v", p1)
	}
	if p2.Character != "donkey_kong" || p2.Lap != kv.LapDone || p2.Item != "" || p2.ItemState != "slotmachine" {
		t.Fatalf("unexpected player 2: %+v", p2)
	}
}

func TestNewRecordWithoutBaseline(t *testing.T) {
	cur, _ := raceScreen()
	rec := emit.NewRecord("race.mp4", 1, 0, cur, nil)
	if rec.Players[0].Character != "" {
		t.Fatalf("expected no character, got %q", rec.Players[0].Character)
	}
}

func TestJSONEmitterWritesLines(t *testing.T) {
	var buf bytes.Buffer
	e := emit.NewJSONEmitter(&buf)
	if err := e.WriteHeader(emit.Header{NFrames: 1800, CrTime: "2026-01-02T15:04:05Z"}); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	cur, baseline := raceScreen()
	if err := e.Emit("race.mp4", 42, 1400, baseline, &baseline); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := e.Emit("race.mp4", 50, 1668, cur, &baseline); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}

	var header map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &header); err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if header["nframes"] != float64(1800) || header["crtime"] != "2026-01-02T15:04:05Z" {
		t.Fatalf("unexpected header: %v", header)
	}

	var start emit.Record
	if err := json.Unmarshal([]byte(lines[1]), &start); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if !start.Start || start.Frame != 42 {
		t.Fatalf("unexpected start record: %+v", start)
	}

	if !strings.Contains(lines[2], `"itemstate":"slotmachine"`) {
		t.Fatalf("missing item state in %s", lines[2])
	}
	if strings.Contains(lines[2], `"itemstate":"none"`) {
		t.Fatalf("none item state should be omitted: %s", lines[2])
	}
}

func TestTextEmitterFormatsTable(t *testing.T) {
	var buf bytes.Buffer
	e := emit.NewTextEmitter(&buf, false)
	cur, baseline := raceScreen()
	if err := e.Emit("race.mp4", 42, 1400, baseline, &baseline); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	cur.Events = kv.RaceDone
	if err := e.Emit("race.mp4", 50, 1668, cur, &baseline); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"race.mp4: frame 42",
		"Race starting!",
		"Race finished!",
		"2 players: Yoshi Valley",
		"Donkey Kong",
		"Lap 2/3",
		"Done",
		"2nd",
		"banana",
		"slotmachine",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatal("uncolored output should not contain escape codes")
	}

	var header []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Player") && strings.Contains(line, "│") {
			for _, cell := range strings.Split(strings.Trim(line, "│"), "│") {
				header = append(header, strings.TrimSpace(cell))
			}
			break
		}
	}
	want := []string{"Player", "Character", "Posn", "Lap", "Item", "Item state"}
	if strings.Join(header, ",") != strings.Join(want, ",") {
		t.Fatalf("header = %q, want %q", header, want)
	}
}

func TestFormatScreenNoPlayers(t *testing.T) {
	out := emit.FormatScreen(kv.Screen{}, nil)
	if out != "0 players: Unknown Track\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestFormatScreenUnknowns(t *testing.T) {
	s := kv.Screen{NPlayers: 1}
	out := emit.FormatScreen(s, nil)
	if strings.Count(out, "?") < 3 {
		t.Fatalf("expected ? for character, place and lap:\n%s", out)
	}
}

func TestTrackName(t *testing.T) {
	tests := map[string]string{
		"":        "Unknown Track",
		"dk":      "DK's Jungle Parkway",
		"wario":   "Wario Raceway",
		"mystery": "mystery",
	}
	for id, want := range tests {
		if got := emit.TrackName(id); got != want {
			t.Errorf("TrackName(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestFormatVideoTime(t *testing.T) {
	if got := emit.FormatVideoTime(0); got != "0 s" {
		t.Fatalf("FormatVideoTime(0) = %q", got)
	}
	if got := emit.FormatVideoTime(92_000); !strings.Contains(got, "1") || !strings.Contains(got, "32") {
		t.Fatalf("FormatVideoTime(92s) = %q", got)
	}
}

type failing struct{ calls int }

func (f *failing) Emit(string, int, int64, kv.Screen, *kv.Screen) error {
	f.calls++
	return errors.New("boom")
}

func TestMultiRunsEveryEmitter(t *testing.T) {
	var buf bytes.Buffer
	bad := &failing{}
	m := emit.Multi(bad, nil, emit.NewJSONEmitter(&buf))
	cur, baseline := raceScreen()
	err := m.Emit("race.mp4", 1, 0, cur, &baseline)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if bad.calls != 1 || buf.Len() == 0 {
		t.Fatal("every emitter should be called")
	}

	single := emit.NewJSONEmitter(&buf)
	if emit.Multi(nil, single) != single {
		t.Fatal("a single emitter should be returned as is")
	}
}

func TestStoreEmitterPersistsEvents(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	run, err := store.StartRun(ctx, "race.mp4")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	e := emit.NewStoreEmitter(ctx, store, run.ID)
	cur, baseline := raceScreen()
	if err := e.Emit("race.mp4", 42, 1400, baseline, &baseline); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := e.Emit("race.mp4", 50, 1668, cur, &baseline); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	events, err := store.ListEvents(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if !events[0].Start || events[0].Track != "yoshi" || events[0].NPlayers != 2 {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	players, err := emit.DecodePlayers(events[1])
	if err != nil {
		t.Fatalf("DecodePlayers: %v", err)
	}
	if len(players) != 2 || players[0].Character != "mario" || players[1].Lap != kv.LapDone {
		t.Fatalf("unexpected players: %+v", players)
	}
}

func TestStoreEmitterUnknownRun(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	e := emit.NewStoreEmitter(context.Background(), store, "missing")
	cur, baseline := raceScreen()
	if err := e.Emit("race.mp4", 1, 0, cur, &baseline); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestDebugFrameWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "debug")
	w, err := emit.NewDebugFrameWriter(dir)
	if err != nil {
		t.Fatalf("NewDebugFrameWriter: %v", err)
	}

	if _, err := emit.NewDebugFrameWriter(dir); !errors.Is(err, emit.ErrDebugDirLocked) {
		t.Fatalf("expected ErrDebugDirLocked, got %v", err)
	}

	im := img.New(4, 3)
	im.Set(1, 1, img.Pixel{R: 200, G: 10, B: 10})
	im.SetFullBounds()
	if err := w.WriteFrame("/videos/Cup 1.mp4", 7, im); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	path := filepath.Join(dir, "cup_1_mp4_000007.png")
	if w.Path("/videos/Cup 1.mp4", 7) != path {
		t.Fatalf("unexpected path %s", w.Path("/videos/Cup 1.mp4", 7))
	}
	back, err := img.Read(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if back.At(1, 1) != (img.Pixel{R: 200, G: 10, B: 10}) {
		t.Fatalf("unexpected pixel %+v", back.At(1, 1))
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	again, err := emit.NewDebugFrameWriter(dir)
	if err != nil {
		t.Fatalf("relock after close: %v", err)
	}
	_ = again.Close()
	if _, err := os.Stat(filepath.Join(dir, ".kartvid.lock")); err != nil {
		t.Fatalf("lock file missing: %v", err)
	}
}
