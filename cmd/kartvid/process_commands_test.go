package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kartvid/internal/emit"
	"kartvid/internal/testsupport"
)

func TestIdentCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	frame := filepath.Join(env.baseDir, "frame.png")
	env.kit.WriteFrame(t, frame, testsupport.View{
		Track: "yoshi",
		Players: []testsupport.PlayerView{
			{Place: 2, Character: "toad", Item: "banana"},
			{Place: 1, Character: "yoshi"},
		},
	})

	stdout, _, err := runCLI(t, []string{"ident", "--all", "--json", frame}, env.configPath)
	if err != nil {
		t.Fatalf("ident: %v", err)
	}
	var rec emit.Record
	if err := json.Unmarshal([]byte(stdout), &rec); err != nil {
		t.Fatalf("decode ident output %q: %v", stdout, err)
	}
	if rec.Track != "yoshi" || len(rec.Players) != 2 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Players[0].Character != "toad" || rec.Players[0].Position != 2 || rec.Players[0].Item != "banana" {
		t.Fatalf("unexpected player 1: %+v", rec.Players[0])
	}
	if rec.Players[1].Character != "yoshi" || rec.Players[1].Position != 1 {
		t.Fatalf("unexpected player 2: %+v", rec.Players[1])
	}

	stdout, _, err = runCLI(t, []string{"ident", frame}, env.configPath)
	if err != nil {
		t.Fatalf("ident text: %v", err)
	}
	requireContains(t, stdout, "2 players")
	if strings.Contains(stdout, "Yoshi Valley") {
		t.Fatalf("track should not be identified without --all: %q", stdout)
	}
}

func TestFramesCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := env.writeRaceFrames(t, "race1")

	stdout, stderr, err := runCLI(t, []string{"frames", "--json", dir}, env.configPath)
	if err != nil {
		t.Fatalf("frames: %v", err)
	}
	records := decodeRecords(t, stdout)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d: %s", len(records), stdout)
	}
	if !records[0].Start || records[0].Frame != 2 || records[0].Track != "mario" || records[0].Source != "race1" {
		t.Fatalf("unexpected start record: %+v", records[0])
	}
	if records[1].Frame != 4 || records[1].Time != 300 {
		t.Fatalf("unexpected update record: %+v", records[1])
	}
	if !records[2].Done || records[2].Players[0].Position != 2 {
		t.Fatalf("unexpected finish record: %+v", records[2])
	}
	requireContains(t, stderr, "race1: 5 frames, 3 emitted, 1 races (1 finished, 0 aborted)")
}

func TestFramesCommandText(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := env.writeRaceFrames(t, "race1")

	stdout, _, err := runCLI(t, []string{"frames", dir}, env.configPath)
	if err != nil {
		t.Fatalf("frames: %v", err)
	}
	requireContains(t, stdout, "race1: frame 2")
	requireContains(t, stdout, "Race starting!")
	requireContains(t, stdout, "Race finished!")
}

func TestFramesCommandEmptyDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := filepath.Join(env.baseDir, "empty")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	_, _, err := runCLI(t, []string{"frames", dir}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "no frames found") {
		t.Fatalf("expected no frames error, got %v", err)
	}
}

func TestFramesCommandMissingMasks(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := env.writeRaceFrames(t, "race1")
	env.cfg.Paths.MaskDir = filepath.Join(env.baseDir, "nomasks")
	if err := os.MkdirAll(env.cfg.Paths.MaskDir, 0o755); err != nil {
		t.Fatal(err)
	}
	env.rewrite(t)

	_, _, err := runCLI(t, []string{"frames", dir}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "load masks") {
		t.Fatalf("expected mask load error, got %v", err)
	}
}

func TestFramesCommandWritesDebugFrames(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithDebugDir())
	dir := env.writeRaceFrames(t, "race1")

	if _, _, err := runCLI(t, []string{"frames", "--json", dir}, env.configPath); err != nil {
		t.Fatalf("frames: %v", err)
	}
	for _, frame := range []int{2, 4, 5} {
		path := filepath.Join(env.cfg.Paths.DebugDir, fmt.Sprintf("race1_%06d.png", frame))
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected debug frame %s: %v", path, err)
		}
	}
}

func stubVideoTools(t *testing.T, env *cliTestEnv) {
	t.Helper()
	raw := filepath.Join(env.baseDir, "frames.rgb")
	var data []byte
	for _, v := range raceViews() {
		data = append(data, testsupport.RGB24(env.kit.Frame(v))...)
	}
	if err := os.WriteFile(raw, data, 0o644); err != nil {
		t.Fatalf("write raw frames: %v", err)
	}
	probe := fmt.Sprintf(`cat <<'JSON'
{"streams":[{"index":0,"codec_type":"video","width":%d,"height":%d,"r_frame_rate":"10/1","nb_frames":"5"}],
 "format":{"filename":"race.mp4","tags":{"creation_time":"2026-01-02T15:04:05Z"}}}
JSON`, testsupport.KitWidth, testsupport.KitHeight)
	env.cfg.Video.FFprobeBinary = testsupport.StubBinary(t, "ffprobe", probe)
	env.cfg.Video.FFmpegBinary = testsupport.StubBinary(t, "ffmpeg", fmt.Sprintf("cat %q", raw))
	env.rewrite(t)
}

func TestVideoCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	stubVideoTools(t, env)

	args := []string{"video", "--json", "--workers", "2", "a.mp4", "b.mp4"}
	stdout, stderr, err := runCLI(t, args, env.configPath)
	if err != nil {
		t.Fatalf("video: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 8 {
		t.Fatalf("expected 2 headers and 6 records, got %d lines: %s", len(lines), stdout)
	}
	var header emit.Header
	if err := json.Unmarshal([]byte(lines[0]), &header); err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if header.NFrames != 5 || header.CrTime != "2026-01-02T15:04:05Z" {
		t.Fatalf("unexpected header: %+v", header)
	}
	first := decodeRecords(t, strings.Join(lines[1:4], "\n"))
	second := decodeRecords(t, strings.Join(lines[5:], "\n"))
	for _, rec := range first {
		if rec.Source != "a.mp4" {
			t.Fatalf("expected a.mp4 records first, got %+v", rec)
		}
	}
	for _, rec := range second {
		if rec.Source != "b.mp4" {
			t.Fatalf("expected b.mp4 records second, got %+v", rec)
		}
	}
	requireContains(t, stderr, "a.mp4: 5 frames")
	requireContains(t, stderr, "b.mp4: 5 frames")
}

func TestVideoCommandMissingTools(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Video.FFmpegBinary = filepath.Join(env.baseDir, "no-such-ffmpeg")
	env.rewrite(t)

	_, _, err := runCLI(t, []string{"video", "race.mp4"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "missing required tools") {
		t.Fatalf("expected missing tools error, got %v", err)
	}
}
