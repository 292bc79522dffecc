package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kartvid/internal/config"
	"kartvid/internal/emit"
	"kartvid/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	kit        *testsupport.Kit
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	kit := testsupport.NewKit(t)
	opts = append([]testsupport.ConfigOption{testsupport.WithMaskDir(kit.Dir)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Detection.Framerate = 10
	cfg.Detection.MinRaceSeconds = 0.2
	cfg.Logging.Level = "warn"
	return &cliTestEnv{
		cfg:        cfg,
		kit:        kit,
		configPath: testsupport.WriteConfig(t, cfg),
		baseDir:    testsupport.BaseDir(cfg),
	}
}

// rewrite persists changes made to env.cfg after setup.
func (e *cliTestEnv) rewrite(t *testing.T) {
	t.Helper()
	e.configPath = testsupport.WriteConfig(t, e.cfg)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func racing(p1, p2 int, final bool) testsupport.View {
	return testsupport.View{Players: []testsupport.PlayerView{
		{Place: p1, Final: final, Character: "mario"},
		{Place: p2, Final: final, Character: "luigi"},
	}}
}

func raceViews() []testsupport.View {
	start := racing(1, 2, false)
	start.Start = true
	start.Track = "mario"
	return []testsupport.View{
		racing(1, 2, false),
		start,
		racing(2, 1, false),
		racing(2, 1, false),
		racing(2, 1, true),
	}
}

// writeRaceFrames renders the race into a fresh frame directory.
func (e *cliTestEnv) writeRaceFrames(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(e.baseDir, name)
	for i, v := range raceViews() {
		e.kit.WriteFrame(t, filepath.Join(dir, fmt.Sprintf("%04d.png", i+1)), v)
	}
	return dir
}

func decodeRecords(t *testing.T, data string) []emit.Record {
	t.Helper()
	var out []emit.Record
	for _, line := range strings.Split(strings.TrimSpace(data), "\n") {
		if line == "" {
			continue
		}
		var rec emit.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		out = append(out, rec)
	}
	return out
}

func TestRootCommandShowsHelp(t *testing.T) {
	env := setupCLITestEnv(t)
	stdout, _, err := runCLI(t, nil, env.configPath)
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	requireContains(t, stdout, "Mario Kart 64 race video analyzer")
	requireContains(t, stdout, "video")
}

func TestUnknownConfigFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing", "config.toml")
	if err := os.MkdirAll(filepath.Dir(missing), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(missing, []byte("[bogus]\nkey = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"runs"}, missing); err == nil {
		t.Fatal("expected unknown config keys to fail")
	}
}
