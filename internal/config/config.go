package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and database locations.
type Paths struct {
	MaskDir      string `toml:"mask_dir"`
	DebugDir     string `toml:"debug_dir"`
	LogDir       string `toml:"log_dir"`
	DatabasePath string `toml:"database_path"`
}

// Detection contains classification thresholds and race-tracking tunables.
type Detection struct {
	ThresholdChar   float64 `toml:"threshold_char"`
	ThresholdTrack  float64 `toml:"threshold_track"`
	ThresholdLakitu float64 `toml:"threshold_lakitu"`
	ThresholdPos    float64 `toml:"threshold_pos"`
	ThresholdItem   float64 `toml:"threshold_item"`
	// Framerate is the nominal frame rate used to turn MinRaceSeconds into a
	// frame count.
	Framerate      float64 `toml:"framerate"`
	MinRaceSeconds float64 `toml:"min_race_seconds"`
	// HistoryFrames is the size of the character smoothing ring buffer.
	HistoryFrames  int      `toml:"history_frames"`
	MaxMasks       int      `toml:"max_masks"`
	MaskExtensions []string `toml:"mask_extensions"`
	// ExceptionTrackPrefix names tracks whose finish screen reorders players
	// before the last place is shown. Empty disables the exception.
	ExceptionTrackPrefix string `toml:"exception_track_prefix"`
	// ItemsChange controls whether item state changes count as a change
	// worth emitting.
	ItemsChange bool `toml:"items_change"`
}

// Video contains external tool settings for video decoding.
type Video struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	Workers       int    `toml:"workers"`
}

// Output controls how emitted states are rendered and persisted.
type Output struct {
	Format string `toml:"format"`
	Store  bool   `toml:"store"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for kartvid.
//
// Configuration sections by subsystem:
//   - Paths: mask catalog, debug frames, logs, run database
//   - Detection: match thresholds and race state tunables
//   - Video: ffmpeg/ffprobe binaries and batch parallelism
//   - Output: emitter format and persistence
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Detection Detection `toml:"detection"`
	Video     Video     `toml:"video"`
	Output    Output    `toml:"output"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("kartvid.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log, debug, and database directories. The
// mask directory is input and is never created.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir, filepath.Dir(c.Paths.DatabasePath)}
	if c.Paths.DebugDir != "" {
		dirs = append(dirs, c.Paths.DebugDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used to decode video frames.
func (c *Config) FFmpegBinary() string {
	if c.Video.FFmpegBinary == "" {
		return defaultFFmpegBinary
	}
	return c.Video.FFmpegBinary
}

// FFprobeBinary returns the ffprobe executable used to inspect videos.
func (c *Config) FFprobeBinary() string {
	if c.Video.FFprobeBinary == "" {
		return defaultFFprobeBinary
	}
	return c.Video.FFprobeBinary
}

// MinRaceFrames converts the minimum race duration to a frame count, rounding
// up so no frame inside the duration is classified.
func (c *Config) MinRaceFrames() int {
	return int(math.Ceil(c.Detection.MinRaceSeconds * c.Detection.Framerate))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
