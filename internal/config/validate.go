package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDetection(); err != nil {
		return err
	}
	if c.Video.Workers <= 0 {
		return errors.New("video.workers must be positive")
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("output.format must be text or json, got %q", c.Output.Format)
	}
	return c.validateLogging()
}

func (c *Config) validateDetection() error {
	d := c.Detection
	for key, value := range map[string]float64{
		"detection.threshold_char":   d.ThresholdChar,
		"detection.threshold_track":  d.ThresholdTrack,
		"detection.threshold_lakitu": d.ThresholdLakitu,
		"detection.threshold_pos":    d.ThresholdPos,
		"detection.threshold_item":   d.ThresholdItem,
	} {
		if value <= 0 || value > 1 {
			return fmt.Errorf("%s must be in (0, 1], got %v", key, value)
		}
	}
	if d.Framerate <= 0 {
		return errors.New("detection.framerate must be positive")
	}
	if d.MinRaceSeconds < 0 {
		return errors.New("detection.min_race_seconds must not be negative")
	}
	if d.HistoryFrames <= 0 {
		return errors.New("detection.history_frames must be positive")
	}
	if d.MaxMasks <= 0 {
		return errors.New("detection.max_masks must be positive")
	}
	if len(d.MaskExtensions) == 0 {
		return errors.New("detection.mask_extensions must include at least one extension")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
