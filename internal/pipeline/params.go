package pipeline

import (
	"kartvid/internal/config"
	"kartvid/internal/kv"
	"kartvid/internal/masks"
)

// ParamsFromConfig converts the detection settings into tracker parameters.
func ParamsFromConfig(cfg *config.Config) kv.Params {
	d := cfg.Detection
	return kv.Params{
		ThresholdChar:        d.ThresholdChar,
		ThresholdTrack:       d.ThresholdTrack,
		ThresholdLakitu:      d.ThresholdLakitu,
		ThresholdPos:         d.ThresholdPos,
		ThresholdItem:        d.ThresholdItem,
		MinRaceFrames:        cfg.MinRaceFrames(),
		HistoryFrames:        d.HistoryFrames,
		ExceptionTrackPrefix: d.ExceptionTrackPrefix,
		ItemsChange:          d.ItemsChange,
	}
}

// CatalogOptions returns the mask loading options for cfg.
func CatalogOptions(cfg *config.Config) masks.Options {
	return masks.Options{
		Extensions: cfg.Detection.MaskExtensions,
		MaxMasks:   cfg.Detection.MaxMasks,
	}
}
