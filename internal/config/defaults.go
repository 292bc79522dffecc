package config

const (
	defaultConfigPath      = "~/.config/kartvid/config.toml"
	defaultMaskDir         = "~/.local/share/kartvid/masks"
	defaultLogDir          = "~/.local/share/kartvid/logs"
	defaultDatabasePath    = "~/.local/share/kartvid/kartvid.db"
	defaultThresholdChar   = 0.15
	defaultThresholdTrack  = 0.11
	defaultThresholdLakitu = 0.08
	defaultThresholdPos    = 0.11
	defaultThresholdItem   = 0.11
	defaultFramerate       = 29.97
	defaultMinRaceSeconds  = 2
	defaultHistoryFrames   = 10
	defaultMaxMasks        = 256
	defaultExceptionPrefix = "y"
	defaultFFmpegBinary    = "ffmpeg"
	defaultFFprobeBinary   = "ffprobe"
	defaultVideoWorkers    = 2
	defaultOutputFormat    = "text"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	maskDirEnv             = "KARTVID_MASK_DIR"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MaskDir:      defaultMaskDir,
			LogDir:       defaultLogDir,
			DatabasePath: defaultDatabasePath,
		},
		Detection: Detection{
			ThresholdChar:        defaultThresholdChar,
			ThresholdTrack:       defaultThresholdTrack,
			ThresholdLakitu:      defaultThresholdLakitu,
			ThresholdPos:         defaultThresholdPos,
			ThresholdItem:        defaultThresholdItem,
			Framerate:            defaultFramerate,
			MinRaceSeconds:       defaultMinRaceSeconds,
			HistoryFrames:        defaultHistoryFrames,
			MaxMasks:             defaultMaxMasks,
			MaskExtensions:       []string{".png"},
			ExceptionTrackPrefix: defaultExceptionPrefix,
			ItemsChange:          true,
		},
		Video: Video{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			Workers:       defaultVideoWorkers,
		},
		Output: Output{
			Format: defaultOutputFormat,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
