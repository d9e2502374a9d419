package config

const (
	defaultLogDir              = "~/.local/share/ctxmenu/logs"
	defaultStateDir            = "~/.local/state/ctxmenu"
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultXclipBinary         = "xclip"
	defaultXdotoolBinary       = "xdotool"
	defaultImageTargetFormat   = "png"
	defaultImageWorkers        = 4
	defaultProbeTimeoutSeconds = 15
	defaultAudioCodec          = "aac"
	defaultSoftwareCRF         = 28
	defaultHardwarePreset      = "fast"
	defaultCompressedSuffix    = "_compressed"
	defaultStopGraceSeconds    = 5
	defaultProgressLogPercent  = 10
	defaultCopySettleMillis    = 500
	defaultPasteDelayMillis    = 10
	defaultCopyKeys            = "ctrl+c"
	defaultPasteKeys           = "ctrl+v"
	defaultDeepLBaseURL        = "https://api-free.deepl.com/v2/translate"
	defaultTargetLang          = "EN-GB"
	defaultTranslateTimeout    = 30
	defaultPollIntervalMillis  = 100
	defaultLingerMillis        = 1500
	defaultQueueSize           = 64
	defaultPreviewRunes        = 40
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

var (
	defaultImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp", ".svg", ".ico"}
	defaultVideoExtensions = []string{".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm", ".m4v", ".3gp"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
			Xclip:   defaultXclipBinary,
			Xdotool: defaultXdotoolBinary,
		},
		Media: Media{
			ImageExtensions:     append([]string(nil), defaultImageExtensions...),
			VideoExtensions:     append([]string(nil), defaultVideoExtensions...),
			ImageTargetFormat:   defaultImageTargetFormat,
			ImageWorkers:        defaultImageWorkers,
			ProbeTimeoutSeconds: defaultProbeTimeoutSeconds,
		},
		Encoding: Encoding{
			AllowHardware:      true,
			AudioCodec:         defaultAudioCodec,
			SoftwareCRF:        defaultSoftwareCRF,
			HardwarePreset:     defaultHardwarePreset,
			CompressedSuffix:   defaultCompressedSuffix,
			StopGraceSeconds:   defaultStopGraceSeconds,
			ProgressLogPercent: defaultProgressLogPercent,
		},
		Desktop: Desktop{
			CopySettleMillis: defaultCopySettleMillis,
			PasteDelayMillis: defaultPasteDelayMillis,
			CopyKeys:         defaultCopyKeys,
			PasteKeys:        defaultPasteKeys,
		},
		Translate: Translate{
			BaseURL:        defaultDeepLBaseURL,
			TargetLang:     defaultTargetLang,
			TimeoutSeconds: defaultTranslateTimeout,
		},
		Popup: Popup{
			PollIntervalMillis: defaultPollIntervalMillis,
			LingerMillis:       defaultLingerMillis,
			QueueSize:          defaultQueueSize,
			PreviewRunes:       defaultPreviewRunes,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			BatchCompleted: true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
