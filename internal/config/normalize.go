package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeMedia()
	c.normalizeEncoding()
	c.normalizeDesktop()
	c.normalizeTranslate()
	c.normalizePopup()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = trimOr(c.Tools.FFmpeg, defaultFFmpegBinary)
	c.Tools.FFprobe = trimOr(c.Tools.FFprobe, defaultFFprobeBinary)
	c.Tools.Xclip = trimOr(c.Tools.Xclip, defaultXclipBinary)
	c.Tools.Xdotool = trimOr(c.Tools.Xdotool, defaultXdotoolBinary)
}

func (c *Config) normalizeMedia() {
	c.Media.ImageExtensions = normalizeExtensions(c.Media.ImageExtensions, defaultImageExtensions)
	c.Media.VideoExtensions = normalizeExtensions(c.Media.VideoExtensions, defaultVideoExtensions)
	format := strings.ToLower(strings.TrimSpace(c.Media.ImageTargetFormat))
	format = strings.TrimPrefix(format, ".")
	if format == "" {
		format = defaultImageTargetFormat
	}
	c.Media.ImageTargetFormat = format
	if c.Media.ImageWorkers <= 0 {
		c.Media.ImageWorkers = defaultImageWorkers
	}
	if c.Media.ProbeTimeoutSeconds <= 0 {
		c.Media.ProbeTimeoutSeconds = defaultProbeTimeoutSeconds
	}
}

// normalizeExtensions lower-cases, dot-prefixes, and de-duplicates an extension set.
func normalizeExtensions(values, fallback []string) []string {
	if len(values) == 0 {
		return append([]string(nil), fallback...)
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, exists := seen[ext]; exists {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}

func (c *Config) normalizeEncoding() {
	c.Encoding.AudioCodec = trimOr(c.Encoding.AudioCodec, defaultAudioCodec)
	c.Encoding.HardwarePreset = trimOr(c.Encoding.HardwarePreset, defaultHardwarePreset)
	c.Encoding.CompressedSuffix = trimOr(c.Encoding.CompressedSuffix, defaultCompressedSuffix)
	if c.Encoding.SoftwareCRF == 0 {
		c.Encoding.SoftwareCRF = defaultSoftwareCRF
	}
	if c.Encoding.StopGraceSeconds <= 0 {
		c.Encoding.StopGraceSeconds = defaultStopGraceSeconds
	}
	if c.Encoding.ProgressLogPercent <= 0 {
		c.Encoding.ProgressLogPercent = defaultProgressLogPercent
	}
}

func (c *Config) normalizeDesktop() {
	if c.Desktop.CopySettleMillis < 0 {
		c.Desktop.CopySettleMillis = defaultCopySettleMillis
	}
	if c.Desktop.PasteDelayMillis < 0 {
		c.Desktop.PasteDelayMillis = defaultPasteDelayMillis
	}
	c.Desktop.CopyKeys = trimOr(c.Desktop.CopyKeys, defaultCopyKeys)
	c.Desktop.PasteKeys = trimOr(c.Desktop.PasteKeys, defaultPasteKeys)
}

func (c *Config) normalizeTranslate() {
	c.Translate.APIKey = strings.TrimSpace(c.Translate.APIKey)
	if c.Translate.APIKey == "" {
		if value, ok := os.LookupEnv("DEEPL_AUTH_KEY"); ok {
			c.Translate.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("deepl_auth_key"); ok {
			c.Translate.APIKey = strings.TrimSpace(value)
		}
	}
	c.Translate.BaseURL = trimOr(c.Translate.BaseURL, defaultDeepLBaseURL)
	c.Translate.TargetLang = strings.ToUpper(trimOr(c.Translate.TargetLang, defaultTargetLang))
	if c.Translate.TimeoutSeconds <= 0 {
		c.Translate.TimeoutSeconds = defaultTranslateTimeout
	}
}

func (c *Config) normalizePopup() {
	if c.Popup.PollIntervalMillis <= 0 {
		c.Popup.PollIntervalMillis = defaultPollIntervalMillis
	}
	if c.Popup.LingerMillis < 0 {
		c.Popup.LingerMillis = 0
	}
	if c.Popup.QueueSize <= 0 {
		c.Popup.QueueSize = defaultQueueSize
	}
	if c.Popup.PreviewRunes <= 0 {
		c.Popup.PreviewRunes = defaultPreviewRunes
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimOr(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
