package testsupport

import (
	"path/filepath"
	"testing"

	"ctxmenu/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Desktop delays are zeroed so tests do not sleep.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Desktop.CopySettleMillis = 0
	cfgVal.Desktop.PasteDelayMillis = 0
	cfgVal.Encoding.StopGraceSeconds = 1
	cfgVal.Media.ProbeTimeoutSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFFmpeg points the config at stub ffmpeg and ffprobe executables.
func WithFFmpeg(ffmpeg, ffprobe string) ConfigOption {
	return func(b *configBuilder) {
		if ffmpeg != "" {
			b.cfg.Tools.FFmpeg = ffmpeg
		}
		if ffprobe != "" {
			b.cfg.Tools.FFprobe = ffprobe
		}
	}
}

// WithSoftwareOnly disables hardware encoder probing.
func WithSoftwareOnly() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoding.AllowHardware = false
	}
}

// WithDeepLKey sets the translation API key and endpoint.
func WithDeepLKey(key, baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Translate.APIKey = key
		if baseURL != "" {
			b.cfg.Translate.BaseURL = baseURL
		}
	}
}
