package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
}

// Tools names the external binaries ctxmenu drives.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
	Xclip   string `toml:"xclip"`
	Xdotool string `toml:"xdotool"`
}

// Media contains file classification and image conversion settings.
type Media struct {
	ImageExtensions     []string `toml:"image_extensions"`
	VideoExtensions     []string `toml:"video_extensions"`
	ImageTargetFormat   string   `toml:"image_target_format"`
	ImageWorkers        int      `toml:"image_workers"`
	ProbeTimeoutSeconds int      `toml:"probe_timeout_seconds"`
}

// Encoding contains ffmpeg transcode settings shared by every video job.
type Encoding struct {
	AllowHardware      bool   `toml:"allow_hardware"`
	AudioCodec         string `toml:"audio_codec"`
	SoftwareCRF        int    `toml:"software_crf"`
	HardwarePreset     string `toml:"hardware_preset"`
	CompressedSuffix   string `toml:"compressed_suffix"`
	StopGraceSeconds   int    `toml:"stop_grace_seconds"`
	ProgressLogPercent int    `toml:"progress_log_percent"`
}

// Desktop contains timing for clipboard capture and paste-back.
type Desktop struct {
	CopySettleMillis int    `toml:"copy_settle_ms"`
	PasteDelayMillis int    `toml:"paste_delay_ms"`
	CopyKeys         string `toml:"copy_keys"`
	PasteKeys        string `toml:"paste_keys"`
}

// Translate contains configuration for the DeepL translation backend.
type Translate struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TargetLang     string `toml:"target_lang"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Popup contains presentation timing.
type Popup struct {
	PollIntervalMillis int `toml:"poll_interval_ms"`
	LingerMillis       int `toml:"linger_ms"`
	QueueSize          int `toml:"queue_size"`
	PreviewRunes       int `toml:"preview_runes"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	BatchCompleted bool   `toml:"batch_completed"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ctxmenu.
//
// Configuration sections by subsystem:
//   - Paths: log and state (lock file) directories
//   - Tools: ffmpeg, ffprobe, xclip, and xdotool binaries
//   - Media: extension sets for classification, image conversion
//   - Encoding: encoder preference and quality settings
//   - Desktop: clipboard settle time and paste timing
//   - Translate: DeepL credentials and target language
//   - Popup: progress polling interval and queue size
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Tools         Tools         `toml:"tools"`
	Media         Media         `toml:"media"`
	Encoding      Encoding      `toml:"encoding"`
	Desktop       Desktop       `toml:"desktop"`
	Translate     Translate     `toml:"translate"`
	Popup         Popup         `toml:"popup"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/ctxmenu/config.toml")
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
		if err := decoder.Decode(&cfg); err != nil {
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

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ctxmenu.toml")
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

// EnsureDirectories creates the log and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the single-instance lock file used by the popup.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "popup.lock")
}

// ProbeTimeout returns the per-invocation limit for ffprobe and encoder probes.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Media.ProbeTimeoutSeconds) * time.Second
}

// CopySettle returns how long detection waits after the copy keystroke.
func (c *Config) CopySettle() time.Duration {
	return time.Duration(c.Desktop.CopySettleMillis) * time.Millisecond
}

// PasteDelay returns the pause between window activation and the paste keystroke.
func (c *Config) PasteDelay() time.Duration {
	return time.Duration(c.Desktop.PasteDelayMillis) * time.Millisecond
}

// PollInterval returns the popup's progress polling tick.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Popup.PollIntervalMillis) * time.Millisecond
}

// StopGrace returns how long a cancelled ffmpeg gets before it is killed.
func (c *Config) StopGrace() time.Duration {
	return time.Duration(c.Encoding.StopGraceSeconds) * time.Second
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
