package media

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"ctxmenu/internal/config"
	"ctxmenu/internal/logging"
	"ctxmenu/internal/media/ffprobe"
)

// Encoder names an ffmpeg H.264 video encoder.
type Encoder string

const (
	EncoderNVENC    Encoder = "h264_nvenc"
	EncoderAMF      Encoder = "h264_amf"
	EncoderQSV      Encoder = "h264_qsv"
	EncoderSoftware Encoder = "libx264"
)

// hardwarePreference is checked in order; the first available encoder wins.
var hardwarePreference = []Encoder{EncoderNVENC, EncoderAMF, EncoderQSV}

// IsHardware reports whether the encoder runs on a GPU or media engine.
func (e Encoder) IsHardware() bool {
	return e != EncoderSoftware && e != ""
}

func (e Encoder) String() string {
	return string(e)
}

// Prober runs ffprobe and ffmpeg capability probes with a per-call timeout.
type Prober struct {
	ffmpeg        string
	ffprobe       string
	timeout       time.Duration
	allowHardware bool
	logger        *slog.Logger
}

// NewProber builds a prober from the tool and media configuration.
func NewProber(cfg *config.Config, logger *slog.Logger) *Prober {
	return &Prober{
		ffmpeg:        cfg.Tools.FFmpeg,
		ffprobe:       cfg.Tools.FFprobe,
		timeout:       cfg.ProbeTimeout(),
		allowHardware: cfg.Encoding.AllowHardware,
		logger:        logging.NewComponentLogger(logger, "media"),
	}
}

// Duration returns the media duration in seconds. ok is false when ffprobe
// fails or reports no positive duration; callers substitute a unit weight.
func (p *Prober) Duration(ctx context.Context, path string) (float64, bool) {
	probeCtx, cancel := p.withTimeout(ctx)
	defer cancel()

	result, err := ffprobe.Inspect(probeCtx, p.ffprobe, path)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "duration probe failed", "duration_probe_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that ffprobe is installed and the file is readable"),
			logging.String(logging.FieldImpact, "file weighted as one second in overall progress"),
		)
		return 0, false
	}
	duration, ok := result.Duration()
	if !ok {
		p.logger.Debug("no usable duration", logging.String("path", path))
		return 0, false
	}
	return duration, true
}

// PreferredEncoder returns the best available H.264 encoder.
func (p *Prober) PreferredEncoder(ctx context.Context) Encoder {
	if !p.allowHardware {
		return EncoderSoftware
	}
	probeCtx, cancel := p.withTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, p.ffmpeg, "-hide_banner", "-encoders") //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "encoder probe failed", "encoder_probe_failed",
			logging.Error(fmt.Errorf("%s -encoders: %w", p.ffmpeg, err)),
			logging.String(logging.FieldErrorHint, "check that ffmpeg is installed"),
			logging.String(logging.FieldImpact, "using software encoder libx264"),
		)
		return EncoderSoftware
	}
	encoder := SelectEncoder(ParseEncoders(string(output)))
	p.logger.Debug("encoder selected", logging.String("encoder", encoder.String()))
	return encoder
}

func (p *Prober) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

// ParseEncoders extracts encoder names from "ffmpeg -encoders" output. The
// name is the second whitespace-separated field of each listing line.
func ParseEncoders(output string) map[string]struct{} {
	names := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		names[fields[1]] = struct{}{}
	}
	return names
}

// SelectEncoder applies the fixed hardware preference order to the available set.
func SelectEncoder(available map[string]struct{}) Encoder {
	for _, candidate := range hardwarePreference {
		if _, ok := available[string(candidate)]; ok {
			return candidate
		}
	}
	return EncoderSoftware
}
