package encoding

import (
	"path/filepath"
	"strconv"
	"strings"

	"ctxmenu/internal/config"
	"ctxmenu/internal/media"
)

// Operation is the conversion a job applies to each input.
type Operation int

const (
	OpToMP4 Operation = iota + 1
	OpCompress
	OpConvertImage
)

func (o Operation) String() string {
	switch o {
	case OpToMP4:
		return "to_mp4"
	case OpCompress:
		return "compress"
	case OpConvertImage:
		return "convert_image"
	default:
		return "unknown"
	}
}

// Label is the short human form used in summaries and notifications.
func (o Operation) Label() string {
	switch o {
	case OpToMP4:
		return "MP4 conversion"
	case OpCompress:
		return "Compression"
	case OpConvertImage:
		return "Image conversion"
	default:
		return "Conversion"
	}
}

// OutputPath returns where op writes the converted form of input.
func OutputPath(cfg *config.Config, op Operation, input string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	switch op {
	case OpToMP4:
		return base + ".mp4"
	case OpCompress:
		return base + cfg.Encoding.CompressedSuffix + ".mp4"
	case OpConvertImage:
		target := "." + cfg.Media.ImageTargetFormat
		if strings.EqualFold(ext, target) {
			return base + "_converted" + target
		}
		return base + target
	default:
		return input
	}
}

func videoArgs(cfg *config.Config, op Operation, encoder media.Encoder, input, output string) []string {
	args := []string{"-hide_banner", "-nostdin", "-y", "-i", input, "-c:v", encoder.String()}
	if op == OpCompress {
		if encoder.IsHardware() {
			args = append(args, "-preset", cfg.Encoding.HardwarePreset)
		} else {
			args = append(args, "-crf", strconv.Itoa(cfg.Encoding.SoftwareCRF))
		}
	}
	args = append(args, "-c:a", cfg.Encoding.AudioCodec, output)
	return args
}

func imageArgs(input, output string) []string {
	return []string{"-hide_banner", "-nostdin", "-y", "-i", input, "-frames:v", "1", output}
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
