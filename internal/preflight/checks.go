package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"ctxmenu/internal/config"
	"ctxmenu/internal/deps"
	"ctxmenu/internal/services/deepl"
)

// CheckDeepL verifies that the DeepL API is reachable and the key is valid.
// It uses a 10-second timeout and a single attempt.
func CheckDeepL(ctx context.Context, cfg config.Translate) Result {
	const name = "DeepL"
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing (translate.api_key or DEEPL_AUTH_KEY)"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := deepl.NewClient(deepl.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		TimeoutSeconds: cfg.TimeoutSeconds,
	}, deepl.WithRetryMaxAttempts(1))

	usage, err := client.Usage(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	detail := "API reachable"
	if usage.CharacterLimit > 0 {
		detail = fmt.Sprintf("API reachable (%d of %d characters used)", usage.CharacterCount, usage.CharacterLimit)
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDisplay reports whether an X11 display is available for clipboard and
// window control.
func CheckDisplay() Result {
	const name = "X11 display"
	if display := os.Getenv("DISPLAY"); display != "" {
		return Result{Name: name, Passed: true, Detail: display}
	}
	return Result{Name: name, Detail: "DISPLAY not set; clipboard and paste will not work"}
}

// Requirements lists the external binaries for cfg.
func Requirements(cfg *config.Config) []deps.Requirement {
	return []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Tools.FFmpeg,
			Description: "Required for video and image conversion",
			VersionFlag: "-version",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Tools.FFprobe,
			Description: "Weights progress by media duration",
			Optional:    true,
			VersionFlag: "-version",
		},
		{
			Name:        "xclip",
			Command:     cfg.Tools.Xclip,
			Description: "Required to read copied file lists",
			VersionFlag: "-version",
		},
		{
			Name:        "xdotool",
			Command:     cfg.Tools.Xdotool,
			Description: "Required to copy the selection and paste results",
			VersionFlag: "--version",
		},
	}
}

// CheckSystemDeps evaluates every external binary for cfg.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(ctx, Requirements(cfg))
}

// summarizeError produces a human-readable summary for health check failures.
func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (DeepL API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (DeepL API unreachable)"
	}
	return err.Error()
}
