package desktop

import (
	"context"
	"errors"
	"net/url"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"

	"ctxmenu/internal/config"
	"ctxmenu/internal/services"
)

// Clipboard reads and writes the system clipboard.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
	Clear() error
	// Files returns local paths from a file-list payload. An empty result
	// with a nil error means the clipboard holds no file list.
	Files(ctx context.Context) ([]string, error)
}

// Window controls foreground window focus and synthesizes keystrokes.
type Window interface {
	Active(ctx context.Context) (string, error)
	Activate(ctx context.Context, id string) error
	SendKeys(ctx context.Context, combo string) error
}

// Runner executes a helper binary and returns its stdout.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.Output()
}

// X11 implements Clipboard and Window with atotto/clipboard, xclip, and xdotool.
type X11 struct {
	xclip   string
	xdotool string
	runner  Runner

	readText  func() (string, error)
	writeText func(string) error
}

// Option customizes the X11 adapter.
type Option func(*X11)

// WithRunner overrides how helper binaries are executed.
func WithRunner(r Runner) Option {
	return func(x *X11) {
		if r != nil {
			x.runner = r
		}
	}
}

// WithTextClipboard overrides the text clipboard primitives.
func WithTextClipboard(read func() (string, error), write func(string) error) Option {
	return func(x *X11) {
		if read != nil {
			x.readText = read
		}
		if write != nil {
			x.writeText = write
		}
	}
}

// NewX11 constructs the adapter from the configured tool names.
func NewX11(tools config.Tools, opts ...Option) *X11 {
	x := &X11{
		xclip:     strings.TrimSpace(tools.Xclip),
		xdotool:   strings.TrimSpace(tools.Xdotool),
		runner:    execRunner{},
		readText:  clipboard.ReadAll,
		writeText: clipboard.WriteAll,
	}
	if x.xclip == "" {
		x.xclip = "xclip"
	}
	if x.xdotool == "" {
		x.xdotool = "xdotool"
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// ReadText returns the clipboard text.
func (x *X11) ReadText() (string, error) {
	text, err := x.readText()
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "desktop", "read clipboard", "", err)
	}
	return text, nil
}

// WriteText replaces the clipboard contents with text.
func (x *X11) WriteText(text string) error {
	if err := x.writeText(text); err != nil {
		return services.Wrap(services.ErrExternalTool, "desktop", "write clipboard", "", err)
	}
	return nil
}

// Clear empties the clipboard so a later read only sees fresh content.
func (x *X11) Clear() error {
	return x.WriteText("")
}

// Files reads the text/uri-list target and returns the local paths it names.
func (x *X11) Files(ctx context.Context) ([]string, error) {
	out, err := x.runner.Output(ctx, x.xclip, "-selection", "clipboard", "-t", "text/uri-list", "-o")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// xclip exits non-zero when the target is not offered.
			return nil, nil
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, services.Wrap(services.ErrNotFound, "desktop", "read file list", x.xclip+" not found", err)
		}
		return nil, services.Wrap(services.ErrExternalTool, "desktop", "read file list", "", err)
	}
	return ParseURIList(string(out)), nil
}

// Active returns the id of the focused window.
func (x *X11) Active(ctx context.Context) (string, error) {
	out, err := x.runner.Output(ctx, x.xdotool, "getactivewindow")
	if err != nil {
		return "", x.toolError("active window", err)
	}
	id := strings.TrimSpace(string(out))
	if id == "" {
		return "", services.Wrap(services.ErrExternalTool, "desktop", "active window", "empty window id", nil)
	}
	return id, nil
}

// Activate focuses the window with the given id and waits until it is mapped.
func (x *X11) Activate(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return services.Wrap(services.ErrValidation, "desktop", "activate window", "window id required", nil)
	}
	if _, err := x.runner.Output(ctx, x.xdotool, "windowactivate", "--sync", id); err != nil {
		return x.toolError("activate window", err)
	}
	return nil
}

// SendKeys types a key combination such as "ctrl+c" into the focused window.
func (x *X11) SendKeys(ctx context.Context, combo string) error {
	combo = strings.TrimSpace(combo)
	if combo == "" {
		return services.Wrap(services.ErrValidation, "desktop", "send keys", "key combination required", nil)
	}
	if _, err := x.runner.Output(ctx, x.xdotool, "key", "--clearmodifiers", combo); err != nil {
		return x.toolError("send keys", err)
	}
	return nil
}

func (x *X11) toolError(op string, err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return services.Wrap(services.ErrNotFound, "desktop", op, x.xdotool+" not found", err)
	}
	return services.Wrap(services.ErrExternalTool, "desktop", op, "", err)
}

// ParseURIList extracts local file paths from a text/uri-list payload.
// Comment lines and non-file URIs are ignored.
func ParseURIList(payload string) []string {
	var paths []string
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parsed, err := url.Parse(line)
		if err != nil || parsed.Scheme != "file" {
			continue
		}
		if parsed.Host != "" && parsed.Host != "localhost" {
			continue
		}
		if parsed.Path == "" {
			continue
		}
		paths = append(paths, parsed.Path)
	}
	return paths
}
