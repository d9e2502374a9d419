package selection

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"ctxmenu/internal/config"
	"ctxmenu/internal/desktop"
	"ctxmenu/internal/logging"
)

// Detector captures the current selection through the clipboard.
type Detector struct {
	clipboard desktop.Clipboard
	window    desktop.Window
	copyKeys  string
	settle    time.Duration
	logger    *slog.Logger
}

// NewDetector constructs a detector over the desktop capabilities.
func NewDetector(cfg *config.Config, clipboard desktop.Clipboard, window desktop.Window, logger *slog.Logger) *Detector {
	return &Detector{
		clipboard: clipboard,
		window:    window,
		copyKeys:  cfg.Desktop.CopyKeys,
		settle:    cfg.CopySettle(),
		logger:    logging.NewComponentLogger(logger, "selection"),
	}
}

// Detect returns the current selection. It never fails: probe errors are
// logged and the result degrades towards None.
func (d *Detector) Detect(ctx context.Context) Selection {
	if err := d.clipboard.Clear(); err != nil {
		d.logger.Debug("clipboard clear failed", logging.Error(err))
	}
	if err := d.window.SendKeys(ctx, d.copyKeys); err != nil {
		logging.WarnWithContext(d.logger, "copy keystroke failed", "detection_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that xdotool is installed and an X session is running"),
			logging.String(logging.FieldImpact, "only content already on the clipboard is considered"),
		)
	}
	if !d.wait(ctx) {
		return None()
	}

	files, err := d.clipboard.Files(ctx)
	if err != nil {
		d.logger.Debug("file list probe failed", logging.Error(err))
	}
	if len(files) > 0 {
		d.logger.Info("selection detected", logging.String("kind", KindFiles.String()), logging.Int("files", len(files)))
		return Files(files)
	}

	text, err := d.clipboard.ReadText()
	if err != nil {
		d.logger.Debug("clipboard text probe failed", logging.Error(err))
		return None()
	}
	text = strings.TrimSpace(text)
	if text == "" {
		d.logger.Info("no selection detected")
		return None()
	}
	d.logger.Info("selection detected", logging.String("kind", KindText.String()), logging.Int("runes", len([]rune(text))))
	return Text(text)
}

func (d *Detector) wait(ctx context.Context) bool {
	if d.settle <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d.settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
