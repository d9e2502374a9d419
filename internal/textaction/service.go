package textaction

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ctxmenu/internal/config"
	"ctxmenu/internal/desktop"
	"ctxmenu/internal/language"
	"ctxmenu/internal/logging"
	"ctxmenu/internal/services"
	"ctxmenu/internal/services/deepl"
)

// Translator translates text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, target string) (deepl.Translation, error)
}

// DetectFunc identifies the language of a text sample.
type DetectFunc func(text string) (language.Detection, bool)

// Result describes an applied text action.
type Result struct {
	Action Action
	Output string
	// Unchanged is set when translation was skipped because the text is
	// already in the target language.
	Unchanged bool
	Pasted    bool
}

// Service applies text actions and pastes their results.
type Service struct {
	cfg        *config.Config
	clipboard  desktop.Clipboard
	window     desktop.Window
	translator Translator
	detect     DetectFunc
	logger     *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithDetector overrides source language detection.
func WithDetector(fn DetectFunc) Option {
	return func(s *Service) {
		if fn != nil {
			s.detect = fn
		}
	}
}

// WithTranslator overrides the DeepL client built from configuration.
func WithTranslator(t Translator) Option {
	return func(s *Service) {
		if t != nil {
			s.translator = t
		}
	}
}

// NewService wires a text action service. Window may be nil when no paste
// target is available.
func NewService(cfg *config.Config, clipboard desktop.Clipboard, window desktop.Window, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		cfg:       cfg,
		clipboard: clipboard,
		window:    window,
		detect:    language.Detect,
		logger:    logging.NewComponentLogger(logger, "textaction"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.translator == nil {
		s.translator = deepl.NewClient(deepl.Config{
			APIKey:         cfg.Translate.APIKey,
			BaseURL:        cfg.Translate.BaseURL,
			TimeoutSeconds: cfg.Translate.TimeoutSeconds,
		})
	}
	return s
}

// Transform computes the action's output without touching the clipboard.
// unchanged reports a translation pass-through.
func (s *Service) Transform(ctx context.Context, action Action, text string) (output string, unchanged bool, err error) {
	switch action {
	case ActionUpper:
		return Upper(text), false, nil
	case ActionLower:
		return Lower(text), false, nil
	case ActionReverse:
		return Reverse(text), false, nil
	case ActionTranslate:
		return s.translate(ctx, text)
	default:
		return "", false, services.Wrap(services.ErrValidation, "textaction", "transform", "unknown action", nil)
	}
}

func (s *Service) translate(ctx context.Context, text string) (string, bool, error) {
	target := s.cfg.Translate.TargetLang
	detected, ok := s.detect(text)
	if !ok {
		return "", false, services.Wrap(services.ErrValidation, "textaction", "translate", "could not detect the source language", nil)
	}
	if language.SameBase(detected.Code, target) {
		s.logger.Debug("text already in target language",
			logging.String("detected", detected.Code),
			logging.String("target", target),
		)
		return text, true, nil
	}
	translation, err := s.translator.Translate(ctx, text, target)
	if err != nil {
		return "", false, err
	}
	s.logger.Info("text translated",
		logging.String("source", language.DisplayName(detected.Code)),
		logging.String("target", target),
		logging.Int("runes", len([]rune(translation.Text))),
	)
	return translation.Text, false, nil
}

// Apply transforms text, writes the result to the clipboard, and pastes it
// into windowID. The clipboard is only written when the transform succeeds.
// An empty windowID skips the paste.
func (s *Service) Apply(ctx context.Context, action Action, text, windowID string) (Result, error) {
	ctx = services.WithOperation(ctx, action.String())
	logger := logging.WithContext(ctx, s.logger)
	result := Result{Action: action}

	output, unchanged, err := s.Transform(ctx, action, text)
	if err != nil {
		logging.ErrorWithContext(logger, "text action failed", "text_action_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
			logging.String(logging.FieldImpact, "clipboard left unchanged"),
		)
		return result, err
	}
	result.Output = output
	result.Unchanged = unchanged

	if err := s.clipboard.WriteText(output); err != nil {
		return result, services.Wrap(services.ErrExternalTool, "textaction", "clipboard", "write result", err)
	}
	if windowID == "" {
		return result, nil
	}
	if err := s.Paste(ctx, windowID); err != nil {
		logging.WarnWithContext(logger, "paste failed", "paste_failed",
			logging.String("window", windowID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that xdotool is installed and the window still exists"),
			logging.String(logging.FieldImpact, "result remains on the clipboard"),
		)
		return result, nil
	}
	result.Pasted = true
	return result, nil
}

// Paste re-activates windowID, waits for focus to settle, and sends the
// configured paste keystroke.
func (s *Service) Paste(ctx context.Context, windowID string) error {
	if s.window == nil {
		return errors.New("no window controller")
	}
	if err := s.window.Activate(ctx, windowID); err != nil {
		return err
	}
	if delay := s.cfg.PasteDelay(); delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return s.window.SendKeys(ctx, s.cfg.Desktop.PasteKeys)
}
