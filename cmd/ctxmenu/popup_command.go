package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"ctxmenu/internal/dispatch"
	"ctxmenu/internal/encoding"
	"ctxmenu/internal/logging"
	"ctxmenu/internal/notifications"
	"ctxmenu/internal/popup"
	"ctxmenu/internal/preflight"
	"ctxmenu/internal/selection"
	"ctxmenu/internal/services"
	"ctxmenu/internal/textaction"
)

func newPopupCommand(ctx *commandContext) *cobra.Command {
	var windowFlag string

	cmd := &cobra.Command{
		Use:   "popup",
		Short: "Show actions for the current selection",
		Long: "Copy the selection from the focused window and show the matching actions.\n\n" +
			"Bind this to a hotkey that opens a small terminal. Pass --window with the id of the\n" +
			"window that was focused before the terminal opened so text results are pasted there.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(true)
			if err != nil {
				return err
			}
			logger = logging.NewComponentLogger(logger, "popup")

			lock := flock.New(cfg.LockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return errors.New("another ctxmenu popup is already open")
			}
			defer func() { _ = lock.Unlock() }()

			runCtx := cmd.Context()
			clip, win := newDesktop(cfg)

			windowID := strings.TrimSpace(windowFlag)
			if windowID != "" {
				if err := win.Activate(runCtx, windowID); err != nil {
					logging.WarnWithContext(logger, "could not focus target window", "window_activate_failed",
						logging.String("window", windowID),
						logging.Error(err),
						logging.String(logging.FieldImpact, "selection copied from the focused window instead"),
					)
				}
			} else if active, err := win.Active(runCtx); err == nil {
				windowID = active
			} else {
				logging.WarnWithContext(logger, "could not read active window", "window_lookup_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "text results stay on the clipboard without pasting"),
				)
			}

			sel := selection.NewDetector(cfg, clip, win, logger).Detect(runCtx)
			for _, failed := range preflight.Failed(preflight.RunAll(runCtx, cfg)) {
				logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
					logging.String("check", failed.Name),
					logging.String("detail", failed.Detail),
				)
			}

			engine := encoding.NewEngine(cfg, nil, logger)
			bridge := dispatch.NewBridge(cfg.Popup.QueueSize, logger)
			model := popup.New(runCtx, popup.Options{
				Selection:    sel,
				Actions:      dispatch.BuildActions(sel, selection.NewClassifier(cfg.Media)),
				Bridge:       bridge,
				Jobs:         engine.Job,
				PollInterval: cfg.PollInterval(),
				Linger:       time.Duration(cfg.Popup.LingerMillis) * time.Millisecond,
				PreviewRunes: cfg.Popup.PreviewRunes,
			})

			started := time.Now()
			final, err := popup.Run(model,
				tea.WithContext(runCtx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			if err != nil {
				bridge.Cancel()
				bridge.Wait()
				return fmt.Errorf("popup: %w", err)
			}

			notifier := notifications.NewService(cfg)
			notifyCtx := context.WithoutCancel(runCtx)

			if err := final.LaunchErr(); err != nil {
				_ = notifier.NotifyError(notifyCtx, err, "batch launch")
				return err
			}

			if action, ok := final.Chosen(); ok {
				text, _ := sel.Text()
				svc := textaction.NewService(cfg, clip, win, logger)
				if _, err := svc.Apply(runCtx, action.Text, text, windowID); err != nil {
					if !errors.Is(err, services.ErrValidation) {
						_ = notifier.NotifyError(notifyCtx, err, action.Label)
					}
					return err
				}
				return nil
			}

			result := bridge.Wait()
			if len(result.Files) == 0 {
				return nil
			}
			if err := notifier.NotifyBatchCompleted(notifyCtx, result, time.Since(started)); err != nil {
				logger.Warn("batch notification failed", logging.Error(err))
			}
			if final.Cancelled() {
				logger.Info("batch cancelled from popup", logging.String("summary", result.Summary()))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&windowFlag, "window", "w", "", "Window id to copy from and paste into (default: active window)")
	return cmd
}
