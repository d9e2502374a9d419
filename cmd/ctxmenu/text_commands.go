package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ctxmenu/internal/textaction"
)

func newTextCommand(ctx *commandContext) *cobra.Command {
	textCmd := &cobra.Command{
		Use:   "text",
		Short: "Transform text and optionally paste it back",
	}
	for _, action := range textaction.Actions {
		textCmd.AddCommand(newTextActionCommand(ctx, action))
	}
	return textCmd
}

func newTextActionCommand(ctx *commandContext, action textaction.Action) *cobra.Command {
	var fromClipboard, copyResult bool
	var pasteWindow string

	cmd := &cobra.Command{
		Use:   action.String() + " [text...]",
		Short: action.Label(),
		Long: action.Label() + ".\n\nText comes from the arguments, --clipboard, or standard input. " +
			"--copy writes the result to the clipboard; --paste also pastes it into the given window.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(false)
			if err != nil {
				return err
			}
			clip, win := newDesktop(cfg)

			text, err := textInput(cmd, args, fromClipboard, clip.ReadText)
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("no text to transform")
			}

			svc := textaction.NewService(cfg, clip, win, logger)
			out := cmd.OutOrStdout()

			windowID := strings.TrimSpace(pasteWindow)
			if !copyResult && windowID == "" {
				output, unchanged, err := svc.Transform(cmd.Context(), action, text)
				if err != nil {
					return err
				}
				if unchanged {
					fmt.Fprintln(cmd.ErrOrStderr(), "Text is already in the target language")
				}
				fmt.Fprintln(out, output)
				return nil
			}

			result, err := svc.Apply(cmd.Context(), action, text, windowID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, result.Output)
			if windowID != "" && !result.Pasted {
				fmt.Fprintln(cmd.ErrOrStderr(), "Paste failed; result left on the clipboard")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromClipboard, "clipboard", false, "Read the text from the clipboard")
	cmd.Flags().BoolVar(&copyResult, "copy", false, "Write the result to the clipboard")
	cmd.Flags().StringVar(&pasteWindow, "paste", "", "Paste the result into this window id")
	return cmd
}

func textInput(cmd *cobra.Command, args []string, fromClipboard bool, readClipboard func() (string, error)) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case fromClipboard:
		text, err := readClipboard()
		if err != nil {
			return "", fmt.Errorf("read clipboard: %w", err)
		}
		return text, nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
}
