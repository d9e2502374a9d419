package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ctxmenu/internal/dispatch"
	"ctxmenu/internal/popup"
	"ctxmenu/internal/selection"
)

type detectFile struct {
	Path  string `json:"path"`
	Class string `json:"class"`
}

type detectOutput struct {
	Kind    string       `json:"kind"`
	Text    string       `json:"text,omitempty"`
	Files   []detectFile `json:"files,omitempty"`
	Actions []string     `json:"actions"`
}

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Copy the current selection and report what it contains",
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
			sel := selection.NewDetector(cfg, clip, win, logger).Detect(cmd.Context())
			classifier := selection.NewClassifier(cfg.Media)

			result := detectOutput{Kind: sel.Kind().String(), Actions: []string{}}
			if text, ok := sel.Text(); ok {
				result.Text = text
			}
			if files, ok := sel.Files(); ok {
				for _, path := range files {
					result.Files = append(result.Files, detectFile{Path: path, Class: classifier.Classify(path).String()})
				}
			}
			for _, action := range dispatch.BuildActions(sel, classifier) {
				result.Actions = append(result.Actions, action.Label)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Selection: %s\n", result.Kind)
			if result.Text != "" {
				fmt.Fprintf(out, "Text: %s\n", popup.Preview(result.Text, cfg.Popup.PreviewRunes))
			}
			if len(result.Files) > 0 {
				rows := make([][]string, 0, len(result.Files))
				for _, f := range result.Files {
					rows = append(rows, []string{f.Path, f.Class})
				}
				fmt.Fprintln(out, renderTable([]string{"File", "Class"}, rows))
			}
			if len(result.Actions) == 0 {
				fmt.Fprintln(out, dispatch.NoContextMessage)
				return nil
			}
			fmt.Fprintln(out, "Actions:")
			for i, label := range result.Actions {
				fmt.Fprintf(out, "  %d. %s\n", i+1, label)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
