package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ctxmenu/internal/config"
	"ctxmenu/internal/deps"
	"ctxmenu/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration, dependency, and service health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			r := newReport(cmd.OutOrStdout())
			r.text("Config: " + ctx.configPath)
			r.gap()

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			r.section("Dependencies")
			r.text(dependencyTable(statuses))
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, s := range missing {
					names = append(names, s.Name)
				}
				r.line("Summary", statusError, "Missing: "+strings.Join(names, ", "))
			} else {
				r.line("Summary", statusOK, "All required tools available")
			}
			r.gap()

			r.section("Environment")
			for _, res := range []preflight.Result{
				preflight.CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
				preflight.CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
				preflight.CheckDisplay(),
			} {
				r.result(res, statusError)
			}
			r.gap()

			r.section("Services")
			translateStatus(r, cmd, cfg, offline)
			notificationStatus(r, cfg)
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip network checks")
	return cmd
}

func dependencyTable(statuses []deps.Status) string {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		state := "ok"
		switch {
		case !s.Available && s.Optional:
			state = "missing (optional)"
		case !s.Available:
			state = "missing"
		}
		location := s.Path
		if location == "" {
			location = s.Detail
		}
		rows = append(rows, []string{s.Name, state, s.Version, location})
	}
	return renderTable([]string{"Tool", "State", "Version", "Path"}, rows)
}

func (r *report) result(res preflight.Result, failKind statusKind) {
	if res.Passed {
		r.line(res.Name, statusOK, res.Detail)
		return
	}
	r.line(res.Name, failKind, res.Detail)
}

func translateStatus(r *report, cmd *cobra.Command, cfg *config.Config, offline bool) {
	switch {
	case strings.TrimSpace(cfg.Translate.APIKey) == "":
		r.line("DeepL", statusWarn, "API key missing (translate disabled)")
	case offline:
		r.line("DeepL", statusInfo, "Key configured, target "+cfg.Translate.TargetLang)
	default:
		r.result(preflight.CheckDeepL(cmd.Context(), cfg.Translate), statusWarn)
	}
}

func notificationStatus(r *report, cfg *config.Config) {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		r.line("Notifications", statusInfo, "Disabled (no ntfy topic)")
		return
	}
	r.line("Notifications", statusOK, fmt.Sprintf("%s (batches: %s, errors: %s)",
		topic, yesNo(cfg.Notifications.BatchCompleted), yesNo(cfg.Notifications.Errors)))
}
