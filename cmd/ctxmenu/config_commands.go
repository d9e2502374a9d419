package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ctxmenu/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configTarget(targetPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(target); err == nil && !overwrite {
				return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("check config path: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set translate.api_key (or export DEEPL_AUTH_KEY) to enable translation.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

// configTarget resolves the init destination, defaulting to the standard
// location.
func configTarget(flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return path, nil
	}
	path, err := config.ExpandPath(flagValue)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and print the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if !ctx.configExists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, effectiveSettings(cfg)))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func effectiveSettings(cfg *config.Config) [][]string {
	translate := "disabled (no API key)"
	if cfg.Translate.APIKey != "" {
		translate = "DeepL -> " + cfg.Translate.TargetLang
	}
	return [][]string{
		{"Images", strings.Join(cfg.Media.ImageExtensions, " ") + " -> " + cfg.Media.ImageTargetFormat},
		{"Videos", strings.Join(cfg.Media.VideoExtensions, " ")},
		{"Image workers", strconv.Itoa(cfg.Media.ImageWorkers)},
		{"Hardware encoders", yesNo(cfg.Encoding.AllowHardware)},
		{"Compress quality", fmt.Sprintf("crf %d / preset %s", cfg.Encoding.SoftwareCRF, cfg.Encoding.HardwarePreset)},
		{"Translate", translate},
		{"State directory", cfg.Paths.StateDir},
		{"Log directory", cfg.Paths.LogDir},
	}
}
