package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/nirlob/obision-status/internal/config"
	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/ui"
	"github.com/spf13/cobra"
)

var successStyle = lipgloss.NewStyle().Foreground(ui.ColorSuccess)

var (
	configInitForce  bool
	configInitGlobal bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create, inspect and edit the config file",
	Long: `The config file is looked up in this order:
  1. --config
  2. ./.obision-status.yaml
  3. ~/.config/obision-status/config.yaml

Any key can be overridden from the environment or a .env file, e.g.
OBISION_REFRESH_INTERVAL=5s or OBISION_LOGS_LINES=500.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the defaults",
	Long: `Write the default config, with comments, to ./.obision-status.yaml
(or the user config with --global).

Examples:
  obision-status config init
  obision-status config init --global --force`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitCommand(cmd.OutOrStdout(), initTarget(cfgFile, configInitGlobal), configInitForce)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	Long:  `Print the config after defaults and environment overrides are applied.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowCommand(cmd.OutOrStdout(), settings.cfg, settings.cfgPath)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one key in the config file",
	Long: `Set a dotted key in the config file, keeping its comments.

Examples:
  obision-status config set refresh_interval 5s
  obision-status config set remote.host nas
  obision-status config set sources cpu,memory,network`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSetCommand(cmd.OutOrStdout(), settings.cfgPath, args[0], args[1])
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")
	configInitCmd.Flags().BoolVar(&configInitGlobal, "global", false, "write ~/.config/obision-status/config.yaml")
	configCmd.AddCommand(configInitCmd, configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// initTarget picks the file config init writes.
func initTarget(explicit string, global bool) string {
	switch {
	case explicit != "":
		return config.ExpandTilde(explicit)
	case global:
		return config.GlobalPath()
	}
	return config.ConfigFileName
}

func configInitCommand(w io.Writer, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		if !ui.IsTerminal(os.Stdin) {
			return config.WriteDefault(path, false)
		}
		overwrite := false
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(path + " already exists. Overwrite it?").
					Affirmative("Overwrite").
					Negative("Keep").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, "Config init cancelled", "")
		}
		if !overwrite {
			fmt.Fprintln(w, ui.LabelStyle.Render("Kept "+path))
			return nil
		}
		force = true
	}

	if err := config.WriteDefault(path, force); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s Wrote %s\n", successStyle.Render(ui.SymbolSuccess), path)
	return nil
}

func configShowCommand(w io.Writer, cfg *config.Config, path string) error {
	source := path
	if source == "" {
		source = "defaults (no config file found)"
	}
	fmt.Fprintln(w, ui.LabelStyle.Render("# "+source))

	data, err := config.Render(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't render config", "")
	}
	_, err = w.Write(data)
	return err
}

func configSetCommand(w io.Writer, path, key, value string) error {
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No config file to change",
			"Run 'obision-status config init' first.")
	}
	if err := config.SetValue(path, key, value); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't set "+key, "")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintln(w, ui.ErrorStyle.Render("The file was changed but no longer validates:"))
		return err
	}
	fmt.Fprintf(w, "%s %s = %s in %s\n", successStyle.Render(ui.SymbolSuccess), key, value, path)
	return nil
}
