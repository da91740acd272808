package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nirlob/obision-status/internal/config"
	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/logger"
	"github.com/nirlob/obision-status/internal/ui"
	"github.com/nirlob/obision-status/pkg/sshutil"
	"github.com/spf13/cobra"
)

// pickHostValue in --host opens the interactive SSH host picker.
const pickHostValue = "?"

// annotationSkipConfig marks commands that must work without a readable
// config file.
const annotationSkipConfig = "skip-config"

// Persistent flags
var (
	cfgFile   string
	hostFlag  string
	debugFlag bool
	colorFlag string
)

// settings is what PersistentPreRunE resolved for the running command.
var settings struct {
	cfg     *config.Config
	cfgPath string
	host    string
}

var rootCmd = &cobra.Command{
	Use:   "obision-status",
	Short: "System status for Linux machines, local or over SSH",
	Long: `obision-status polls CPU, memory, disk, network, temperatures, GPU, load
and processes by running the usual command-line tools, and shows the
results as a terminal dashboard, one-shot reports or a websocket stream.

Every command works against this machine, or against another one over SSH
with --host.

Examples:
  obision-status monitor
  obision-status snapshot --format json
  obision-status processes --sort memory --limit 10
  obision-status logs --filter kernel --priority err
  obision-status --host nas monitor`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: preRun,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./.obision-status.yaml, then ~/.config/obision-status/config.yaml)")
	flags.StringVar(&hostFlag, "host", "", `SSH host to monitor instead of this machine ("?" to pick one)`)
	flags.BoolVar(&debugFlag, "debug", false, "log debug output to stderr")
	flags.StringVar(&colorFlag, "color", "", "color output: auto, always or never (overrides output.color)")

	_ = rootCmd.RegisterFlagCompletionFunc("host", completeHosts)
}

func preRun(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(""); err != nil {
		return err
	}

	if cmd.Annotations[annotationSkipConfig] == "" {
		cfg, path, err := config.LoadOrDefault(cfgFile)
		if err != nil {
			return err
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
		settings.cfg = cfg
		settings.cfgPath = path
	} else {
		settings.cfg = config.DefaultConfig()
		settings.cfgPath, _ = config.Find(cfgFile)
	}

	mode := settings.cfg.Output.Color
	if colorFlag != "" {
		mode = colorFlag
	}
	if err := ui.SetColorMode(mode, os.Stdout); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid color mode",
			"Use auto, always or never.")
	}

	host, err := resolveHost(hostFlag, settings.cfg.Remote.Host)
	if err != nil {
		return err
	}
	settings.host = host
	return nil
}

// resolveHost picks the target host: the flag wins over the config file.
// "?" asks interactively; choosing the local machine yields "".
func resolveHost(flag, configured string) (string, error) {
	if flag == "" {
		return configured, nil
	}
	if flag != pickHostValue {
		return flag, nil
	}

	if !ui.IsTerminal(os.Stdin) {
		return "", errors.New(errors.ErrConfig,
			"Can't pick a host without a terminal",
			"Pass the SSH alias directly, e.g. --host nas")
	}
	hosts, err := sshutil.ListHosts()
	if err != nil {
		return "", err
	}
	host, err := ui.PickHost(hosts)
	if err != nil {
		if err == ui.ErrPickerCancelled {
			return "", errors.New(errors.ErrCancelled, "Host selection cancelled", "")
		}
		return "", err
	}
	return host, nil
}

func completeHosts(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	hosts, err := sshutil.ListHosts()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		out = append(out, h.Alias+"\t"+h.Description())
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// newLogger returns a stderr logger; --debug or OBISION_DEBUG enable debug
// output.
func newLogger(name string) logger.Logger {
	return logger.New(os.Stderr, name, debugFlag || os.Getenv(logger.DebugEnv) != "")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	if code, ok := errors.GetExitCode(err); ok {
		os.Exit(code)
	}

	if MachineMode() {
		_ = WriteJSONFromError(os.Stdout, err)
		os.Exit(1)
	}

	if errors.IsCode(err, errors.ErrCancelled) {
		fmt.Fprintln(os.Stderr, errors.Summary(err))
		os.Exit(130)
	}

	if isUnknownCommandError(err) {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render(err.Error()))
		if name := extractUnknownCommand(err); name != "" {
			if suggestions := rootCmd.SuggestionsFor(name); len(suggestions) > 0 {
				fmt.Fprintf(os.Stderr, "\nDid you mean %s?\n", strings.Join(suggestions, " or "))
			}
		}
		fmt.Fprintln(os.Stderr, "\nRun 'obision-status --help' for the list of commands.")
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// isUnknownCommandError reports whether cobra rejected the command line
// itself.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}

// extractUnknownCommand pulls the command name out of cobra's
// `unknown command "foo" for "obision-status"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start == -1 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end == -1 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
