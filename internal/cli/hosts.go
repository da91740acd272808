package cli

import (
	"fmt"
	"io"

	"github.com/nirlob/obision-status/internal/ui"
	"github.com/nirlob/obision-status/pkg/sshutil"
	"github.com/spf13/cobra"
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List SSH hosts that --host accepts",
	Long: `List the concrete host aliases in ~/.ssh/config. Any of them can be
passed to --host, or set as remote.host in the config file.

Examples:
  obision-status hosts
  obision-status --host "?" monitor`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hosts, err := sshutil.ListHosts()
		if err != nil {
			return err
		}
		return hostsCommand(cmd.OutOrStdout(), hosts, settings.cfg.Remote.Host)
	},
}

func init() {
	rootCmd.AddCommand(hostsCmd)
}

func hostsCommand(w io.Writer, hosts []sshutil.HostEntry, current string) error {
	if len(hosts) == 0 {
		fmt.Fprintln(w, "No hosts found in ~/.ssh/config.")
		fmt.Fprintln(w, "\nYou can still pass user@host[:port] to --host.")
		return nil
	}

	rows := make([][]string, 0, len(hosts))
	for _, h := range hosts {
		alias := h.Alias
		if alias == current {
			alias += " *"
		}
		rows = append(rows, []string{alias, h.Hostname, h.User})
	}
	fmt.Fprintln(w, ui.RenderTable([]ui.TableColumn{
		{Title: "Alias", Width: 20},
		{Title: "Hostname", Width: 28},
		{Title: "User", Width: 12},
	}, rows))
	if current != "" {
		fmt.Fprintln(w, ui.LabelStyle.Render("* remote.host in config"))
	}
	return nil
}
