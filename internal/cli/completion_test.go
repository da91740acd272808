package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRoot creates a bare root command so generated scripts don't
// depend on the registered subcommands.
func newTestRoot() *cobra.Command {
	return &cobra.Command{
		Use:   "obision-status",
		Short: "System status for Linux machines",
	}
}

func TestCompletionBashGeneration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestRoot().GenBashCompletionV2(&buf, true))

	output := buf.String()
	assert.Contains(t, output, "# bash completion V2 for obision-status")
	assert.Contains(t, output, "__complete")
}

func TestCompletionZshGeneration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestRoot().GenZshCompletion(&buf))

	output := buf.String()
	assert.Contains(t, output, "#compdef obision-status")
	assert.Contains(t, output, "_obision-status()")
}

func TestCompletionFishGeneration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestRoot().GenFishCompletion(&buf, true))

	output := buf.String()
	assert.Contains(t, output, "fish completion for obision-status")
	assert.Contains(t, output, "complete -c obision-status")
}

func TestCompletionPowershellGeneration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestRoot().GenPowerShellCompletion(&buf))

	output := buf.String()
	assert.Contains(t, strings.ToLower(output), "powershell completion")
	assert.Contains(t, output, "Register-ArgumentCompleter")
}

func TestCompletionCommandValidArgs(t *testing.T) {
	assert.ElementsMatch(t, []string{"bash", "zsh", "fish", "powershell"}, completionCmd.ValidArgs)
}

func TestCompletionRejectsUnknownShell(t *testing.T) {
	err := completionCmd.Args(completionCmd, []string{"tcsh"})
	assert.Error(t, err)
	assert.NoError(t, completionCmd.Args(completionCmd, []string{"zsh"}))
}

func TestCompletionIncludesCommands(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rootCmd.GenFishCompletion(&buf, true))

	// Fish scripts call back into the binary for candidates.
	assert.Contains(t, buf.String(), "__complete")
}

func TestSortFlagCompletion(t *testing.T) {
	fn, ok := processesCmd.GetFlagCompletionFunc("sort")
	require.True(t, ok)
	got, directive := fn(processesCmd, nil, "")
	assert.Equal(t, []string{"name", "pid", "cpu", "memory"}, got)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}
