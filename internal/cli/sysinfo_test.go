package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/nirlob/obision-status/internal/errors"
	"github.com/nirlob/obision-status/internal/logger"
	runnertest "github.com/nirlob/obision-status/internal/runner/testing"
	"github.com/nirlob/obision-status/internal/sysinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryRunner() *runnertest.FakeRunner {
	return runnertest.NewFakeRunner().
		Stdout("hostname", "forge\n").
		Stdout("lsb_release -ds", "Ubuntu 24.04.1 LTS\n").
		Stdout("uname -r", "6.8.0-45-generic\n").
		Stdout("uptime -p", "up 2 hours\n")
}

func TestCollectReport_FallsBackToSummary(t *testing.T) {
	c := sysinfo.NewCollector(summaryRunner(), nil, logger.Noop())

	var fallback error
	report := collectReport(context.Background(), c, false, func(err error) { fallback = err })

	require.Error(t, fallback)
	assert.True(t, errors.IsCode(fallback, errors.ErrExec))
	assert.Equal(t, sysinfo.SourceCommands, report.Source)
	host, ok := report.Get("Hostname")
	require.True(t, ok)
	assert.Equal(t, "forge", host)
}

func TestCollectReport_SummaryFlagSkipsFastfetch(t *testing.T) {
	fake := summaryRunner()
	c := sysinfo.NewCollector(fake, nil, logger.Noop())

	report := collectReport(context.Background(), c, true, func(error) {
		t.Fatal("no fallback expected")
	})

	assert.Equal(t, sysinfo.SourceCommands, report.Source)
	assert.Zero(t, fake.CallCount("fastfetch --format json"))
}

func TestRenderReport_AlignsValues(t *testing.T) {
	report := &sysinfo.Report{Rows: []sysinfo.Row{
		{Title: "OS", Value: "Ubuntu"},
		{Title: "Kernel Version", Value: "6.8.0"},
	}}

	lines := strings.Split(strings.TrimRight(ansi.Strip(renderReport(report)), "\n"), "\n")

	require.Len(t, lines, 2)
	assert.Equal(t, strings.Index(lines[0], "Ubuntu"), strings.Index(lines[1], "6.8.0"))
	assert.True(t, strings.HasPrefix(lines[1], "Kernel Version"))
}
