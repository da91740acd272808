package runner

import (
	"context"
	"testing"
	"time"

	"github.com/nirlob/obision-status/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_CapturesStdout(t *testing.T) {
	res, err := NewLocal().Run(context.Background(), "echo", "hello")

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", res.Stdout)
	assert.Empty(t, res.Stderr)
}

func TestLocal_NoShellInterpretation(t *testing.T) {
	res, err := NewLocal().Run(context.Background(), "echo", "$HOME", "|", "wc")

	require.NoError(t, err)
	assert.Equal(t, "$HOME | wc\n", res.Stdout)
}

func TestLocal_NonZeroExitIsNotAnError(t *testing.T) {
	res, err := NewLocal().Run(context.Background(), "sh", "-c", "echo partial; echo oops >&2; exit 3")

	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "partial\n", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)
}

func TestLocal_SpawnFailure(t *testing.T) {
	res, err := NewLocal().Run(context.Background(), "definitely-not-a-real-tool-xyz")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExec))
	assert.Equal(t, -1, res.ExitCode)
}

func TestLocal_SetsLocale(t *testing.T) {
	res, err := (&Local{Locale: "C"}).Run(context.Background(), "sh", "-c", "echo $LC_ALL")

	require.NoError(t, err)
	assert.Equal(t, "C\n", res.Stdout)
}

func TestLocal_Timeout(t *testing.T) {
	l := &Local{Timeout: 50 * time.Millisecond}

	start := time.Now()
	_, err := l.Run(context.Background(), "sleep", "5")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExec))
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestElevated_PrefixesWrapper(t *testing.T) {
	var gotName string
	var gotArgs []string
	inner := Func(func(ctx context.Context, name string, args ...string) (Result, error) {
		gotName, gotArgs = name, args
		return Result{Stdout: "ok"}, nil
	})

	res, err := Elevated(inner, "").Run(context.Background(), "journalctl", "--no-pager", "-q")

	require.NoError(t, err)
	assert.Equal(t, "ok", res.Stdout)
	assert.Equal(t, "pkexec", gotName)
	assert.Equal(t, []string{"journalctl", "--no-pager", "-q"}, gotArgs)
}

func TestCommandLine(t *testing.T) {
	assert.Equal(t, "nproc", CommandLine("nproc"))
	assert.Equal(t, "df -h /", CommandLine("df", "-h", "/"))
}

type stubExecutor struct {
	cmd    string
	stdout string
	stderr string
	code   int
	err    error
}

func (s *stubExecutor) Exec(ctx context.Context, cmd string) ([]byte, []byte, int, error) {
	s.cmd = cmd
	return []byte(s.stdout), []byte(s.stderr), s.code, s.err
}

func TestSSH_QuotesArguments(t *testing.T) {
	stub := &stubExecutor{stdout: "42000\n"}
	r := &SSH{client: stub, locale: "C"}

	res, err := r.Run(context.Background(), "journalctl", "--since", "5 minutes ago")

	require.NoError(t, err)
	assert.Equal(t, "42000\n", res.Stdout)
	assert.Equal(t, "env LC_ALL='C' 'journalctl' '--since' '5 minutes ago'", stub.cmd)
}

func TestSSH_PropagatesExitCodeAndError(t *testing.T) {
	stub := &stubExecutor{code: 1}
	res, err := (&SSH{client: stub}).Run(context.Background(), "sensors")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)
	assert.Equal(t, "'sensors'", stub.cmd)

	stub.err = errors.New(errors.ErrSSH, "connection closed", "")
	res, err = (&SSH{client: stub}).Run(context.Background(), "sensors")
	require.Error(t, err)
	assert.Equal(t, -1, res.ExitCode)
}

func TestSSH_MissingRemoteCommandIsExecError(t *testing.T) {
	stub := &stubExecutor{code: 127, stderr: "sh: 1: sensors: not found\n"}

	res, err := (&SSH{client: stub}).Run(context.Background(), "sensors")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExec))
	assert.Equal(t, -1, res.ExitCode)
	assert.Contains(t, errors.SuggestionOf(err), "not found")
}
