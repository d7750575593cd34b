package core

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobshell/jobsh/core/config"
	"github.com/jobshell/jobsh/core/logger"
	"github.com/jobshell/jobsh/core/ttylog"
)

// newTestShell builds a plain-mode interpreter over in-memory streams.
// Stdout and stderr share one buffer so tests can assert on ordering.
func newTestShell(t *testing.T, input string) (*Shell, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	vio := ttylog.NewVIOAdapter(strings.NewReader(input), &out, &out)

	shell, err := NewShell(config.Default(), vio, logger.NewNopLogRecorder().Sessionless(), false)
	require.NoError(t, err)

	return shell, &out
}

func TestShellRunsForegroundCommand(t *testing.T) {
	shell, out := newTestShell(t, "echo hello\nexit\n")

	assert.Equal(t, ExitOK, shell.Run())
	assert.Equal(t, "$ hello\n[echo exited with status 0]\n$ ", out.String())
}

func TestShellReportsFailureStatus(t *testing.T) {
	shell, out := newTestShell(t, "false\nexit\n")

	assert.Equal(t, ExitOK, shell.Run())
	assert.Equal(t, "$ [false exited with status 1]\n$ ", out.String())
}

func TestShellSequencedJobs(t *testing.T) {
	shell, out := newTestShell(t, "echo a;echo b\nexit\n")

	assert.Equal(t, ExitOK, shell.Run())
	assert.Equal(t, "$ a\n[echo exited with status 0]\nb\n[echo exited with status 0]\n$ ", out.String())
}

func TestShellShutsDownOnEOF(t *testing.T) {
	shell, out := newTestShell(t, "")

	assert.Equal(t, ExitOK, shell.Run())
	assert.Equal(t, "$ \nShutting down...\n", out.String())
}

func TestShellIgnoresBlankAndEmptyJobs(t *testing.T) {
	shell, out := newTestShell(t, "\n;\n;;\nexit\n")

	assert.Equal(t, ExitOK, shell.Run())
	assert.Equal(t, "$ $ $ $ ", out.String())
}

func TestShellUnknownCommand(t *testing.T) {
	shell, out := newTestShell(t, "jobsh-no-such-command\nexit\n")

	assert.Equal(t, ExitOK, shell.Run())
	assert.Equal(t, "$ jobsh: jobsh-no-such-command: command not found\n[jobsh-no-such-command exited with status 127]\n$ ", out.String())
}

func TestShellMaxArgsTruncation(t *testing.T) {
	shell, out := newTestShell(t, "echo a b c\nexit\n")
	shell.config.MaxArgs = 2

	assert.Equal(t, ExitOK, shell.Run())
	assert.Equal(t, "$ a\n[echo exited with status 0]\n$ ", out.String())
}

func TestShellExitSkipsRemainingJobs(t *testing.T) {
	shell, out := newTestShell(t, "exit;echo never\n")

	assert.Equal(t, ExitOK, shell.Run())
	assert.Equal(t, "$ ", out.String())
}

func TestShellBackgroundReap(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	vio := ttylog.NewVIOAdapter(pr, &out, &out)

	shell, err := NewShell(config.Default(), vio, logger.NewNopLogRecorder().Sessionless(), false)
	require.NoError(t, err)

	done := make(chan int, 1)
	go func() { done <- shell.Run() }()

	_, err = io.WriteString(pw, "sleep 1 &\n")
	require.NoError(t, err)

	// The sweep at the end of the next line finds the finished sleeper.
	time.Sleep(2 * time.Second)

	_, err = io.WriteString(pw, "echo marker\nexit\n")
	require.NoError(t, err)

	assert.Equal(t, ExitOK, <-done)
	assert.Regexp(t,
		`^\$ \$ marker\n\[echo exited with status 0\]\n\[background process \d+ exited with status 0\]\n\$ $`,
		out.String())
}

func TestShellExitAbandonsBackground(t *testing.T) {
	shell, out := newTestShell(t, "sleep 5 &\nexit\n")

	start := time.Now()
	assert.Equal(t, ExitOK, shell.Run())

	assert.Less(t, time.Since(start), 3*time.Second)
	assert.NotContains(t, out.String(), "[background process")
	assert.Equal(t, 1, shell.Reaper.Live())
}

type failingReader struct {
	err error
}

func (f failingReader) Read([]byte) (int, error) {
	return 0, f.err
}

func TestShellReadFailure(t *testing.T) {
	var out bytes.Buffer
	vio := ttylog.NewVIOAdapter(failingReader{errors.New("boom")}, &out, &out)

	shell, err := NewShell(config.Default(), vio, logger.NewNopLogRecorder().Sessionless(), false)
	require.NoError(t, err)

	assert.Equal(t, ExitReadFailure, shell.Run())
	assert.Equal(t, "$ Unable to read command line: boom\n", out.String())
}

func TestShellPromptColor(t *testing.T) {
	old := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = old })

	shell, _ := newTestShell(t, "")

	assert.Equal(t, "$ ", shell.Prompt())

	shell.config.PromptColor = "green"
	assert.Equal(t, "\x1b[32m$ \x1b[0m", shell.Prompt())
}

func TestShellEventLog(t *testing.T) {
	var events bytes.Buffer
	var out bytes.Buffer
	vio := ttylog.NewVIOAdapter(strings.NewReader("true\njobsh-no-such-command\nexit\n"), &out, &out)

	shell, err := NewShell(config.Default(), vio, logger.NewJsonLinesLogRecorder(&events).NewSession(), false)
	require.NoError(t, err)

	require.Equal(t, ExitOK, shell.Run())

	log := events.String()
	assert.Contains(t, log, `"run_command"`)
	assert.Contains(t, log, `"process_exit"`)
	assert.Contains(t, log, `"unknown_command"`)
	assert.Contains(t, log, `"builtin_run"`)
	assert.Contains(t, log, `"session_end"`)
	assert.Contains(t, log, `"reason":"exit"`)
}
