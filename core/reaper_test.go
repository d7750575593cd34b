package core

import (
	"bytes"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobshell/jobsh/core/logger"
)

func newTestReaper() *Reaper {
	return NewReaper(logger.NewNopLogRecorder().Sessionless())
}

func TestReaperSweepEmpty(t *testing.T) {
	reaper := newTestReaper()

	var out bytes.Buffer
	assert.Equal(t, 0, reaper.Sweep(&out))
	assert.Equal(t, "", out.String())
}

func TestReaperTrackAndSweep(t *testing.T) {
	reaper := newTestReaper()

	cmd := exec.Command("true")
	require.NoError(t, cmd.Start())
	reaper.Track("true", cmd)
	assert.Equal(t, 1, reaper.Live())

	assert.Eventually(t, func() bool {
		return reaper.Live() == 0
	}, 5*time.Second, 10*time.Millisecond)

	var out bytes.Buffer
	assert.Equal(t, 1, reaper.Sweep(&out))
	assert.Regexp(t, `^\[background process \d+ exited with status 0\]\n$`, out.String())

	// Drained, nothing reports twice.
	out.Reset()
	assert.Equal(t, 0, reaper.Sweep(&out))
	assert.Equal(t, "", out.String())
}

func TestReaperSignaledChild(t *testing.T) {
	reaper := newTestReaper()

	cmd := exec.Command("sleep", "60")
	require.NoError(t, cmd.Start())
	reaper.Track("sleep", cmd)

	require.NoError(t, cmd.Process.Kill())

	assert.Eventually(t, func() bool {
		return reaper.Live() == 0
	}, 5*time.Second, 10*time.Millisecond)

	// Signal deaths use the same sentence with the signal number as the
	// status.
	var out bytes.Buffer
	require.Equal(t, 1, reaper.Sweep(&out))
	assert.Regexp(t, `^\[background process \d+ exited with status 9\]\n$`, out.String())
}

func TestReaperRecordsProcessExit(t *testing.T) {
	var events bytes.Buffer
	reaper := NewReaper(logger.NewJsonLinesLogRecorder(&events).Sessionless())

	cmd := exec.Command("false")
	require.NoError(t, cmd.Start())
	reaper.Track("false", cmd)

	assert.Eventually(t, func() bool {
		return reaper.Live() == 0
	}, 5*time.Second, 10*time.Millisecond)

	log := events.String()
	assert.Contains(t, log, `"process_exit"`)
	assert.Contains(t, log, `"command_name":"false"`)
	assert.Contains(t, log, `"status":1`)
	assert.Contains(t, log, `"background":true`)
}
