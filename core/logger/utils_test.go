package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJsonLinesLogRecorder(t *testing.T) {
	var buf bytes.Buffer
	log := NewJsonLinesLogRecorder(&buf).NewSession()

	assert.Nil(t, log.Record(&LogEntry{BuiltinRun: &BuiltinRun{Command: []string{"cd", "/"}}}))
	assert.Nil(t, log.Record(&LogEntry{SessionEnd: &SessionEnd{Reason: "eof"}}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 2)

	var entries []*LogEntry
	assert.Nil(t, ReadJSONLinesLog(&buf, func(le *LogEntry) {
		entries = append(entries, le)
	}))

	if assert.Len(t, entries, 2) {
		assert.Equal(t, []string{"cd", "/"}, entries[0].BuiltinRun.Command)
		assert.NotZero(t, entries[0].TimestampMicros)
		assert.NotEmpty(t, entries[0].SessionID)
		assert.Equal(t, entries[0].SessionID, entries[1].SessionID)
		assert.Equal(t, "eof", entries[1].SessionEnd.Reason)
	}
}

func TestSessionlessRecorder(t *testing.T) {
	var buf bytes.Buffer
	log := NewJsonLinesLogRecorder(&buf).Sessionless()

	assert.Nil(t, log.Record(&LogEntry{SessionStart: &SessionStart{Source: "pipe"}}))
	assert.NotContains(t, buf.String(), "session_id")
}

func TestNopLogRecorder(t *testing.T) {
	log := NewNopLogRecorder().NewSession()

	assert.Nil(t, log.Record(&LogEntry{SessionStart: &SessionStart{Source: "terminal"}}))
}
