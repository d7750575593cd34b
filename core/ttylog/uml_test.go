package ttylog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUMLRoundTrip(t *testing.T) {
	entries := []*TTYLogEntry{
		{TimestampMicros: 1629300000000000, IO: &IO{FD: FDStdout, Data: []byte("$ ")}},
		{TimestampMicros: 1629300000250000, IO: &IO{FD: FDStdin, Data: []byte("ls\n")}},
		{TimestampMicros: 1629300001000000, Close: &Close{FD: FDStdout}},
	}

	var buf bytes.Buffer
	sink := NewUMLLogSink(&buf)
	for _, entry := range entries {
		assert.Nil(t, sink(entry))
	}

	var got []*TTYLogEntry
	assert.Nil(t, Replay(NewUMLLogSource(&buf), func(e *TTYLogEntry) error {
		got = append(got, e)
		return nil
	}))

	assert.Equal(t, entries, got)
}

func TestUMLLogSourceTruncated(t *testing.T) {
	// A partial header must end the stream rather than hang or panic.
	var got []*TTYLogEntry
	err := Replay(NewUMLLogSource(bytes.NewReader([]byte{0x03, 0x00})), func(e *TTYLogEntry) error {
		got = append(got, e)
		return nil
	})

	assert.Nil(t, err)
	assert.Empty(t, got)
}
