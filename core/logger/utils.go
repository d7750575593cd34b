package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"
)

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *LogEntry) error

// Logger captures shell events so sessions can be audited after the fact.
type Logger struct {
	Record LogRecorder
}

// NewJsonLinesLogRecorder creates a Logger that exports logs in newline
// delimited JSON object format.
func NewJsonLinesLogRecorder(w io.Writer) *Logger {
	return &Logger{
		Record: func(le *LogEntry) error {
			entry, err := json.Marshal(le)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// NewNopLogRecorder creates a Logger that discards all events.
func NewNopLogRecorder() *Logger {
	return &Logger{
		Record: func(le *LogEntry) error {
			return nil
		},
	}
}

func (l *Logger) recordEntry(sessionID string, le *LogEntry) error {
	le.TimestampMicros = time.Now().UnixMicro()
	le.SessionID = sessionID

	return l.Record(le)
}

// NewSession creates a logger with attached session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: fmt.Sprintf("%d", rand.Uint64())}
}

// Sessionless creates a logger without a session ID.
func (l *Logger) Sessionless() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: ""}
}

// SessionLogger logs messages with a shared session ID.
type SessionLogger struct {
	*Logger
	sessionID string
}

// Record stamps the entry with the session ID and the current time before
// storing it.
func (l *SessionLogger) Record(le *LogEntry) error {
	return l.recordEntry(l.sessionID, le)
}
