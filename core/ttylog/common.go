package ttylog

import (
	"io"
	"log"
	"regexp"
	"sync"
	"time"
)

var (
	crlf = regexp.MustCompile(`\r?\n`)
)

// LogSink receives log events.
type LogSink func(t *TTYLogEntry) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It reutrns io.EOF if the source
	// has no more log entries.
	Next() (*TTYLogEntry, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(logEntry *TTYLogEntry) error {
		once.Do(func() {
			prevTimeMicros = logEntry.TimestampMicros
		})

		delta := logEntry.TimestampMicros - prevTimeMicros
		prevTimeMicros = logEntry.TimestampMicros

		if maxSleep > 0 {
			sleepDuration := time.Duration(delta) * time.Microsecond
			if sleepDuration > maxSleep {
				sleepDuration = maxSleep
			}
			time.Sleep(sleepDuration)
		}

		return next(logEntry)
	}
}

// NewCRLFAdapter rewrites bare line feeds as CR LF pairs. Sessions recorded
// through pipes only carry \n, so playback on a real terminal would creep
// across the screen without the carriage returns.
func NewCRLFAdapter(next LogSink) LogSink {
	return func(logEntry *TTYLogEntry) error {
		if logEntry.IO != nil {
			logEntry.IO.Data = crlf.ReplaceAll(logEntry.IO.Data, []byte("\r\n"))
		}

		return next(logEntry)
	}
}

// NewClientOutput writes stdout and stderr to the given writer
func NewClientOutput(w io.Writer) LogSink {
	return func(logEntry *TTYLogEntry) error {
		if logEntry.IO != nil && logEntry.IO.FD != FDStdin {
			if _, err := w.Write(logEntry.IO.Data); err != nil {
				return err
			}
		}
		return nil
	}
}

// Replay reads a stream of events to a callback.
func Replay(recording LogSource, callback LogSink) error {
	for {
		logEntry, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(logEntry); err != nil {
			return err
		}
	}
}

// Recorder wraps a VIO and forwards everything read or written through it to
// a LogSink.
type Recorder struct {
	*VIOAdapter
	mutex  sync.Mutex
	output LogSink
}

var _ VIO = (*Recorder)(nil)

func (r *Recorder) recordIO(fd FD, data []byte) {
	eventTime := time.Now()

	r.mutex.Lock()
	err := r.output(&TTYLogEntry{
		TimestampMicros: eventTime.UnixMicro(),
		IO: &IO{
			FD:   fd,
			Data: data,
		},
	})
	r.mutex.Unlock()
	if err != nil {
		log.Print(err)
	}
}

type recorderReadCloser struct {
	r       *Recorder
	fd      FD
	wrapped io.ReadCloser
}

var _ io.ReadCloser = (*recorderReadCloser)(nil)

func (rc *recorderReadCloser) Read(p []byte) (int, error) {
	amount, err := rc.wrapped.Read(p)
	if err == nil {
		rc.r.recordIO(rc.fd, p[:amount])
	}
	return amount, err
}

func (rc *recorderReadCloser) Close() error {
	return rc.wrapped.Close()
}

type recorderWriteCloser struct {
	r       *Recorder
	fd      FD
	wrapped io.WriteCloser
}

var _ io.WriteCloser = (*recorderWriteCloser)(nil)

func (rc *recorderWriteCloser) Write(p []byte) (int, error) {
	amount, err := rc.wrapped.Write(p)
	if err == nil {
		rc.r.recordIO(rc.fd, p[:amount])
	}
	return amount, err
}

func (rc *recorderWriteCloser) Close() error {
	return rc.wrapped.Close()
}

// NewRecorder creates a VIO that forwards all events to output.
func NewRecorder(toWrap VIO, output LogSink) *Recorder {
	recorder := &Recorder{
		output: output,
	}

	recorder.VIOAdapter = NewVIOAdapter(
		&recorderReadCloser{fd: FDStdin, r: recorder, wrapped: toWrap.Stdin()},
		&recorderWriteCloser{fd: FDStdout, r: recorder, wrapped: toWrap.Stdout()},
		&recorderWriteCloser{fd: FDStderr, r: recorder, wrapped: toWrap.Stderr()},
	)

	return recorder
}
