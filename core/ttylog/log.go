package ttylog

// FD identifies which standard stream an event belongs to. The values match
// the POSIX file descriptor numbers.
type FD int32

const (
	FDStdin  FD = 0
	FDStdout FD = 1
	FDStderr FD = 2
)

// IO is a single read from or write to a terminal stream.
type IO struct {
	FD   FD     `json:"fd"`
	Data []byte `json:"data,omitempty"`
}

// Close marks a terminal stream being shut down.
type Close struct {
	FD FD `json:"fd"`
}

// TTYLogEntry is one timestamped terminal event. Exactly one of IO or Close
// is set.
type TTYLogEntry struct {
	TimestampMicros int64 `json:"timestamp_micros"`

	IO    *IO    `json:"io,omitempty"`
	Close *Close `json:"close,omitempty"`
}
