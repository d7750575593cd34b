package logger

// LogEntry is a single timestamped shell event. Exactly one of the event
// fields is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	SessionStart   *SessionStart   `json:"session_start,omitempty"`
	RunCommand     *RunCommand     `json:"run_command,omitempty"`
	BuiltinRun     *BuiltinRun     `json:"builtin_run,omitempty"`
	UnknownCommand *UnknownCommand `json:"unknown_command,omitempty"`
	ProcessExit    *ProcessExit    `json:"process_exit,omitempty"`
	SpawnFailure   *SpawnFailure   `json:"spawn_failure,omitempty"`
	OpenTTYLog     *OpenTTYLog     `json:"open_tty_log,omitempty"`
	SessionEnd     *SessionEnd     `json:"session_end,omitempty"`
}

// SessionStart records the beginning of an interpreter session.
type SessionStart struct {
	// Source is "terminal", "pipe", or the path of the startup input file.
	Source      string `json:"source"`
	Interactive bool   `json:"interactive"`
}

// RunCommand records a command being handed to the process launcher.
type RunCommand struct {
	Command             []string `json:"command"`
	ResolvedCommandPath string   `json:"resolved_command_path"`
	Background          bool     `json:"background"`
}

// BuiltinRun records a builtin intercepting a command.
type BuiltinRun struct {
	Command []string `json:"command"`
}

// UnknownCommand records a command name that failed path resolution.
type UnknownCommand struct {
	Command []string `json:"command"`
}

// ProcessExit records a child process completing.
type ProcessExit struct {
	CommandName string `json:"command_name"`
	PID         int    `json:"pid"`
	// Status holds the exit code, or the signal number when Signaled is set.
	Status     int  `json:"status"`
	Signaled   bool `json:"signaled,omitempty"`
	Background bool `json:"background,omitempty"`
}

// SpawnFailure records a resolved command that could not be started.
type SpawnFailure struct {
	Command []string `json:"command"`
	Error   string   `json:"error"`
}

// OpenTTYLog records the name of the session's transcript file.
type OpenTTYLog struct {
	Name string `json:"name"`
}

// SessionEnd records the interpreter shutting down.
type SessionEnd struct {
	// Reason is "exit", "eof", "read-error" or "spawn-failure".
	Reason   string `json:"reason"`
	ExitCode int    `json:"exit_code"`
}
