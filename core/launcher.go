package core

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/jobshell/jobsh/core/logger"
	"github.com/jobshell/jobsh/core/ttylog"
)

// NotFoundStatus is the disposition reported for a foreground command that
// fails path resolution, following the usual shell convention.
const NotFoundStatus = 127

// ExitStatus summarizes how a child process finished.
type ExitStatus struct {
	// Code is the exit code, or the signal number when Signaled is set.
	Code     int
	Signaled bool
	// Unknown marks a wait outcome that was neither a clean exit nor a
	// signal death.
	Unknown bool
}

func decodeExitStatus(state *os.ProcessState) ExitStatus {
	if state == nil {
		return ExitStatus{Unknown: true}
	}

	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok {
		return ExitStatus{Unknown: true}
	}

	switch {
	case ws.Exited():
		return ExitStatus{Code: ws.ExitStatus()}
	case ws.Signaled():
		return ExitStatus{Code: int(ws.Signal()), Signaled: true}
	default:
		return ExitStatus{Unknown: true}
	}
}

// Launcher resolves command names and spawns them as real OS processes.
type Launcher struct {
	// ChildStdin is handed to foreground children so they read the same
	// input source as the interpreter. When nil they read from the null
	// device instead.
	ChildStdin *os.File
	Reaper     *Reaper
	Log        *logger.SessionLogger
}

// Run dispatches one job's argument vector. Foreground jobs block until the
// child exits and report its disposition on stdout. A non-nil error means a
// resolved command could not be started; the caller treats it as fatal.
func (l *Launcher) Run(argv []string, foreground bool, vio ttylog.VIO) error {
	name := argv[0]

	path, err := exec.LookPath(name)
	if err != nil {
		fmt.Fprintf(vio.Stderr(), "jobsh: %s: command not found\n", name)
		l.Log.Record(&logger.LogEntry{UnknownCommand: &logger.UnknownCommand{
			Command: argv,
		}})

		// No child exists to wait on, so the disposition is synthesized.
		if foreground {
			reportExit(vio.Stdout(), name, ExitStatus{Code: NotFoundStatus})
		}
		return nil
	}

	// Run the resolved path under the name the command was typed as.
	cmd := exec.Command(path)
	cmd.Args = argv
	cmd.Stdout = vio.Stdout()
	cmd.Stderr = vio.Stderr()

	l.Log.Record(&logger.LogEntry{RunCommand: &logger.RunCommand{
		Command:             argv,
		ResolvedCommandPath: path,
		Background:          !foreground,
	}})

	if foreground {
		cmd.Stdin = l.ChildStdin
		if err := cmd.Start(); err != nil {
			return l.spawnFailure(vio, argv, err)
		}
		_ = cmd.Wait()

		status := decodeExitStatus(cmd.ProcessState)
		reportExit(vio.Stdout(), name, status)
		l.Log.Record(&logger.LogEntry{ProcessExit: &logger.ProcessExit{
			CommandName: name,
			PID:         cmd.Process.Pid,
			Status:      status.Code,
			Signaled:    status.Signaled,
		}})
		return nil
	}

	// Detached children must not compete for the interpreter's input, and
	// they get their own process group so terminal interrupts pass them by.
	devNull, err := os.Open(os.DevNull)
	if err != nil {
		return l.spawnFailure(vio, argv, err)
	}
	cmd.Stdin = devNull
	cmd.SysProcAttr = &unix.SysProcAttr{Setpgid: true}

	err = cmd.Start()
	devNull.Close()
	if err != nil {
		return l.spawnFailure(vio, argv, err)
	}

	l.Reaper.Track(name, cmd)
	return nil
}

func (l *Launcher) spawnFailure(vio ttylog.VIO, argv []string, err error) error {
	fmt.Fprintf(vio.Stderr(), "jobsh: failed to start %s: %v\n", argv[0], err)
	l.Log.Record(&logger.LogEntry{SpawnFailure: &logger.SpawnFailure{
		Command: argv,
		Error:   err.Error(),
	}})
	return err
}

// reportExit prints the one-line disposition of a foreground child.
func reportExit(w io.Writer, name string, status ExitStatus) {
	switch {
	case status.Unknown:
		fmt.Fprintln(w, "Something unexpected happened.")
	case status.Signaled:
		fmt.Fprintf(w, "[%s died with status %d]\n", name, status.Code)
	default:
		fmt.Fprintf(w, "[%s exited with status %d]\n", name, status.Code)
	}
}
