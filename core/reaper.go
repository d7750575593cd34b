package core

import (
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/jobshell/jobsh/core/logger"
)

// Completion is the collected disposition of one background child.
type Completion struct {
	PID    int
	Name   string
	Status ExitStatus
}

// Reaper is an explicit registry of detached children. Track starts a
// collector goroutine that performs the child's one and only Wait; the
// result parks in the registry until the next Sweep drains it.
type Reaper struct {
	log *logger.SessionLogger

	mu        sync.Mutex
	live      int
	completed []Completion
}

func NewReaper(log *logger.SessionLogger) *Reaper {
	return &Reaper{log: log}
}

// Track takes over reaping for a started background command.
func (r *Reaper) Track(name string, cmd *exec.Cmd) {
	r.mu.Lock()
	r.live++
	r.mu.Unlock()

	pid := cmd.Process.Pid

	go func() {
		_ = cmd.Wait()
		status := decodeExitStatus(cmd.ProcessState)

		r.log.Record(&logger.LogEntry{ProcessExit: &logger.ProcessExit{
			CommandName: name,
			PID:         pid,
			Status:      status.Code,
			Signaled:    status.Signaled,
			Background:  true,
		}})

		r.mu.Lock()
		r.live--
		r.completed = append(r.completed, Completion{PID: pid, Name: name, Status: status})
		r.mu.Unlock()
	}()
}

// Sweep reports every completion collected so far without blocking on
// children that are still running. A completion landing mid-sweep is picked
// up by the next one.
func (r *Reaper) Sweep(w io.Writer) int {
	r.mu.Lock()
	done := r.completed
	r.completed = nil
	r.mu.Unlock()

	for _, c := range done {
		if c.Status.Unknown {
			fmt.Fprintln(w, "Something unexpected happened.")
			continue
		}

		// The same sentence covers exit codes and signal numbers.
		fmt.Fprintf(w, "[background process %d exited with status %d]\n", c.PID, c.Status.Code)
	}

	return len(done)
}

// Live reports how many tracked children have not finished yet.
func (r *Reaper) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}
