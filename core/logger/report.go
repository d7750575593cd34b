package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries StrCounter `json:"unknown_log_entries"`

	Session        SessionReport        `json:"session_report"`
	RunCommand     RunCommandReport     `json:"run_command_report"`
	Builtin        BuiltinReport        `json:"builtin_report"`
	UnknownCommand UnknownCommandReport `json:"unknown_command_report"`
	ProcessExit    ProcessExitReport    `json:"process_exit_report"`
	SpawnFailure   SpawnFailureReport   `json:"spawn_failure_report"`
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch {
	case le.SessionStart != nil:
		r.Session.updateStart(le.SessionStart)
	case le.SessionEnd != nil:
		r.Session.updateEnd(le.SessionEnd)
	case le.RunCommand != nil:
		r.RunCommand.update(le.RunCommand)
	case le.BuiltinRun != nil:
		r.Builtin.update(le.BuiltinRun)
	case le.UnknownCommand != nil:
		r.UnknownCommand.update(le.UnknownCommand)
	case le.ProcessExit != nil:
		r.ProcessExit.update(le.ProcessExit)
	case le.SpawnFailure != nil:
		r.SpawnFailure.update(le.SpawnFailure)
	case le.OpenTTYLog != nil:
		// Ignore
	default:
		r.InvalidEntries.Increment("empty_entry")
	}
}

type SessionReport struct {
	// Count of sessions started.
	Count int `json:"count"`
	// Input sources and their counts.
	Sources StrCounter `json:"sources"`
	// Reasons sessions ended and their counts.
	EndReasons StrCounter `json:"end_reasons"`
}

func (r *SessionReport) updateStart(s *SessionStart) {
	r.Count++
	r.Sources.Increment(s.Source)
}

func (r *SessionReport) updateEnd(s *SessionEnd) {
	r.EndReasons.Increment(s.Reason)
}

type RunCommandReport struct {
	// Name of the resolved command
	ResolvedCommandPaths StrCounter `json:"resolved_command_names"`
	// Name of the command
	CommandNames    StrCounter `json:"command_names"`
	ForegroundCount int        `json:"foreground_count"`
	BackgroundCount int        `json:"background_count"`
}

func (r *RunCommandReport) update(rc *RunCommand) {
	r.ResolvedCommandPaths.Increment(rc.ResolvedCommandPath)
	if len(rc.Command) > 0 {
		r.CommandNames.Increment(rc.Command[0])
	}

	if rc.Background {
		r.BackgroundCount++
	} else {
		r.ForegroundCount++
	}
}

type BuiltinReport struct {
	CommandNames StrCounter `json:"command_names"`
}

func (r *BuiltinReport) update(br *BuiltinRun) {
	if len(br.Command) > 0 {
		r.CommandNames.Increment(br.Command[0])
	}
}

type UnknownCommandReport struct {
	CommandNames StrCounter `json:"command_names"`
}

func (r *UnknownCommandReport) update(uc *UnknownCommand) {
	if len(uc.Command) > 0 {
		r.CommandNames.Increment(uc.Command[0])
	}
}

type ProcessExitReport struct {
	// Commands paired with how they finished.
	Dispositions    *PathCounter `json:"dispositions"`
	ForegroundCount int          `json:"foreground_count"`
	BackgroundCount int          `json:"background_count"`
}

func (r *ProcessExitReport) update(pe *ProcessExit) {
	if r.Dispositions == nil {
		r.Dispositions = NewPathCounter("command", "status")
	}

	status := fmt.Sprintf("exit %d", pe.Status)
	if pe.Signaled {
		status = fmt.Sprintf("signal %d", pe.Status)
	}
	r.Dispositions.Increment(pe.CommandName, status)

	if pe.Background {
		r.BackgroundCount++
	} else {
		r.ForegroundCount++
	}
}

type SpawnFailureReport struct {
	Errors *PathCounter `json:"errors"`
}

func (r *SpawnFailureReport) update(sf *SpawnFailure) {
	if r.Errors == nil {
		r.Errors = NewPathCounter("command", "error")
	}

	name := ""
	if len(sf.Command) > 0 {
		name = sf.Command[0]
	}
	r.Errors.Increment(name, sf.Error)
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts the number of string tuples seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// MarshalJSON implemnts custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	var out []Count
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
