package core

import (
	"strings"
	"unicode"
)

const (
	foregroundTerminator = ';'
	backgroundTerminator = '&'
)

// Job is a single command pulled out of an input line along with how it
// should be run. Text is a view into the normalized line, not a copy.
type Job struct {
	Text       string
	Foreground bool
}

// Normalize prepares a raw input line for job splitting. It removes trailing
// whitespace and appends a foreground terminator unless the line already ends
// with one. Blank lines normalize to the empty string and yield no jobs.
func Normalize(line string) string {
	line = strings.TrimRightFunc(line, unicode.IsSpace)
	if line == "" {
		return ""
	}

	switch line[len(line)-1] {
	case foregroundTerminator, backgroundTerminator:
		return line
	default:
		return line + string(foregroundTerminator)
	}
}

// SplitJobs breaks a normalized line into an ordered list of jobs. Every
// terminator ends one job: ';' marks it foreground, '&' background. Text
// after the final terminator is dropped, Normalize guarantees there is none.
func SplitJobs(line string) []Job {
	var jobs []Job

	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case foregroundTerminator, backgroundTerminator:
			jobs = append(jobs, Job{
				Text:       line[start:i],
				Foreground: line[i] == foregroundTerminator,
			})
			start = i + 1
		}
	}

	return jobs
}

// Tokenize splits a job's text into an argument vector on runs of
// whitespace. At most max arguments are kept; any beyond that are silently
// dropped. Empty text yields an empty vector.
func Tokenize(text string, max int) []string {
	args := strings.Fields(text)
	if max >= 0 && len(args) > max {
		args = args[:max]
	}
	return args
}
