package core

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/jobshell/jobsh/core/config"
	"github.com/jobshell/jobsh/core/logger"
	"github.com/jobshell/jobsh/core/ttylog"
)

// Interpreter exit codes. Startup, read, and spawn failures are distinct so
// callers can tell them apart.
const (
	ExitOK = iota
	ExitOpenInput
	ExitSubstituteInput
	ExitReadFailure
	ExitSpawnFailure
)

var promptColors = map[string]color.Attribute{
	"black":   color.FgBlack,
	"red":     color.FgRed,
	"green":   color.FgGreen,
	"yellow":  color.FgYellow,
	"blue":    color.FgBlue,
	"magenta": color.FgMagenta,
	"cyan":    color.FgCyan,
	"white":   color.FgWhite,
}

// Shell drives the read loop: prompt, read, normalize, split, dispatch each
// job, then sweep for finished background children.
type Shell struct {
	Launcher *Launcher
	Reaper   *Reaper

	config  *config.Configuration
	vio     ttylog.VIO
	log     *logger.SessionLogger
	reader  lineReader
	toClose listCloser

	exiting  bool
	exitCode int
}

// NewShell wires an interpreter over the given streams. Interactive sessions
// read through readline with history and line editing; everything else reads
// plain buffered lines with the prompt printed before each one.
func NewShell(configuration *config.Configuration, vio ttylog.VIO, log *logger.SessionLogger, interactive bool) (*Shell, error) {
	shell := &Shell{
		config: configuration,
		vio:    vio,
		log:    log,
	}
	shell.Reaper = NewReaper(log)
	shell.Launcher = &Launcher{
		Reaper: shell.Reaper,
		Log:    log,
	}

	if !interactive {
		shell.reader = &plainLineReader{
			prompt: shell.Prompt,
			out:    vio.Stdout(),
			in:     bufio.NewReader(vio.Stdin()),
		}
		return shell, nil
	}

	cfg := &readline.Config{
		Stdin:  readline.NewCancelableStdin(vio.Stdin()),
		Stdout: vio.Stdout(),
		Stderr: vio.Stderr(),
		FuncGetWidth: func() int {
			if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
				return width
			}
			return 80
		},
		FuncIsTerminal: func() bool {
			return true
		},
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	shell.reader = &readlineReader{rl: rl, prompt: shell.Prompt}
	shell.toClose = append(shell.toClose, rl)

	return shell, nil
}

// Prompt renders the configured prompt, colored when a prompt color is set.
func (s *Shell) Prompt() string {
	if attr, ok := promptColors[s.config.PromptColor]; ok {
		return color.New(attr).Sprint(s.config.Prompt)
	}

	return s.config.Prompt
}

// Run reads and executes lines until the input ends, the exit builtin runs,
// or a fatal failure. It returns the interpreter's exit code.
func (s *Shell) Run() int {
	for {
		line, err := s.reader.ReadLine()

		switch {
		case err == io.EOF:
			fmt.Fprintln(s.vio.Stdout(), "\nShutting down...")
			s.log.Record(&logger.LogEntry{SessionEnd: &logger.SessionEnd{
				Reason:   "eof",
				ExitCode: ExitOK,
			}})
			return ExitOK

		case err == readline.ErrInterrupt:
			continue

		case err != nil:
			fmt.Fprintf(s.vio.Stderr(), "Unable to read command line: %v\n", err)
			s.log.Record(&logger.LogEntry{SessionEnd: &logger.SessionEnd{
				Reason:   "read-error",
				ExitCode: ExitReadFailure,
			}})
			return ExitReadFailure
		}

		for _, job := range SplitJobs(Normalize(line)) {
			argv := Tokenize(job.Text, s.config.MaxArgs)
			if len(argv) == 0 {
				continue
			}

			if builtin, ok := AllBuiltins[argv[0]]; ok {
				s.log.Record(&logger.LogEntry{BuiltinRun: &logger.BuiltinRun{
					Command: argv,
				}})
				builtin.Main(s, argv)
				if s.exiting {
					// Skip remaining jobs and the sweep; background
					// children are abandoned.
					s.log.Record(&logger.LogEntry{SessionEnd: &logger.SessionEnd{
						Reason:   "exit",
						ExitCode: s.exitCode,
					}})
					return s.exitCode
				}
				continue
			}

			if err := s.Launcher.Run(argv, job.Foreground, s.vio); err != nil {
				s.log.Record(&logger.LogEntry{SessionEnd: &logger.SessionEnd{
					Reason:   "spawn-failure",
					ExitCode: ExitSpawnFailure,
				}})
				return ExitSpawnFailure
			}
		}

		s.Reaper.Sweep(s.vio.Stdout())
	}
}

func (s *Shell) requestExit(code int) {
	s.exiting = true
	s.exitCode = code
}

func (s *Shell) Close() error {
	return s.toClose.Close()
}

type lineReader interface {
	ReadLine() (string, error)
}

type readlineReader struct {
	rl     *readline.Instance
	prompt func() string
}

func (r *readlineReader) ReadLine() (string, error) {
	r.rl.SetPrompt(r.prompt())
	return r.rl.Readline()
}

// plainLineReader reads newline-terminated lines from a byte stream, echoing
// the prompt before each read the way the interpreter does on a terminal.
type plainLineReader struct {
	prompt func() string
	out    io.Writer
	in     *bufio.Reader
}

func (p *plainLineReader) ReadLine() (string, error) {
	fmt.Fprint(p.out, p.prompt())

	line, err := p.in.ReadString('\n')
	if len(line) > 0 {
		// A final line without a newline still executes; the next read
		// reports the stream's end.
		return strings.TrimSuffix(line, "\n"), nil
	}

	return "", err
}

type listCloser []io.Closer

func (lc listCloser) Close() error {
	var lastErr error
	for _, v := range lc {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
