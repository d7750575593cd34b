package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/jobshell/jobsh/core"
	"github.com/jobshell/jobsh/core/config"
	"github.com/jobshell/jobsh/core/logger"
	"github.com/jobshell/jobsh/core/ttylog"
)

var cfgPath string

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// rootCmd runs the interpreter when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "jobsh [script]",
	Short: "A job-sequencing command interpreter",
	Long: `jobsh reads command lines and runs each ';'-separated command in the
foreground and each '&'-terminated command detached in the background.
Finished background commands are reported once per input line.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runInterpreter(args))
	},
}

func runInterpreter(args []string) int {
	source := "pipe"
	interactive := false

	switch {
	case len(args) == 1:
		// The script replaces stdin at the descriptor level so spawned
		// children read from it exactly like the interpreter does.
		script := args[0]
		fd, err := os.Open(script)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open input file %s\n", script)
			return core.ExitOpenInput
		}
		defer fd.Close()

		if err := unix.Dup3(int(fd.Fd()), 0, 0); err != nil {
			fmt.Fprintln(os.Stderr, "Failed to set new file as input")
			return core.ExitSubstituteInput
		}
		source = script

	case term.IsTerminal(0):
		source = "terminal"
		interactive = true
	}

	configuration, err := loadConfig()
	if err != nil {
		// The interpreter still works without an initialized directory;
		// session artifacts go to an in-memory filesystem.
		configuration = config.Default()
	}

	eventLog := logger.NewNopLogRecorder()
	if appLog, err := configuration.OpenAppLog(); err == nil {
		defer appLog.Close()
		eventLog = logger.NewJsonLinesLogRecorder(appLog)
	}
	sessionLog := eventLog.NewSession()

	sessionLog.Record(&logger.LogEntry{SessionStart: &logger.SessionStart{
		Source:      source,
		Interactive: interactive,
	}})

	var vio ttylog.VIO = ttylog.NewVIOAdapter(os.Stdin, os.Stdout, os.Stderr)
	if configuration.RecordSessions {
		name := fmt.Sprintf("%s.log", time.Now().Format(time.RFC3339))
		if transcript, err := configuration.CreateSessionLog(name); err == nil {
			defer transcript.Close()
			vio = ttylog.NewRecorder(vio, ttylog.NewUMLLogSink(transcript))
			sessionLog.Record(&logger.LogEntry{OpenTTYLog: &logger.OpenTTYLog{Name: name}})
		}
	}

	shell, err := core.NewShell(configuration, vio, sessionLog, interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to start the interpreter: %v\n", err)
		return core.ExitReadFailure
	}
	defer shell.Close()

	// Foreground children read the same descriptor as the interpreter,
	// including a substituted script.
	shell.Launcher.ChildStdin = os.Stdin

	return shell.Run()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
}
