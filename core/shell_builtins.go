package core

import (
	"fmt"
	"os"
)

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]ShellBuiltin)

type ShellBuiltin interface {
	Main(s *Shell, args []string) int
}

type ShellBuiltinFunc func(s *Shell, args []string) int

func (f ShellBuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// Exit ends the whole session with a success status. Jobs remaining on the
// line are skipped and unreaped background children are abandoned.
func Exit(s *Shell, args []string) int {
	s.requestExit(0)
	return 0
}

// Cd changes the interpreter's working directory, which later children
// inherit. Without an operand it does nothing; operands past the first are
// ignored.
func Cd(s *Shell, args []string) int {
	if len(args) < 2 {
		return 0
	}

	if err := os.Chdir(args[1]); err != nil {
		fmt.Fprintf(s.vio.Stdout(), "jobsh: cd: %s: No such file or directory\n", args[1])
		return 1
	}
	return 0
}

func init() {
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
	AllBuiltins["exit"] = ShellBuiltinFunc(Exit)
}
