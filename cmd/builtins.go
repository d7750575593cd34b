package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jobshell/jobsh/core"
)

// builtinsCmd lists the commands the interpreter runs without spawning.
var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the interpreter's builtin commands.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var builtins []string

		for name := range core.AllBuiltins {
			builtins = append(builtins, name)
		}

		sort.Strings(builtins)

		for _, v := range builtins {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
