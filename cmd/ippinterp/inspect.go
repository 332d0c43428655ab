package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/timewinder-dev/ippinterp/runner"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect DUMPFILE",
	Short: "Show a machine state written by run --dump-state",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, err := runner.LoadState(args[0])
		if err != nil {
			exit(err)
		}
		fmt.Fprint(os.Stdout, runner.FormatStateDump(args[0], s))
	},
}
