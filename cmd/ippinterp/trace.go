package main

import (
	"os"

	"github.com/spf13/cobra"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Run a program, printing each instruction as it executes",
	Long: `Run a program like "run" does, but first list the loaded program and
then print every executed instruction to standard error, prefixed with the
step number and the instruction order.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		exec := newExecutor(cmd)
		exec.Trace = os.Stderr
		if err := exec.Run(); err != nil {
			exit(err)
		}
	},
}

func init() {
	addRunFlags(traceCmd)
}
