package main

import (
	"bufio"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/timewinder-dev/ippinterp/vm"
)

var parseCmd = &cobra.Command{
	Use:   "parse [FILE]",
	Short: "Translate IPPcode24 source text to the XML representation",
	Args:  cobra.MaximumNArgs(1),
	Run:   parseCommand,
}

func parseCommand(cmd *cobra.Command, args []string) {
	var r io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			exit(vm.Errorf(vm.KindInputFile, "%v", err))
		}
		defer f.Close()
		r = f
	}
	p, err := vm.Assemble(r)
	if err != nil {
		exit(err)
	}
	w := bufio.NewWriter(os.Stdout)
	if err := vm.WriteXML(w, p); err != nil {
		exit(err)
	}
	if err := w.Flush(); err != nil {
		exit(vm.Errorf(vm.KindOutputFile, "%v", err))
	}
}
