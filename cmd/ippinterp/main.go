package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/ippinterp/runner"
	"github.com/timewinder-dev/ippinterp/vm"
)

var (
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "ippinterp",
	Short: "Interpreter for the IPPcode24 instruction language",
	Long: `ippinterp executes IPPcode24 programs given either in the XML
representation or as line-oriented source, and exits with the status
the program requested or the code of the error that stopped it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		setLogLevel(logLevel)
	},
}

func setLogLevel(name string) {
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level '%s', using 'warn'\n", name)
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Set log level (trace, debug, info, warn, error)")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(inspectCmd)
}

// exit reports err and terminates with the matching status.
func exit(err error) {
	fmt.Fprint(os.Stderr, runner.FormatError(err))
	os.Exit(runner.ExitCode(err))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// flag and argument problems
		exit(vm.Errorf(vm.KindParameter, "%v", err))
	}
}
