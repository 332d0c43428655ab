package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/ippinterp/runner"
)

var (
	sourceFlag    string
	inputFlag     string
	configFlag    string
	maxStepsFlag  int
	dumpStateFlag string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a program",
	Long: `Run a program. At least one of --source and --input must be given,
either as a flag or in the config file; the other is read from standard
input. Sources ending in .IPPcode24 or .src are assembled from text,
everything else is read as XML.`,
	Args: cobra.NoArgs,
	Run:  runCommand,
}

func init() {
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sourceFlag, "source", "", "Program file (XML, or text with .IPPcode24/.src extension)")
	cmd.Flags().StringVar(&inputFlag, "input", "", "File supplying READ input")
	cmd.Flags().StringVar(&configFlag, "config", "", "TOML or YAML run configuration")
	cmd.Flags().IntVar(&maxStepsFlag, "max-steps", 0, "Abort after this many instructions (0 = unlimited)")
	cmd.Flags().StringVar(&dumpStateFlag, "dump-state", "", "Write the final machine state to this file")
}

func runCommand(cmd *cobra.Command, args []string) {
	exec := newExecutor(cmd)
	if err := exec.Run(); err != nil {
		exit(err)
	}
}

// newExecutor builds the run configuration from --config and the flags,
// flags taking precedence.
func newExecutor(cmd *cobra.Command) *runner.Executor {
	cfg := &runner.Config{}
	if configFlag != "" {
		loaded, err := runner.LoadConfig(configFlag)
		if err != nil {
			exit(err)
		}
		cfg = loaded
		if cfg.LogLevel != "" && !cmd.Flags().Changed("log-level") {
			setLogLevel(cfg.LogLevel)
		}
	}
	cfg.Merge(runner.Config{
		Source:    sourceFlag,
		Input:     inputFlag,
		MaxSteps:  maxStepsFlag,
		DumpState: dumpStateFlag,
	})

	exec := runner.NewExecutor(cfg)
	log.Debug().Str("run_id", exec.RunID).Interface("config", cfg).Msg("starting run")
	return exec
}
