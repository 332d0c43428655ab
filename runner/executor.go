package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/ippinterp/interp"
	"github.com/timewinder-dev/ippinterp/vm"
)

// Executor wires a Config to files and streams and runs the program.
type Executor struct {
	Config *Config
	RunID  string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Trace, when set, receives the loaded program and one line per
	// executed instruction.
	Trace io.Writer

	log zerolog.Logger
}

func NewExecutor(cfg *Config) *Executor {
	id := uuid.NewString()
	return &Executor{
		Config: cfg,
		RunID:  id,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		log:    log.With().Str("run_id", id).Logger(),
	}
}

// IsSourceText reports whether path names the line-oriented source form
// rather than XML.
func IsSourceText(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ippcode24", ".src":
		return true
	}
	return false
}

func (e *Executor) open(path string) (io.ReadCloser, error) {
	if isStdin(path) {
		return io.NopCloser(e.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, vm.Errorf(vm.KindInputFile, "%v", err)
	}
	return f, nil
}

// LoadProgram reads and validates the configured source.
func (e *Executor) LoadProgram() (*vm.Program, error) {
	r, err := e.open(e.Config.Source)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if IsSourceText(e.Config.Source) {
		return vm.Assemble(r)
	}
	return vm.LoadXML(r)
}

// Run loads the program, executes it and optionally dumps the final state.
// A program-requested EXIT comes back as *interp.ExitError.
func (e *Executor) Run() error {
	if err := e.Config.Validate(); err != nil {
		return err
	}
	p, err := e.LoadProgram()
	if err != nil {
		return fmt.Errorf("loading %s: %w", displayName(e.Config.Source), err)
	}
	e.log.Debug().
		Str("source", displayName(e.Config.Source)).
		Int("instructions", p.Len()).
		Int("labels", len(p.Labels)).
		Msg("program loaded")

	in, err := e.open(e.Config.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	opts := []interp.Option{
		interp.WithInput(in),
		interp.WithOutput(e.Stdout),
		interp.WithDiagnostics(e.Stderr),
		interp.WithMaxSteps(e.Config.MaxSteps),
	}
	if e.Trace != nil {
		p.DebugPrint(e.Trace)
		opts = append(opts, interp.WithStepHook(e.traceStep))
	}
	m := interp.New(p, opts...)
	runErr := m.Run()
	e.log.Debug().Int("steps", m.Steps()).AnErr("result", runErr).Msg("run finished")

	var exitErr *interp.ExitError
	if e.Config.DumpState != "" && (runErr == nil || errors.As(runErr, &exitErr)) {
		if err := dumpState(e.Config.DumpState, m.Snapshot()); err != nil {
			return err
		}
	}
	return runErr
}

func (e *Executor) traceStep(m *interp.Machine, inst vm.Instruction) {
	fmt.Fprintf(e.Trace, "%s %s\n", color.Gray.Sprintf("[%5d] %4d:", m.Steps(), inst.Order), inst)
}

func dumpState(path string, s *interp.State) error {
	f, err := os.Create(path)
	if err != nil {
		return vm.Errorf(vm.KindOutputFile, "state dump: %v", err)
	}
	if err := s.Serialize(f); err != nil {
		f.Close()
		return vm.Errorf(vm.KindOutputFile, "state dump: %v", err)
	}
	if err := f.Close(); err != nil {
		return vm.Errorf(vm.KindOutputFile, "state dump: %v", err)
	}
	return nil
}

// LoadState reads a state dump written by a run with DumpState set.
func LoadState(path string) (*interp.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, vm.Errorf(vm.KindInputFile, "%v", err)
	}
	defer f.Close()
	var s interp.State
	if err := s.Deserialize(f); err != nil {
		return nil, vm.Errorf(vm.KindInputFile, "decoding %s: %v", path, err)
	}
	return &s, nil
}

func displayName(path string) string {
	if isStdin(path) {
		return "<stdin>"
	}
	return path
}

// ExitCode maps the result of a run to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *interp.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var vmErr *vm.Error
	if errors.As(err, &vmErr) {
		return vmErr.Kind.ExitCode()
	}
	return vm.KindInternal.ExitCode()
}
