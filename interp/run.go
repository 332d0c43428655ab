package interp

import (
	"bufio"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/ippinterp/vm"
)

// ExitError reports that the program ended through EXIT.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("program exited with code %d", e.Code)
}

// Machine is one run of a program: its frames, stacks and instruction
// pointer.
type Machine struct {
	Program *vm.Program
	Frames  *FrameManager
	Data    *DataStack
	Calls   *CallStack

	pc       int
	steps    int
	exitCode int

	in       *Input
	out      *bufio.Writer
	diag     io.Writer
	maxSteps int
	hook     StepHook
}

// StepHook is called before each instruction executes.
type StepHook func(m *Machine, inst vm.Instruction)

type Option func(*Machine)

func WithInput(r io.Reader) Option {
	return func(m *Machine) {
		m.in = NewInput(r)
	}
}

func WithOutput(w io.Writer) Option {
	return func(m *Machine) {
		m.out = bufio.NewWriter(w)
	}
}

// WithDiagnostics sets where DPRINT and BREAK write.
func WithDiagnostics(w io.Writer) Option {
	return func(m *Machine) {
		m.diag = w
	}
}

// WithMaxSteps bounds the number of executed instructions. A program that
// ends after exactly n instructions succeeds. Zero means no limit.
func WithMaxSteps(n int) Option {
	return func(m *Machine) {
		m.maxSteps = n
	}
}

func WithStepHook(h StepHook) Option {
	return func(m *Machine) {
		m.hook = h
	}
}

func New(p *vm.Program, opts ...Option) *Machine {
	m := &Machine{
		Program: p,
		Frames:  NewFrameManager(),
		Data:    &DataStack{},
		Calls:   &CallStack{},
		out:     bufio.NewWriter(io.Discard),
		diag:    io.Discard,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Machine) PC() int {
	return m.pc
}

func (m *Machine) Steps() int {
	return m.steps
}

// Run executes until the program falls off its end, executes EXIT, or
// fails. EXIT is reported as *ExitError. Pending output is flushed in every
// case.
func (m *Machine) Run() (err error) {
	defer func() {
		if ferr := m.out.Flush(); ferr != nil && err == nil {
			err = vm.Errorf(vm.KindOutputFile, "flushing output: %v", ferr)
		}
	}()
	for {
		if m.maxSteps > 0 && m.steps >= m.maxSteps && m.pc < m.Program.Len() {
			return vm.Errorf(vm.KindInternal, "step limit of %d exceeded", m.maxSteps)
		}
		res, err := Step(m)
		if err != nil {
			log.Debug().Int("pc", m.pc).Int("steps", m.steps).Err(err).Msg("Run: step failed")
			return err
		}
		switch res {
		case EndStep:
			log.Debug().Int("steps", m.steps).Msg("Run: end of program")
			return nil
		case ExitStep:
			log.Debug().Int("steps", m.steps).Int("code", m.exitCode).Msg("Run: exit")
			return &ExitError{Code: m.exitCode}
		}
	}
}

func (m *Machine) write(text string) error {
	if _, err := m.out.WriteString(text); err != nil {
		return vm.Errorf(vm.KindOutputFile, "writing output: %v", err)
	}
	return nil
}

func (m *Machine) writeDiag(text string) error {
	if _, err := io.WriteString(m.diag, text); err != nil {
		return vm.Errorf(vm.KindOutputFile, "writing diagnostics: %v", err)
	}
	return nil
}
