package runner

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/ippinterp/interp"
	"github.com/timewinder-dev/ippinterp/vm"
)

func requireKind(t *testing.T, err error, kind vm.Kind) {
	t.Helper()
	require.Error(t, err)
	var vmErr *vm.Error
	require.True(t, errors.As(err, &vmErr), "not a vm error: %v", err)
	require.Equal(t, kind, vmErr.Kind, "unexpected error: %v", err)
}

const helloXML = `<?xml version="1.0" encoding="UTF-8"?>
<program language="IPPcode24">
  <instruction order="1" opcode="DEFVAR"><arg1 type="var">GF@name</arg1></instruction>
  <instruction order="2" opcode="READ"><arg1 type="var">GF@name</arg1><arg2 type="type">string</arg2></instruction>
  <instruction order="3" opcode="WRITE"><arg1 type="string">hello\032</arg1></instruction>
  <instruction order="4" opcode="WRITE"><arg1 type="var">GF@name</arg1></instruction>
</program>
`

func testExecutor(cfg *Config, stdin string) (*Executor, *bytes.Buffer, *bytes.Buffer) {
	var out, diag bytes.Buffer
	e := NewExecutor(cfg)
	e.Stdin = strings.NewReader(stdin)
	e.Stdout = &out
	e.Stderr = &diag
	return e, &out, &diag
}

func TestExecutorXML(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "hello.xml", helloXML)

	e, out, _ := testExecutor(&Config{Source: src}, "world\n")
	require.NotEmpty(t, e.RunID)
	require.NoError(t, e.Run())
	require.Equal(t, "hello world", out.String())

	// the program may also come from stdin
	in := writeFile(t, dir, "in.txt", "there\n")
	e, out, _ = testExecutor(&Config{Input: in}, helloXML)
	require.NoError(t, e.Run())
	require.Equal(t, "hello there", out.String())
}

func TestExecutorSourceText(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "exit.IPPcode24", ".IPPcode24\nWRITE int@1\nEXIT int@12\n")
	e, out, _ := testExecutor(&Config{Source: src}, "")
	err := e.Run()
	require.Equal(t, "1", out.String())
	require.Equal(t, 12, ExitCode(err))
	require.Empty(t, FormatError(err))
}

func TestExecutorErrors(t *testing.T) {
	dir := t.TempDir()

	e, _, _ := testExecutor(&Config{}, "")
	require.Equal(t, 10, ExitCode(e.Run()))

	e, _, _ = testExecutor(&Config{Source: filepath.Join(dir, "nope.xml")}, "")
	require.Equal(t, 11, ExitCode(e.Run()))

	src := writeFile(t, dir, "ok.xml", helloXML)
	e, _, _ = testExecutor(&Config{Source: src, Input: filepath.Join(dir, "nope.txt")}, "")
	require.Equal(t, 11, ExitCode(e.Run()))

	bad := writeFile(t, dir, "bad.xml", "<program")
	e, _, _ = testExecutor(&Config{Source: bad}, "")
	err := e.Run()
	require.Equal(t, 31, ExitCode(err))
	require.Contains(t, FormatError(err), "bad.xml")

	div := writeFile(t, dir, "div.src", ".IPPcode24\nPUSHS int@10\nPUSHS int@0\nIDIVS\n")
	e, _, _ = testExecutor(&Config{Source: div}, "")
	err = e.Run()
	require.Equal(t, 57, ExitCode(err))
	require.Contains(t, FormatError(err), "division by zero")

	loop := writeFile(t, dir, "loop.src", ".IPPcode24\nLABEL l\nJUMP l\n")
	e, _, _ = testExecutor(&Config{Source: loop, MaxSteps: 50}, "")
	require.Equal(t, 99, ExitCode(e.Run()))
}

func TestExitCode(t *testing.T) {
	require.Equal(t, 0, ExitCode(nil))
	require.Equal(t, 42, ExitCode(&interp.ExitError{Code: 42}))
	require.Equal(t, 54, ExitCode(vm.Errorf(vm.KindUndefinedVar, "x")))
	require.Equal(t, 52, ExitCode(errors.Join(errors.New("ctx"), vm.Errorf(vm.KindSemantic, "dup"))))
	require.Equal(t, 99, ExitCode(errors.New("boom")))
}

func TestDumpState(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "dump.src", ".IPPcode24\nDEFVAR GF@x\nMOVE GF@x int@7\nPUSHS bool@false\nEXIT int@3\n")
	dump := filepath.Join(dir, "state.bin")

	e, _, _ := testExecutor(&Config{Source: src, DumpState: dump}, "")
	require.Equal(t, 3, ExitCode(e.Run()))

	s, err := LoadState(dump)
	require.NoError(t, err)
	require.Equal(t, interp.FrameState{{Name: "x", Value: vm.Int(7)}}, s.GF)
	require.Equal(t, []vm.Symb{vm.Bool(false)}, s.Data)
	require.Equal(t, 4, s.Steps)
	require.Contains(t, FormatStateDump(dump, s), "GF@x = int@7")

	_, err = LoadState(filepath.Join(dir, "missing.bin"))
	requireKind(t, err, vm.KindInputFile)
}

func TestExecutorTrace(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "trace.src", ".IPPcode24\nLABEL top\nWRITE int@1\n")

	var trace bytes.Buffer
	e, out, _ := testExecutor(&Config{Source: src}, "")
	e.Trace = &trace
	require.NoError(t, e.Run())
	require.Equal(t, "1", out.String())

	lines := strings.Split(strings.TrimSpace(trace.String()), "\n")
	require.Contains(t, lines[0], "Labels:")
	require.Contains(t, trace.String(), "LABEL top")
	require.True(t, strings.HasSuffix(lines[len(lines)-1], "WRITE int@1"))
}
