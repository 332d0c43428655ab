package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/ippinterp/vm"
)

func machineFor(t *testing.T, src string) *Machine {
	t.Helper()
	p, err := vm.Assemble(strings.NewReader(".IPPcode24\n" + src))
	require.NoError(t, err)
	return New(p)
}

const stateProgram = `
DEFVAR GF@a
MOVE GF@a string@x\032y
CREATEFRAME
DEFVAR TF@b
PUSHFRAME
CREATEFRAME
PUSHS float@1.5
PUSHS nil@nil
CALL f
LABEL f
`

func TestSnapshotRoundTrip(t *testing.T) {
	m := machineFor(t, stateProgram)
	require.NoError(t, m.Run())

	s := m.Snapshot()
	require.True(t, s.Halted)
	require.Equal(t, FrameState{{Name: "a", Value: vm.String(`x\032y`)}}, s.GF)
	require.Len(t, s.LF, 1)
	require.Equal(t, FrameState{{Name: "b", Value: vm.Undef()}}, s.LF[0])
	require.True(t, s.HasTF)
	require.Empty(t, s.TF)
	require.Equal(t, []vm.Symb{vm.Float(1.5), vm.Nil()}, s.Data)
	require.Equal(t, []int{9}, s.Calls)

	var buf bytes.Buffer
	require.NoError(t, s.Serialize(&buf))
	var back State
	require.NoError(t, back.Deserialize(&buf))

	h1, err := s.Fingerprint()
	require.NoError(t, err)
	h2, err := back.Fingerprint()
	require.NoError(t, err)
	require.Equal(t, h1, h2)
	require.Equal(t, s.GF, back.GF)
	require.Equal(t, s.Calls, back.Calls)
}

func TestFingerprintDistinguishesStates(t *testing.T) {
	a := machineFor(t, "DEFVAR GF@x\nMOVE GF@x int@1\n")
	b := machineFor(t, "DEFVAR GF@x\nMOVE GF@x int@2\n")
	require.NoError(t, a.Run())
	require.NoError(t, b.Run())

	ha, err := a.Snapshot().Fingerprint()
	require.NoError(t, err)
	hb, err := b.Snapshot().Fingerprint()
	require.NoError(t, err)
	require.NotEqual(t, ha, hb)

	again := machineFor(t, "DEFVAR GF@x\nMOVE GF@x int@1\n")
	require.NoError(t, again.Run())
	hc, err := again.Snapshot().Fingerprint()
	require.NoError(t, err)
	require.Equal(t, ha, hc)
}

func TestSnapshotDeclarationOrder(t *testing.T) {
	m := machineFor(t, "DEFVAR GF@zeta\nDEFVAR GF@alpha\nMOVE GF@alpha int@1\nBREAK\n")
	var diag bytes.Buffer
	m.diag = &diag
	require.NoError(t, m.Run())

	s := m.Snapshot()
	require.Equal(t, FrameState{
		{Name: "zeta", Value: vm.Undef()},
		{Name: "alpha", Value: vm.Int(1)},
	}, s.GF)
	out := diag.String()
	require.Contains(t, out, "GF@zeta = undef")
	require.Contains(t, out, "GF@alpha = int@1")
	require.Less(t, strings.Index(out, "GF@zeta"), strings.Index(out, "GF@alpha"))
}

func TestPrettyPrint(t *testing.T) {
	m := machineFor(t, stateProgram)
	require.NoError(t, m.Run())
	out := m.Snapshot().PrettyPrint()
	require.Contains(t, out, `GF@a = string@x\032y`)
	require.Contains(t, out, "LF@b = undef")
	require.Contains(t, out, "nil@nil float@1.5")
	require.Contains(t, out, "[9]")
	require.Contains(t, out, "halted after 10 steps")
}
