package interp

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgryski/go-farm"
	"github.com/gookit/color"
	"github.com/shamaton/msgpack/v2"
	"github.com/timewinder-dev/ippinterp/vm"
)

type VarState struct {
	Name  string
	Value vm.Symb
}

// FrameState is a frame's variables in declaration order.
type FrameState []VarState

// State is a detached snapshot of a machine: everything needed to inspect
// or fingerprint it.
type State struct {
	PC     int
	Order  int
	Steps  int
	GF     FrameState
	LF     []FrameState
	TF     FrameState
	HasTF  bool
	Data   []vm.Symb
	Calls  []int
	Halted bool
}

func snapshotFrame(f *Frame) FrameState {
	var out FrameState
	for _, name := range f.Names() {
		v, _ := f.Get(name)
		out = append(out, VarState{Name: name, Value: v.Value()})
	}
	return out
}

// Snapshot captures the current machine state.
func (m *Machine) Snapshot() *State {
	s := &State{
		PC:    m.pc,
		Steps: m.steps,
		GF:    snapshotFrame(m.Frames.Global()),
	}
	if m.Data.Len() > 0 {
		s.Data = append(s.Data, m.Data.Items()...)
	}
	if m.Calls.Len() > 0 {
		s.Calls = append(s.Calls, m.Calls.Items()...)
	}
	if m.pc < m.Program.Len() {
		s.Order = m.Program.Instructions[m.pc].Order
	} else {
		s.Halted = true
	}
	for _, f := range m.Frames.Locals() {
		s.LF = append(s.LF, snapshotFrame(f))
	}
	if tf := m.Frames.Temp(); tf != nil {
		s.HasTF = true
		s.TF = snapshotFrame(tf)
	}
	return s
}

func (s *State) Serialize(w io.Writer) error {
	return msgpack.MarshalWrite(w, s)
}

func (s *State) Deserialize(r io.Reader) error {
	return msgpack.UnmarshalRead(r, s)
}

// Fingerprint hashes the serialized state. Runs that declare and assign the
// same variables in the same order hash equally.
func (s *State) Fingerprint() (uint64, error) {
	var buf bytes.Buffer
	if err := s.Serialize(&buf); err != nil {
		return 0, err
	}
	return farm.Hash64(buf.Bytes()), nil
}

func formatFrame(b *strings.Builder, scope string, f FrameState) {
	if len(f) == 0 {
		b.WriteString("    (empty)\n")
		return
	}
	for _, v := range f {
		fmt.Fprintf(b, "    %s@%s = %s\n", scope, v.Name, v.Value)
	}
}

// PrettyPrint renders the state for BREAK and for inspecting dumps.
func (s *State) PrettyPrint() string {
	var b strings.Builder
	b.WriteString(color.Gray.Sprint("----------------------------------------"))
	b.WriteString("\n")
	if s.Halted {
		fmt.Fprintf(&b, "%s halted after %d steps\n", color.Bold.Sprint("Position:"), s.Steps)
	} else {
		fmt.Fprintf(&b, "%s order %d (index %d), %d steps\n", color.Bold.Sprint("Position:"), s.Order, s.PC, s.Steps)
	}

	b.WriteString(color.Cyan.Sprint("GF:"))
	b.WriteString("\n")
	formatFrame(&b, "GF", s.GF)

	b.WriteString(color.Cyan.Sprint("TF:"))
	b.WriteString("\n")
	if s.HasTF {
		formatFrame(&b, "TF", s.TF)
	} else {
		b.WriteString("    (undefined)\n")
	}

	fmt.Fprintf(&b, "%s %d\n", color.Cyan.Sprint("LF depth:"), len(s.LF))
	for i := len(s.LF) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "  [%d]\n", i)
		formatFrame(&b, "LF", s.LF[i])
	}

	fmt.Fprintf(&b, "%s", color.Cyan.Sprint("Data stack:"))
	if len(s.Data) == 0 {
		b.WriteString(" (empty)")
	}
	for i := len(s.Data) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, " %s", s.Data[i])
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s %v\n", color.Cyan.Sprint("Call stack:"), s.Calls)

	if h, err := s.Fingerprint(); err == nil {
		fmt.Fprintf(&b, "%s %016x\n", color.Bold.Sprint("Hash:"), h)
	}
	b.WriteString(color.Gray.Sprint("----------------------------------------"))
	b.WriteString("\n")
	return b.String()
}
