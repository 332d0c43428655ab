package vm

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Scope names one of the three frames a variable can live in.
type Scope uint8

const (
	ScopeNone Scope = iota
	ScopeGF
	ScopeLF
	ScopeTF
)

func (s Scope) String() string {
	switch s {
	case ScopeGF:
		return "GF"
	case ScopeLF:
		return "LF"
	case ScopeTF:
		return "TF"
	}
	return "??"
}

func ParseScope(s string) (Scope, bool) {
	switch s {
	case "GF":
		return ScopeGF, true
	case "LF":
		return ScopeLF, true
	case "TF":
		return ScopeTF, true
	}
	return ScopeNone, false
}

type VarRef struct {
	Scope Scope
	Name  string
}

func (v VarRef) String() string {
	return v.Scope.String() + "@" + v.Name
}

// ParseVarRef parses the FRAME@name form.
func ParseVarRef(text string) (VarRef, bool) {
	frame, name, ok := strings.Cut(text, "@")
	if !ok || !validIdent(name) {
		return VarRef{}, false
	}
	scope, ok := ParseScope(frame)
	if !ok {
		return VarRef{}, false
	}
	return VarRef{Scope: scope, Name: name}, true
}

const identSpecial = "_-$&%*!?"

// validIdent reports whether s is a valid variable or label name: a letter or
// special character followed by letters, digits or special characters.
func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case strings.ContainsRune(identSpecial, r):
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Operand is one instruction argument. A symb-kind operand holds either a
// literal in Symb or a variable reference in Var.
type Operand struct {
	Kind  OperandKind
	Var   VarRef
	Symb  Symb
	Label string
	Type  Type
}

func VarOperand(ref VarRef) Operand {
	return Operand{Kind: OperandVar, Var: ref}
}

func SymbOperand(s Symb) Operand {
	return Operand{Kind: OperandSymb, Symb: s}
}

// SymbVarOperand is a symb position filled by a variable.
func SymbVarOperand(ref VarRef) Operand {
	return Operand{Kind: OperandSymb, Var: ref}
}

func LabelOperand(name string) Operand {
	return Operand{Kind: OperandLabel, Label: name}
}

func TypeOperand(t Type) Operand {
	return Operand{Kind: OperandType, Type: t}
}

func (o Operand) IsVar() bool {
	return o.Var.Scope != ScopeNone
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandVar:
		return o.Var.String()
	case OperandSymb:
		if o.IsVar() {
			return o.Var.String()
		}
		return o.Symb.String()
	case OperandLabel:
		return o.Label
	case OperandType:
		return o.Type.String()
	}
	return "?"
}

type Instruction struct {
	Opcode Opcode
	Order  int
	Args   []Operand
}

func (in Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(in.Opcode.String())
	for _, a := range in.Args {
		sb.WriteByte(' ')
		sb.WriteString(a.String())
	}
	return sb.String()
}

// CheckShape validates the argument list against the opcode signature.
func (in Instruction) CheckShape() error {
	sig := in.Opcode.Signature()
	if sig == nil {
		return Errorf(KindXMLStructure, "order %d: unknown opcode %s", in.Order, in.Opcode)
	}
	if len(in.Args) != len(sig) {
		return Errorf(KindXMLStructure, "order %d: %s takes %d operands, got %d", in.Order, in.Opcode, len(sig), len(in.Args))
	}
	for i, want := range sig {
		if in.Args[i].Kind != want {
			return Errorf(KindXMLStructure, "order %d: %s operand %d must be %s, got %s", in.Order, in.Opcode, i+1, want, in.Args[i].Kind)
		}
	}
	return nil
}

// Program is an order-sorted instruction sequence with its label table.
type Program struct {
	Instructions []Instruction
	Labels       map[string]int
}

// NewProgram sorts instructions by order, checks every operand list against
// its opcode signature and indexes every LABEL. Orders must be positive and
// unique; label names must be unique.
func NewProgram(instrs []Instruction) (*Program, error) {
	code := make([]Instruction, len(instrs))
	copy(code, instrs)
	sort.SliceStable(code, func(i, j int) bool { return code[i].Order < code[j].Order })

	labels := make(map[string]int)
	for i, in := range code {
		if in.Order <= 0 {
			return nil, Errorf(KindXMLStructure, "instruction order must be positive, got %d", in.Order)
		}
		if i > 0 && code[i-1].Order == in.Order {
			return nil, Errorf(KindXMLStructure, "duplicate instruction order %d", in.Order)
		}
		if err := in.CheckShape(); err != nil {
			return nil, err
		}
		if in.Opcode != LABEL {
			continue
		}
		name := in.Args[0].Label
		if _, ok := labels[name]; ok {
			return nil, Errorf(KindSemantic, "label %q defined more than once", name)
		}
		labels[name] = i
	}
	return &Program{Instructions: code, Labels: labels}, nil
}

// Resolve returns the index of the LABEL instruction named name.
func (p *Program) Resolve(name string) (int, error) {
	if idx, ok := p.Labels[name]; ok {
		return idx, nil
	}
	return 0, Errorf(KindSemantic, "undefined label %q", name)
}

func (p *Program) Len() int {
	return len(p.Instructions)
}

func (p *Program) DebugPrint(w io.Writer) {
	fmt.Fprintf(w, "Labels: %v\n", p.Labels)
	for i, in := range p.Instructions {
		fmt.Fprintf(w, "  %03d [%d]: %s\n", i, in.Order, in)
	}
}
