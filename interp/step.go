package interp

import (
	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/ippinterp/vm"
)

type StepResult int

const (
	ContinueStep StepResult = iota
	JumpStep                // pc already points at the target
	ExitStep                // EXIT executed
	EndStep                 // pc is past the last instruction
)

func (r StepResult) String() string {
	switch r {
	case ContinueStep:
		return "continue"
	case JumpStep:
		return "jump"
	case ExitStep:
		return "exit"
	case EndStep:
		return "end"
	}
	return "?"
}

// value resolves a symb operand. The result may be undefined.
func (m *Machine) value(op vm.Operand) (vm.Symb, error) {
	if op.IsVar() {
		return m.Frames.Read(op.Var)
	}
	return op.Symb, nil
}

// defined resolves a symb operand and rejects an undefined value.
func (m *Machine) defined(op vm.Operand) (vm.Symb, error) {
	v, err := m.value(op)
	if err != nil {
		return vm.Symb{}, err
	}
	if v.IsUndef() {
		return vm.Symb{}, vm.Errorf(vm.KindMissingValue, "%s has no value", op)
	}
	return v, nil
}

// operand resolves a symb operand for arithmetic and boolean opcodes: a
// variable holding nil counts as missing.
func (m *Machine) operand(op vm.Operand) (vm.Symb, error) {
	v, err := m.defined(op)
	if err != nil {
		return vm.Symb{}, err
	}
	if op.IsVar() && v.IsNil() {
		return vm.Symb{}, vm.Errorf(vm.KindMissingValue, "%s is nil", op)
	}
	return v, nil
}

func (m *Machine) jump(label string) (StepResult, error) {
	idx, err := m.Program.Resolve(label)
	if err != nil {
		return ContinueStep, err
	}
	m.pc = idx
	return JumpStep, nil
}

type binaryOp func(a, b vm.Symb) (vm.Symb, error)
type unaryOp func(a vm.Symb) (vm.Symb, error)

var binaryOps = map[vm.Opcode]binaryOp{
	vm.ADD:      vm.Add,
	vm.SUB:      vm.Sub,
	vm.MUL:      vm.Mul,
	vm.DIV:      vm.Div,
	vm.IDIV:     vm.IDiv,
	vm.LT:       vm.Lt,
	vm.GT:       vm.Gt,
	vm.EQ:       vm.Eq,
	vm.AND:      vm.And,
	vm.OR:       vm.Or,
	vm.STRI2INT: vm.Stri2Int,
	vm.CONCAT:   vm.Concat,
	vm.GETCHAR:  vm.GetChar,

	vm.ADDS:      vm.Add,
	vm.SUBS:      vm.Sub,
	vm.MULS:      vm.Mul,
	vm.DIVS:      vm.Div,
	vm.IDIVS:     vm.IDiv,
	vm.LTS:       vm.Lt,
	vm.GTS:       vm.Gt,
	vm.EQS:       vm.Eq,
	vm.ANDS:      vm.And,
	vm.ORS:       vm.Or,
	vm.STRI2INTS: vm.Stri2Int,
}

var unaryOps = map[vm.Opcode]unaryOp{
	vm.NOT:       vm.Not,
	vm.INT2CHAR:  vm.Int2Char,
	vm.INT2FLOAT: vm.Int2Float,
	vm.FLOAT2INT: vm.Float2Int,
	vm.STRLEN:    vm.Strlen,

	vm.NOTS:       vm.Not,
	vm.INT2CHARS:  vm.Int2Char,
	vm.INT2FLOATS: vm.Int2Float,
	vm.FLOAT2INTS: vm.Float2Int,
}

// Step executes the instruction at pc and advances pc unless the instruction
// transferred control.
func Step(m *Machine) (StepResult, error) {
	if m.pc < 0 || m.pc >= m.Program.Len() {
		log.Trace().Int("pc", m.pc).Msg("Step: end of code")
		return EndStep, nil
	}
	inst := m.Program.Instructions[m.pc]
	m.steps++

	log.Trace().
		Str("opcode", inst.Opcode.String()).
		Int("order", inst.Order).
		Int("pc", m.pc).
		Int("stack_depth", m.Data.Len()).
		Msg("Step: executing instruction")
	if m.hook != nil {
		m.hook(m, inst)
	}

	res, err := execute(m, inst)
	if err != nil {
		return res, err
	}
	if res == ContinueStep {
		m.pc++
	}
	return res, nil
}

func execute(m *Machine, inst vm.Instruction) (StepResult, error) {
	args := inst.Args
	switch inst.Opcode {
	case vm.MOVE:
		dst, err := m.Frames.Lookup(args[0].Var)
		if err != nil {
			return ContinueStep, err
		}
		v, err := m.defined(args[1])
		if err != nil {
			return ContinueStep, err
		}
		dst.Set(v)
		log.Trace().Str("var", args[0].Var.String()).Stringer("value", v).Msg("  MOVE")

	case vm.CREATEFRAME:
		m.Frames.CreateFrame()
	case vm.PUSHFRAME:
		return ContinueStep, m.Frames.PushFrame()
	case vm.POPFRAME:
		return ContinueStep, m.Frames.PopFrame()
	case vm.DEFVAR:
		return ContinueStep, m.Frames.Declare(args[0].Var)

	case vm.CALL:
		idx, err := m.Program.Resolve(args[0].Label)
		if err != nil {
			return ContinueStep, err
		}
		m.Calls.Push(m.pc + 1)
		m.pc = idx
		log.Trace().Str("label", args[0].Label).Int("depth", m.Calls.Len()).Msg("  CALL")
		return JumpStep, nil
	case vm.RETURN:
		ret, err := m.Calls.Pop()
		if err != nil {
			return ContinueStep, err
		}
		m.pc = ret
		log.Trace().Int("pc", ret).Int("depth", m.Calls.Len()).Msg("  RETURN")
		return JumpStep, nil

	case vm.PUSHS:
		v, err := m.defined(args[0])
		if err != nil {
			return ContinueStep, err
		}
		m.Data.Push(v)
	case vm.POPS:
		dst, err := m.Frames.Lookup(args[0].Var)
		if err != nil {
			return ContinueStep, err
		}
		v, err := m.Data.Pop()
		if err != nil {
			return ContinueStep, err
		}
		dst.Set(v)
	case vm.CLEARS:
		m.Data.Clear()

	case vm.ADD, vm.SUB, vm.MUL, vm.DIV, vm.IDIV, vm.AND, vm.OR:
		return ContinueStep, m.binary(inst, m.operand)
	case vm.LT, vm.GT, vm.EQ, vm.STRI2INT, vm.CONCAT, vm.GETCHAR:
		return ContinueStep, m.binary(inst, m.defined)
	case vm.NOT, vm.INT2CHAR, vm.INT2FLOAT, vm.FLOAT2INT, vm.STRLEN:
		return ContinueStep, m.unary(inst)

	case vm.ADDS, vm.SUBS, vm.MULS, vm.DIVS, vm.IDIVS, vm.LTS, vm.GTS, vm.EQS, vm.ANDS, vm.ORS, vm.STRI2INTS:
		a, b, err := m.Data.Pop2()
		if err != nil {
			return ContinueStep, err
		}
		v, err := binaryOps[inst.Opcode](a, b)
		if err != nil {
			return ContinueStep, err
		}
		m.Data.Push(v)
	case vm.NOTS, vm.INT2CHARS, vm.INT2FLOATS, vm.FLOAT2INTS:
		a, err := m.Data.Pop()
		if err != nil {
			return ContinueStep, err
		}
		v, err := unaryOps[inst.Opcode](a)
		if err != nil {
			return ContinueStep, err
		}
		m.Data.Push(v)

	case vm.SETCHAR:
		dst, err := m.Frames.Lookup(args[0].Var)
		if err != nil {
			return ContinueStep, err
		}
		idx, err := m.defined(args[1])
		if err != nil {
			return ContinueStep, err
		}
		repl, err := m.defined(args[2])
		if err != nil {
			return ContinueStep, err
		}
		if dst.Value().IsUndef() {
			return ContinueStep, vm.Errorf(vm.KindMissingValue, "%s has no value", args[0].Var)
		}
		v, err := vm.SetChar(dst.Value(), idx, repl)
		if err != nil {
			return ContinueStep, err
		}
		dst.Set(v)

	case vm.TYPE:
		dst, err := m.Frames.Lookup(args[0].Var)
		if err != nil {
			return ContinueStep, err
		}
		v, err := m.value(args[1])
		if err != nil {
			return ContinueStep, err
		}
		dst.Set(vm.TypeOf(v))

	case vm.READ:
		dst, err := m.Frames.Lookup(args[0].Var)
		if err != nil {
			return ContinueStep, err
		}
		v := vm.Nil()
		if line, ok := m.in.ReadLine(); ok {
			v = convertInput(line, args[1].Type)
		}
		dst.Set(v)
		log.Trace().Str("var", args[0].Var.String()).Stringer("value", v).Msg("  READ")
	case vm.WRITE:
		v, err := m.defined(args[0])
		if err != nil {
			return ContinueStep, err
		}
		return ContinueStep, m.write(v.Text())

	case vm.LABEL:
	case vm.JUMP:
		return m.jump(args[0].Label)
	case vm.JUMPIFEQ, vm.JUMPIFNEQ:
		if _, err := m.Program.Resolve(args[0].Label); err != nil {
			return ContinueStep, err
		}
		a, err := m.defined(args[1])
		if err != nil {
			return ContinueStep, err
		}
		b, err := m.defined(args[2])
		if err != nil {
			return ContinueStep, err
		}
		return m.branch(inst.Opcode == vm.JUMPIFEQ, args[0].Label, a, b)
	case vm.JUMPIFEQS, vm.JUMPIFNEQS:
		if _, err := m.Program.Resolve(args[0].Label); err != nil {
			return ContinueStep, err
		}
		a, b, err := m.Data.Pop2()
		if err != nil {
			return ContinueStep, err
		}
		return m.branch(inst.Opcode == vm.JUMPIFEQS, args[0].Label, a, b)
	case vm.EXIT:
		v, err := m.defined(args[0])
		if err != nil {
			return ContinueStep, err
		}
		if v.Type != vm.TypeInt {
			return ContinueStep, vm.Errorf(vm.KindType, "EXIT: expected int, got %s", v.Type)
		}
		if v.Int < 0 || v.Int > 49 {
			return ContinueStep, vm.Errorf(vm.KindOperandValue, "EXIT: code %d out of range 0..49", v.Int)
		}
		m.exitCode = int(v.Int)
		return ExitStep, nil

	case vm.DPRINT:
		v, err := m.defined(args[0])
		if err != nil {
			return ContinueStep, err
		}
		return ContinueStep, m.writeDiag(v.Text())
	case vm.BREAK:
		return ContinueStep, m.writeDiag(m.Snapshot().PrettyPrint())

	default:
		return ContinueStep, vm.Errorf(vm.KindInternal, "order %d: unhandled opcode %s", inst.Order, inst.Opcode)
	}
	return ContinueStep, nil
}

func (m *Machine) binary(inst vm.Instruction, resolve func(vm.Operand) (vm.Symb, error)) error {
	dst, err := m.Frames.Lookup(inst.Args[0].Var)
	if err != nil {
		return err
	}
	a, err := resolve(inst.Args[1])
	if err != nil {
		return err
	}
	b, err := resolve(inst.Args[2])
	if err != nil {
		return err
	}
	v, err := binaryOps[inst.Opcode](a, b)
	if err != nil {
		return err
	}
	dst.Set(v)
	log.Trace().Str("var", inst.Args[0].Var.String()).Stringer("value", v).Msgf("  %s", inst.Opcode)
	return nil
}

func (m *Machine) unary(inst vm.Instruction) error {
	dst, err := m.Frames.Lookup(inst.Args[0].Var)
	if err != nil {
		return err
	}
	a, err := m.defined(inst.Args[1])
	if err != nil {
		return err
	}
	v, err := unaryOps[inst.Opcode](a)
	if err != nil {
		return err
	}
	dst.Set(v)
	return nil
}

func (m *Machine) branch(onEqual bool, label string, a, b vm.Symb) (StepResult, error) {
	eq, err := vm.Equal(a, b)
	if err != nil {
		return ContinueStep, err
	}
	if eq == onEqual {
		return m.jump(label)
	}
	return ContinueStep, nil
}
