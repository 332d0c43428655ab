package interp

import (
	"github.com/timewinder-dev/ippinterp/vm"
)

// Variable is a declared slot. Name and Scope record where it was declared
// and never change; the value starts out undefined and changes only through
// Set.
type Variable struct {
	Name  string
	Scope vm.Scope
	value vm.Symb
}

func (v *Variable) Value() vm.Symb {
	return v.value
}

func (v *Variable) Set(s vm.Symb) {
	v.value = s
}

// Frame maps names to variables, remembering declaration order.
type Frame struct {
	vars  map[string]*Variable
	order []string
}

func NewFrame() *Frame {
	return &Frame{vars: make(map[string]*Variable)}
}

func (f *Frame) Len() int {
	return len(f.vars)
}

// Names returns the declared names in declaration order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

func (f *Frame) Get(name string) (*Variable, bool) {
	v, ok := f.vars[name]
	return v, ok
}

func (f *Frame) add(v *Variable) {
	f.vars[v.Name] = v
	f.order = append(f.order, v.Name)
}

// FrameManager owns the global frame, the optional temporary frame and the
// stack of local frames. The top of the stack is LF.
type FrameManager struct {
	global *Frame
	temp   *Frame
	locals []*Frame
}

func NewFrameManager() *FrameManager {
	return &FrameManager{global: NewFrame()}
}

func (fm *FrameManager) frame(scope vm.Scope) (*Frame, error) {
	switch scope {
	case vm.ScopeGF:
		return fm.global, nil
	case vm.ScopeTF:
		if fm.temp == nil {
			return nil, vm.Errorf(vm.KindFrame, "TF does not exist")
		}
		return fm.temp, nil
	case vm.ScopeLF:
		if len(fm.locals) == 0 {
			return nil, vm.Errorf(vm.KindFrame, "LF does not exist")
		}
		return fm.locals[len(fm.locals)-1], nil
	}
	return nil, vm.Errorf(vm.KindInternal, "invalid frame scope %d", scope)
}

// Declare creates ref in its frame with an undefined value.
func (fm *FrameManager) Declare(ref vm.VarRef) error {
	f, err := fm.frame(ref.Scope)
	if err != nil {
		return err
	}
	if _, ok := f.vars[ref.Name]; ok {
		return vm.Errorf(vm.KindSemantic, "variable %s already defined", ref)
	}
	f.add(&Variable{Name: ref.Name, Scope: ref.Scope, value: vm.Undef()})
	return nil
}

// Lookup finds the live variable for ref.
func (fm *FrameManager) Lookup(ref vm.VarRef) (*Variable, error) {
	f, err := fm.frame(ref.Scope)
	if err != nil {
		return nil, err
	}
	v, ok := f.vars[ref.Name]
	if !ok {
		return nil, vm.Errorf(vm.KindUndefinedVar, "variable %s is not defined", ref)
	}
	return v, nil
}

// Read returns the current value of ref, which may be undefined.
func (fm *FrameManager) Read(ref vm.VarRef) (vm.Symb, error) {
	v, err := fm.Lookup(ref)
	if err != nil {
		return vm.Symb{}, err
	}
	return v.Value(), nil
}

func (fm *FrameManager) Write(ref vm.VarRef, s vm.Symb) error {
	v, err := fm.Lookup(ref)
	if err != nil {
		return err
	}
	v.Set(s)
	return nil
}

// CreateFrame replaces TF with a fresh empty frame.
func (fm *FrameManager) CreateFrame() {
	fm.temp = NewFrame()
}

// PushFrame moves TF onto the local stack, leaving TF undefined.
func (fm *FrameManager) PushFrame() error {
	if fm.temp == nil {
		return vm.Errorf(vm.KindFrame, "PUSHFRAME: TF does not exist")
	}
	fm.locals = append(fm.locals, fm.temp)
	fm.temp = nil
	return nil
}

// PopFrame moves the top local frame into TF, discarding the previous TF.
func (fm *FrameManager) PopFrame() error {
	if len(fm.locals) == 0 {
		return vm.Errorf(vm.KindFrame, "POPFRAME: no local frame")
	}
	top := fm.locals[len(fm.locals)-1]
	fm.locals = fm.locals[:len(fm.locals)-1]
	fm.temp = top
	return nil
}

func (fm *FrameManager) Global() *Frame {
	return fm.global
}

// Temp returns TF or nil when it does not exist.
func (fm *FrameManager) Temp() *Frame {
	return fm.temp
}

// Locals returns the local frame stack, bottom first.
func (fm *FrameManager) Locals() []*Frame {
	return fm.locals
}
