package interp

import "github.com/timewinder-dev/ippinterp/vm"

// DataStack is the auxiliary operand stack used by PUSHS, POPS and the
// stack variants of the arithmetic and comparison opcodes.
type DataStack struct {
	items []vm.Symb
}

func (s *DataStack) Push(v vm.Symb) {
	s.items = append(s.items, v)
}

func (s *DataStack) Pop() (vm.Symb, error) {
	if len(s.items) == 0 {
		return vm.Symb{}, vm.Errorf(vm.KindMissingValue, "data stack is empty")
	}
	v := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return v, nil
}

// Pop2 pops the right operand and then the left one. Both pops happen even
// when the first fails.
func (s *DataStack) Pop2() (left, right vm.Symb, err error) {
	right, errR := s.Pop()
	left, errL := s.Pop()
	if errR != nil {
		return left, right, errR
	}
	return left, right, errL
}

func (s *DataStack) Clear() {
	s.items = s.items[:0]
}

func (s *DataStack) Len() int {
	return len(s.items)
}

// Items returns the stack contents, bottom first.
func (s *DataStack) Items() []vm.Symb {
	return s.items
}

// CallStack holds resume points pushed by CALL.
type CallStack struct {
	items []int
}

func (c *CallStack) Push(pc int) {
	c.items = append(c.items, pc)
}

func (c *CallStack) Pop() (int, error) {
	if len(c.items) == 0 {
		return 0, vm.Errorf(vm.KindMissingValue, "RETURN with empty call stack")
	}
	pc := c.items[len(c.items)-1]
	c.items = c.items[:len(c.items)-1]
	return pc, nil
}

func (c *CallStack) Len() int {
	return len(c.items)
}

func (c *CallStack) Items() []int {
	return c.items
}
