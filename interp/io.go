package interp

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/ippinterp/vm"
)

// Input supplies READ with one line at a time.
type Input struct {
	sc *bufio.Scanner
}

func NewInput(r io.Reader) *Input {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 4096), 1<<24)
	return &Input{sc: sc}
}

// ReadLine returns the next line without its terminator. ok is false at end
// of input.
func (in *Input) ReadLine() (line string, ok bool) {
	if in == nil || in.sc == nil {
		return "", false
	}
	if in.sc.Scan() {
		return in.sc.Text(), true
	}
	if err := in.sc.Err(); err != nil {
		log.Warn().Err(err).Msg("reading input")
	}
	return "", false
}

// convertInput turns a line read by READ into a value of type t. Any failure
// yields nil.
func convertInput(line string, t vm.Type) vm.Symb {
	switch t {
	case vm.TypeInt:
		i, ok := vm.ParseInt(strings.TrimSpace(line))
		if !ok {
			return vm.Nil()
		}
		return vm.Int(i)
	case vm.TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil {
			return vm.Nil()
		}
		return vm.Float(f)
	case vm.TypeBool:
		return vm.Bool(strings.EqualFold(strings.TrimSpace(line), "true"))
	case vm.TypeString:
		return vm.String(line)
	}
	return vm.Nil()
}
