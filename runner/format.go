package runner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gookit/color"
	"github.com/timewinder-dev/ippinterp/interp"
	"github.com/timewinder-dev/ippinterp/vm"
)

// FormatError renders a failed run for the terminal. A clean EXIT renders
// as an empty string.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	var exitErr *interp.ExitError
	if errors.As(err, &exitErr) {
		return ""
	}
	var b strings.Builder
	b.WriteString(color.Red.Sprint("error"))
	var vmErr *vm.Error
	if errors.As(err, &vmErr) {
		b.WriteString(color.Gray.Sprintf(" [%d]", vmErr.Kind.ExitCode()))
	}
	fmt.Fprintf(&b, ": %s\n", err)
	return b.String()
}

// FormatStateDump renders a state loaded from a dump file.
func FormatStateDump(path string, s *interp.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", color.Bold.Sprint("Dump:"), path)
	b.WriteString(s.PrettyPrint())
	return b.String()
}
