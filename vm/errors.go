package vm

import (
	"fmt"
)

// Kind classifies a failure. Each kind maps to exactly one process exit code.
type Kind int

const (
	KindInternal Kind = iota
	KindParameter
	KindInputFile
	KindOutputFile
	KindHeader
	KindOpcode
	KindSyntax
	KindXMLFormat
	KindXMLStructure
	KindSemantic
	KindType
	KindUndefinedVar
	KindFrame
	KindMissingValue
	KindOperandValue
	KindString
)

func (k Kind) ExitCode() int {
	switch k {
	case KindParameter:
		return 10
	case KindInputFile:
		return 11
	case KindOutputFile:
		return 12
	case KindHeader:
		return 21
	case KindOpcode:
		return 22
	case KindSyntax:
		return 23
	case KindXMLFormat:
		return 31
	case KindXMLStructure:
		return 32
	case KindSemantic:
		return 52
	case KindType:
		return 53
	case KindUndefinedVar:
		return 54
	case KindFrame:
		return 55
	case KindMissingValue:
		return 56
	case KindOperandValue:
		return 57
	case KindString:
		return 58
	default:
		return 99
	}
}

func (k Kind) String() string {
	switch k {
	case KindParameter:
		return "parameter error"
	case KindInputFile:
		return "input file error"
	case KindOutputFile:
		return "output file error"
	case KindHeader:
		return "header error"
	case KindOpcode:
		return "unknown opcode"
	case KindSyntax:
		return "syntax error"
	case KindXMLFormat:
		return "malformed XML"
	case KindXMLStructure:
		return "unexpected XML structure"
	case KindSemantic:
		return "semantic error"
	case KindType:
		return "operand type error"
	case KindUndefinedVar:
		return "undefined variable"
	case KindFrame:
		return "frame error"
	case KindMissingValue:
		return "missing value"
	case KindOperandValue:
		return "bad operand value"
	case KindString:
		return "string operation error"
	default:
		return "internal error"
	}
}

// Error is a classified interpreter failure.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
