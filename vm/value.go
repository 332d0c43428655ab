package vm

import (
	"regexp"
	"strconv"
	"strings"
)

type Type uint8

const (
	TypeUndef Type = iota
	TypeNil
	TypeInt
	TypeFloat
	TypeBool
	TypeString
)

func (t Type) String() string {
	switch t {
	case TypeNil:
		return "nil"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	default:
		return "undef"
	}
}

// ParseType maps a type name as it appears in source (int, float, bool,
// string, nil) to a Type.
func ParseType(name string) (Type, bool) {
	switch strings.ToLower(name) {
	case "int":
		return TypeInt, true
	case "float":
		return TypeFloat, true
	case "bool":
		return TypeBool, true
	case "string":
		return TypeString, true
	case "nil":
		return TypeNil, true
	}
	return TypeUndef, false
}

// Symb is an immutable typed value. Only the field matching Type is meaningful.
type Symb struct {
	Type  Type
	Int   int64
	Float float64
	Bool  bool
	Str   string
}

func Int(i int64) Symb { return Symb{Type: TypeInt, Int: i} }
func Float(f float64) Symb { return Symb{Type: TypeFloat, Float: f} }
func Bool(b bool) Symb { return Symb{Type: TypeBool, Bool: b} }
func String(s string) Symb { return Symb{Type: TypeString, Str: s} }
func Nil() Symb { return Symb{Type: TypeNil} }
func Undef() Symb { return Symb{Type: TypeUndef} }
func (s Symb) IsNil() bool { return s.Type == TypeNil }
func (s Symb) IsUndef() bool { return s.Type == TypeUndef }

// intLiteral is the integer grammar: optional sign, then hexadecimal (0x),
// octal (0o or a leading 0) or decimal digits.
var intLiteral = regexp.MustCompile(`^[-+]?(0[xX][0-9a-fA-F]+|0[oO]?[0-7]+|[0-9]+)$`)

// ParseInt parses an integer literal. Go-only forms such as 0b101 or 1_000
// are rejected.
func ParseInt(text string) (int64, bool) {
	if !intLiteral.MatchString(text) {
		return 0, false
	}
	i, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		// decimal with a leading zero, e.g. 09
		i, err = strconv.ParseInt(text, 10, 64)
		if err != nil {
			return 0, false
		}
	}
	return i, true
}

// ParseLiteral constructs a Symb of the given type from its source text.
func ParseLiteral(t Type, text string) (Symb, bool) {
	switch t {
	case TypeInt:
		i, ok := ParseInt(text)
		if !ok {
			return Symb{}, false
		}
		return Int(i), true
	case TypeFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Symb{}, false
		}
		return Float(f), true
	case TypeBool:
		switch strings.ToLower(text) {
		case "true":
			return Bool(true), true
		case "false":
			return Bool(false), true
		}
		return Symb{}, false
	case TypeString:
		if !ValidEscapes(text) {
			return Symb{}, false
		}
		return String(text), true
	case TypeNil:
		if text != "nil" {
			return Symb{}, false
		}
		return Nil(), true
	}
	return Symb{}, false
}

// Text is the textual form used by WRITE and DPRINT. Strings are de-escaped.
func (s Symb) Text() string {
	switch s.Type {
	case TypeInt:
		return strconv.FormatInt(s.Int, 10)
	case TypeFloat:
		return strconv.FormatFloat(s.Float, 'g', -1, 64)
	case TypeBool:
		if s.Bool {
			return "true"
		}
		return "false"
	case TypeString:
		return Deescape(s.Str)
	default:
		return ""
	}
}

// String renders the value the way it is written in source, e.g. int@5.
func (s Symb) String() string {
	switch s.Type {
	case TypeUndef:
		return "undef"
	case TypeString:
		return "string@" + s.Str
	case TypeNil:
		return "nil@nil"
	default:
		return s.Type.String() + "@" + s.Text()
	}
}
