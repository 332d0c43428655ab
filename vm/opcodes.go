package vm

import "strings"

type Opcode uint32

const (
	NOP Opcode = iota

	// Frames and calls
	MOVE        // var symb | var = symb
	CREATEFRAME // | TF = new frame
	PUSHFRAME   // | LF stack <- TF, TF = none
	POPFRAME    // | TF = LF stack top
	DEFVAR      // var | declare var as undef
	CALL        // label | push pc+1, jump
	RETURN      // | jump to popped resume point

	// Data stack
	PUSHS  // symb | | symb
	POPS   // var | A | var = A
	CLEARS // ... | |

	// Arithmetic, relational, boolean, conversion
	ADD
	SUB
	MUL
	DIV
	IDIV
	LT
	GT
	EQ
	AND
	OR
	NOT
	INT2CHAR
	STRI2INT
	INT2FLOAT
	FLOAT2INT

	// Stack variants. Binary ones pop the right operand first.
	ADDS       // A B | | A+B
	SUBS       // A B | | A-B
	MULS       // A B | | A*B
	DIVS       // A B | | A/B
	IDIVS      // A B | | A div B
	LTS        // A B | | A<B
	GTS        // A B | | A>B
	EQS        // A B | | A==B
	ANDS       // A B | | A and B
	ORS        // A B | | A or B
	NOTS       // A | | not A
	INT2CHARS  // A | | chr(A)
	STRI2INTS  // S I | | ord(S[I])
	INT2FLOATS // A | | float(A)
	FLOAT2INTS // A | | int(A)

	// I/O
	READ
	WRITE

	// Strings
	CONCAT
	STRLEN
	GETCHAR
	SETCHAR

	// Types
	TYPE

	// Flow control
	LABEL
	JUMP
	JUMPIFEQ
	JUMPIFNEQ
	JUMPIFEQS  // A B | | jump if A == B
	JUMPIFNEQS // A B | | jump if A != B
	EXIT

	// Debugging
	DPRINT
	BREAK

	OpcodeMax
)

var opcodeNames = [...]string{
	NOP:         "NOP",
	MOVE:        "MOVE",
	CREATEFRAME: "CREATEFRAME",
	PUSHFRAME:   "PUSHFRAME",
	POPFRAME:    "POPFRAME",
	DEFVAR:      "DEFVAR",
	CALL:        "CALL",
	RETURN:      "RETURN",
	PUSHS:       "PUSHS",
	POPS:        "POPS",
	CLEARS:      "CLEARS",
	ADD:         "ADD",
	SUB:         "SUB",
	MUL:         "MUL",
	DIV:         "DIV",
	IDIV:        "IDIV",
	LT:          "LT",
	GT:          "GT",
	EQ:          "EQ",
	AND:         "AND",
	OR:          "OR",
	NOT:         "NOT",
	INT2CHAR:    "INT2CHAR",
	STRI2INT:    "STRI2INT",
	INT2FLOAT:   "INT2FLOAT",
	FLOAT2INT:   "FLOAT2INT",
	ADDS:        "ADDS",
	SUBS:        "SUBS",
	MULS:        "MULS",
	DIVS:        "DIVS",
	IDIVS:       "IDIVS",
	LTS:         "LTS",
	GTS:         "GTS",
	EQS:         "EQS",
	ANDS:        "ANDS",
	ORS:         "ORS",
	NOTS:        "NOTS",
	INT2CHARS:   "INT2CHARS",
	STRI2INTS:   "STRI2INTS",
	INT2FLOATS:  "INT2FLOATS",
	FLOAT2INTS:  "FLOAT2INTS",
	READ:        "READ",
	WRITE:       "WRITE",
	CONCAT:      "CONCAT",
	STRLEN:      "STRLEN",
	GETCHAR:     "GETCHAR",
	SETCHAR:     "SETCHAR",
	TYPE:        "TYPE",
	LABEL:       "LABEL",
	JUMP:        "JUMP",
	JUMPIFEQ:    "JUMPIFEQ",
	JUMPIFNEQ:   "JUMPIFNEQ",
	JUMPIFEQS:   "JUMPIFEQS",
	JUMPIFNEQS:  "JUMPIFNEQS",
	EXIT:        "EXIT",
	DPRINT:      "DPRINT",
	BREAK:       "BREAK",
}

var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for i, n := range opcodeNames {
		if Opcode(i) == NOP {
			continue
		}
		m[n] = Opcode(i)
	}
	return m
}()

func (o Opcode) String() string {
	if int(o) < len(opcodeNames) && opcodeNames[o] != "" {
		return opcodeNames[o]
	}
	return "UNKNOWN"
}

// ParseOpcode looks up an opcode by name, ignoring case. NOP is internal and
// never parses.
func ParseOpcode(name string) (Opcode, bool) {
	o, ok := opcodeByName[strings.ToUpper(name)]
	return o, ok
}

// OperandKind is the shape an operand position accepts.
type OperandKind uint8

const (
	OperandVar   OperandKind = iota // GF@x
	OperandSymb                     // literal or variable
	OperandLabel                    // label name
	OperandType                     // int, float, bool, string, nil
)

func (k OperandKind) String() string {
	switch k {
	case OperandVar:
		return "var"
	case OperandSymb:
		return "symb"
	case OperandLabel:
		return "label"
	case OperandType:
		return "type"
	}
	return "?"
}

var (
	sigNone          = []OperandKind{}
	sigVar           = []OperandKind{OperandVar}
	sigLabel         = []OperandKind{OperandLabel}
	sigSymb          = []OperandKind{OperandSymb}
	sigVarSymb       = []OperandKind{OperandVar, OperandSymb}
	sigVarSymbSymb   = []OperandKind{OperandVar, OperandSymb, OperandSymb}
	sigVarType       = []OperandKind{OperandVar, OperandType}
	sigLabelSymbSymb = []OperandKind{OperandLabel, OperandSymb, OperandSymb}
)

var signatures = map[Opcode][]OperandKind{
	MOVE:        sigVarSymb,
	CREATEFRAME: sigNone,
	PUSHFRAME:   sigNone,
	POPFRAME:    sigNone,
	DEFVAR:      sigVar,
	CALL:        sigLabel,
	RETURN:      sigNone,

	PUSHS:  sigSymb,
	POPS:   sigVar,
	CLEARS: sigNone,

	ADD:       sigVarSymbSymb,
	SUB:       sigVarSymbSymb,
	MUL:       sigVarSymbSymb,
	DIV:       sigVarSymbSymb,
	IDIV:      sigVarSymbSymb,
	LT:        sigVarSymbSymb,
	GT:        sigVarSymbSymb,
	EQ:        sigVarSymbSymb,
	AND:       sigVarSymbSymb,
	OR:        sigVarSymbSymb,
	NOT:       sigVarSymb,
	INT2CHAR:  sigVarSymb,
	STRI2INT:  sigVarSymbSymb,
	INT2FLOAT: sigVarSymb,
	FLOAT2INT: sigVarSymb,

	ADDS:       sigNone,
	SUBS:       sigNone,
	MULS:       sigNone,
	DIVS:       sigNone,
	IDIVS:      sigNone,
	LTS:        sigNone,
	GTS:        sigNone,
	EQS:        sigNone,
	ANDS:       sigNone,
	ORS:        sigNone,
	NOTS:       sigNone,
	INT2CHARS:  sigNone,
	STRI2INTS:  sigNone,
	INT2FLOATS: sigNone,
	FLOAT2INTS: sigNone,

	READ:  sigVarType,
	WRITE: sigSymb,

	CONCAT:  sigVarSymbSymb,
	STRLEN:  sigVarSymb,
	GETCHAR: sigVarSymbSymb,
	SETCHAR: sigVarSymbSymb,

	TYPE: sigVarSymb,

	LABEL:      sigLabel,
	JUMP:       sigLabel,
	JUMPIFEQ:   sigLabelSymbSymb,
	JUMPIFNEQ:  sigLabelSymbSymb,
	JUMPIFEQS:  sigLabel,
	JUMPIFNEQS: sigLabel,
	EXIT:       sigSymb,

	DPRINT: sigSymb,
	BREAK:  sigNone,
}

// Signature returns the operand kinds o expects, in order.
func (o Opcode) Signature() []OperandKind {
	return signatures[o]
}
