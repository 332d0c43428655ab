package vm

import (
	"bufio"
	"encoding/xml"
	"io"
	"strconv"
	"strings"
)

const header = ".ippcode24"

// Assemble parses the line-oriented source form: a .IPPcode24 header, then
// one instruction per line. '#' starts a comment.
func Assemble(r io.Reader) (*Program, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<24)

	seenHeader := false
	lineNo := 0
	var instrs []Instruction
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if !seenHeader {
			if len(fields) != 1 || strings.ToLower(fields[0]) != header {
				return nil, Errorf(KindHeader, "line %d: missing %s header", lineNo, Language)
			}
			seenHeader = true
			continue
		}
		in, err := assembleLine(lineNo, len(instrs)+1, fields)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, in)
	}
	if err := sc.Err(); err != nil {
		return nil, Errorf(KindInputFile, "reading source: %v", err)
	}
	if !seenHeader {
		return nil, Errorf(KindHeader, "missing %s header", Language)
	}
	return NewProgram(instrs)
}

func assembleLine(lineNo, order int, fields []string) (Instruction, error) {
	op, ok := ParseOpcode(fields[0])
	if !ok {
		return Instruction{}, Errorf(KindOpcode, "line %d: unknown opcode %q", lineNo, fields[0])
	}
	sig := op.Signature()
	tokens := fields[1:]
	if len(tokens) != len(sig) {
		return Instruction{}, Errorf(KindSyntax, "line %d: %s takes %d operands, got %d", lineNo, op, len(sig), len(tokens))
	}
	args := make([]Operand, len(sig))
	for i, want := range sig {
		typ, text := tokenType(want, tokens[i])
		arg, err := DecodeOperand(want, typ, text)
		if err != nil {
			return Instruction{}, Errorf(KindSyntax, "line %d: operand %d: %s", lineNo, i+1, err.Msg)
		}
		args[i] = arg
	}
	return Instruction{Opcode: op, Order: order, Args: args}, nil
}

// tokenType splits a source token into the type tag and text DecodeOperand
// expects.
func tokenType(want OperandKind, tok string) (string, string) {
	switch want {
	case OperandVar:
		return "var", tok
	case OperandLabel:
		return "label", tok
	case OperandType:
		return "type", tok
	}
	prefix, rest, ok := strings.Cut(tok, "@")
	if !ok {
		return "", tok
	}
	if _, isScope := ParseScope(prefix); isScope {
		return "var", tok
	}
	return prefix, rest
}

type xmlOutProgram struct {
	XMLName      xml.Name            `xml:"program"`
	Language     string              `xml:"language,attr"`
	Instructions []xmlOutInstruction `xml:"instruction"`
}

type xmlOutInstruction struct {
	Order  int      `xml:"order,attr"`
	Opcode string   `xml:"opcode,attr"`
	Args   []xmlArg
}

// WriteXML writes p in the XML representation LoadXML accepts.
func WriteXML(w io.Writer, p *Program) error {
	out := xmlOutProgram{Language: Language}
	for _, in := range p.Instructions {
		xi := xmlOutInstruction{Order: in.Order, Opcode: in.Opcode.String()}
		for i, a := range in.Args {
			typ, text := operandXML(a)
			xi.Args = append(xi.Args, xmlArg{
				XMLName: xml.Name{Local: "arg" + strconv.Itoa(i+1)},
				Type:    typ,
				Text:    text,
			})
		}
		out.Instructions = append(out.Instructions, xi)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return Errorf(KindOutputFile, "%v", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return Errorf(KindOutputFile, "%v", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return Errorf(KindOutputFile, "%v", err)
	}
	return nil
}

func operandXML(a Operand) (string, string) {
	switch a.Kind {
	case OperandLabel:
		return "label", a.Label
	case OperandType:
		return "type", a.Type.String()
	}
	if a.Kind == OperandVar || a.IsVar() {
		return "var", a.Var.String()
	}
	switch a.Symb.Type {
	case TypeString:
		return "string", a.Symb.Str
	case TypeNil:
		return "nil", "nil"
	}
	return a.Symb.Type.String(), a.Symb.Text()
}
