package vm

import (
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
)

const Language = "IPPcode24"

type xmlProgram struct {
	XMLName  xml.Name
	Language string           `xml:"language,attr"`
	Children []xmlInstruction `xml:",any"`
}

type xmlInstruction struct {
	XMLName xml.Name
	Order   string   `xml:"order,attr"`
	Opcode  string   `xml:"opcode,attr"`
	Args    []xmlArg `xml:",any"`
}

type xmlArg struct {
	XMLName xml.Name
	Type    string `xml:"type,attr"`
	Text    string `xml:",chardata"`
}

// LoadXML reads a program in the XML representation and validates it fully:
// structure, opcodes, operand shapes, literal values and label uniqueness.
func LoadXML(r io.Reader) (*Program, error) {
	dec := xml.NewDecoder(r)
	var doc xmlProgram
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, Errorf(KindXMLFormat, "empty document")
		}
		return nil, Errorf(KindXMLFormat, "%v", err)
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}

	if doc.XMLName.Local != "program" {
		return nil, Errorf(KindXMLStructure, "root element must be <program>, got <%s>", doc.XMLName.Local)
	}
	if !strings.EqualFold(doc.Language, Language) {
		return nil, Errorf(KindXMLStructure, "unsupported language %q", doc.Language)
	}

	instrs := make([]Instruction, 0, len(doc.Children))
	for _, x := range doc.Children {
		in, err := x.decode()
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, in)
	}
	return NewProgram(instrs)
}

// expectEOF rejects anything but whitespace, comments and processing
// instructions after the root element.
func expectEOF(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return Errorf(KindXMLFormat, "%v", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return Errorf(KindXMLFormat, "unexpected element <%s> after root", t.Name.Local)
		case xml.CharData:
			if len(strings.TrimSpace(string(t))) != 0 {
				return Errorf(KindXMLFormat, "unexpected text after root")
			}
		}
	}
}

func (x xmlInstruction) decode() (Instruction, error) {
	if x.XMLName.Local != "instruction" {
		return Instruction{}, Errorf(KindXMLStructure, "unexpected element <%s>", x.XMLName.Local)
	}
	order, err := strconv.Atoi(strings.TrimSpace(x.Order))
	if err != nil || order <= 0 {
		return Instruction{}, Errorf(KindXMLStructure, "invalid instruction order %q", x.Order)
	}
	op, ok := ParseOpcode(strings.TrimSpace(x.Opcode))
	if !ok {
		return Instruction{}, Errorf(KindXMLStructure, "order %d: unknown opcode %q", order, x.Opcode)
	}
	sig := op.Signature()

	slots := make([]*xmlArg, len(sig))
	for i := range x.Args {
		a := &x.Args[i]
		n, ok := argIndex(a.XMLName.Local)
		if !ok {
			return Instruction{}, Errorf(KindXMLStructure, "order %d: unexpected element <%s>", order, a.XMLName.Local)
		}
		if n > len(sig) {
			return Instruction{}, Errorf(KindXMLStructure, "order %d: %s takes %d operands, found <%s>", order, op, len(sig), a.XMLName.Local)
		}
		if slots[n-1] != nil {
			return Instruction{}, Errorf(KindXMLStructure, "order %d: duplicate <%s>", order, a.XMLName.Local)
		}
		slots[n-1] = a
	}

	args := make([]Operand, len(sig))
	for i, want := range sig {
		if slots[i] == nil {
			return Instruction{}, Errorf(KindXMLStructure, "order %d: missing <arg%d>", order, i+1)
		}
		arg, err := DecodeOperand(want, slots[i].Type, strings.TrimSpace(slots[i].Text))
		if err != nil {
			return Instruction{}, Errorf(KindXMLStructure, "order %d: arg%d: %s", order, i+1, err.Msg)
		}
		args[i] = arg
	}
	return Instruction{Opcode: op, Order: order, Args: args}, nil
}

func argIndex(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "arg")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// DecodeOperand builds an operand for a position of kind want from a type tag
// and its text.
func DecodeOperand(want OperandKind, typ, text string) (Operand, *Error) {
	switch typ {
	case "var":
		ref, ok := ParseVarRef(text)
		if !ok {
			return Operand{}, Errorf(KindXMLStructure, "invalid variable %q", text)
		}
		switch want {
		case OperandVar:
			return VarOperand(ref), nil
		case OperandSymb:
			return SymbVarOperand(ref), nil
		}
	case "label":
		if want == OperandLabel {
			if !validIdent(text) {
				return Operand{}, Errorf(KindXMLStructure, "invalid label %q", text)
			}
			return LabelOperand(text), nil
		}
	case "type":
		if want == OperandType {
			t, ok := ParseType(text)
			if !ok {
				return Operand{}, Errorf(KindXMLStructure, "invalid type %q", text)
			}
			return TypeOperand(t), nil
		}
	default:
		t, ok := ParseType(typ)
		if !ok {
			return Operand{}, Errorf(KindXMLStructure, "unknown operand type %q", typ)
		}
		if want == OperandSymb {
			s, ok := ParseLiteral(t, text)
			if !ok {
				return Operand{}, Errorf(KindXMLStructure, "invalid %s literal %q", t, text)
			}
			return SymbOperand(s), nil
		}
	}
	return Operand{}, Errorf(KindXMLStructure, "expected %s operand, got %s", want, typ)
}
