package vm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssemble(t *testing.T) {
	src := `
# leading comment
.IPPcode24
DEFVAR GF@counter   # declare
MOVE GF@counter int@0
label loop
ADD GF@counter GF@counter int@1
JUMPIFNEQ loop GF@counter int@3
WRITE string@done\010
READ GF@counter bool
PUSHS nil@nil
ADDS
`
	p, err := Assemble(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 9, p.Len())
	require.Equal(t, 1, p.Instructions[0].Order)
	require.Equal(t, LABEL, p.Instructions[2].Opcode)
	require.Equal(t, 2, p.Labels["loop"])

	add := p.Instructions[3]
	require.Equal(t, VarOperand(VarRef{Scope: ScopeGF, Name: "counter"}), add.Args[0])
	require.True(t, add.Args[1].IsVar())
	require.Equal(t, SymbOperand(Int(1)), add.Args[2])
	require.Equal(t, "WRITE string@done\\010", p.Instructions[5].String())
	require.Equal(t, TypeOperand(TypeBool), p.Instructions[6].Args[1])
	require.Equal(t, SymbOperand(Nil()), p.Instructions[7].Args[0])
}

func TestAssembleErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind Kind
	}{
		{"no header", "WRITE int@1\n", KindHeader},
		{"empty", "", KindHeader},
		{"wrong header", ".IPPcode23\n", KindHeader},
		{"unknown opcode", ".IPPcode24\nFROB\n", KindOpcode},
		{"arity", ".IPPcode24\nWRITE\n", KindSyntax},
		{"bad var", ".IPPcode24\nDEFVAR gf@x\n", KindSyntax},
		{"bad literal", ".IPPcode24\nWRITE int@x\n", KindSyntax},
		{"underscore int", ".IPPcode24\nWRITE int@1_000\n", KindSyntax},
		{"literal for var", ".IPPcode24\nPOPS int@1\n", KindSyntax},
		{"bad label", ".IPPcode24\nJUMP 1abc\n", KindSyntax},
		{"bad type", ".IPPcode24\nREAD GF@x label\n", KindSyntax},
		{"duplicate label", ".IPPcode24\nLABEL a\nLABEL a\n", KindSemantic},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Assemble(strings.NewReader(c.src))
			requireKind(t, err, c.kind)
		})
	}
}

func TestAssembleMatchesXML(t *testing.T) {
	src := ".IPPcode24\nDEFVAR GF@x\nMOVE GF@x string@a\\032<b>\nWRITE GF@x\nLABEL end\nREAD GF@x int\n"
	p, err := Assemble(strings.NewReader(src))
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, WriteXML(&sb, p))
	q, err := LoadXML(strings.NewReader(sb.String()))
	require.NoError(t, err)
	require.Equal(t, p, q)
}
