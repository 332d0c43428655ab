package vm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	var vmErr *Error
	require.True(t, errors.As(err, &vmErr), "not a vm error: %v", err)
	require.Equal(t, kind, vmErr.Kind, "unexpected error: %v", err)
}

func TestArithmetic(t *testing.T) {
	v, err := Add(Int(3), Int(5))
	require.NoError(t, err)
	require.Equal(t, Int(8), v)

	v, err = Sub(Float(1.5), Float(0.25))
	require.NoError(t, err)
	require.Equal(t, Float(1.25), v)

	v, err = Mul(Int(-4), Int(6))
	require.NoError(t, err)
	require.Equal(t, Int(-24), v)

	_, err = Add(Int(1), Float(1))
	requireKind(t, err, KindType)
	_, err = Add(String("a"), String("b"))
	requireKind(t, err, KindType)
	_, err = Add(Nil(), Int(1))
	requireKind(t, err, KindType)
	_, err = Add(Undef(), Int(1))
	requireKind(t, err, KindMissingValue)
}

func TestDivision(t *testing.T) {
	v, err := IDiv(Int(7), Int(2))
	require.NoError(t, err)
	require.Equal(t, Int(3), v)

	v, err = IDiv(Int(-7), Int(2))
	require.NoError(t, err)
	require.Equal(t, Int(-3), v)

	v, err = IDiv(Float(7.5), Float(2))
	require.NoError(t, err)
	require.Equal(t, Int(3), v)

	v, err = Div(Float(1), Float(4))
	require.NoError(t, err)
	require.Equal(t, Float(0.25), v)

	v, err = Div(Int(9), Int(4))
	require.NoError(t, err)
	require.Equal(t, Int(2), v)

	_, err = IDiv(Int(10), Int(0))
	requireKind(t, err, KindOperandValue)
	_, err = Div(Float(1), Float(0))
	requireKind(t, err, KindOperandValue)
	// zero divisor wins over a type mismatch
	_, err = Div(String("x"), Int(0))
	requireKind(t, err, KindOperandValue)
	_, err = IDiv(Int(1), Float(1))
	requireKind(t, err, KindType)
	// only numeric zeros are zero divisors
	_, err = Div(Int(5), Bool(false))
	requireKind(t, err, KindType)
	_, err = IDiv(Int(5), Nil())
	requireKind(t, err, KindType)
}

func TestComparison(t *testing.T) {
	v, err := Lt(Int(1), Int(2))
	require.NoError(t, err)
	require.Equal(t, Bool(true), v)

	v, err = Gt(String("abc"), String("abd"))
	require.NoError(t, err)
	require.Equal(t, Bool(false), v)

	v, err = Lt(Bool(false), Bool(true))
	require.NoError(t, err)
	require.Equal(t, Bool(true), v)

	v, err = Gt(String(`\098`), String("a"))
	require.NoError(t, err)
	require.Equal(t, Bool(true), v)

	_, err = Lt(Nil(), Nil())
	requireKind(t, err, KindType)
	_, err = Gt(Int(1), String("1"))
	requireKind(t, err, KindType)
}

func TestEquality(t *testing.T) {
	cases := []struct {
		a, b Symb
		want bool
	}{
		{Int(4), Int(4), true},
		{Int(4), Int(5), false},
		{Nil(), Nil(), true},
		{Nil(), Int(0), false},
		{String(""), Nil(), false},
		{String(`a\032b`), String("a b"), true},
		{Bool(true), Bool(true), true},
		{Float(0.5), Float(0.5), true},
	}
	for _, c := range cases {
		got, err := Equal(c.a, c.b)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%s == %s", c.a, c.b)
	}

	_, err := Eq(Int(1), Bool(true))
	requireKind(t, err, KindType)
	_, err = Eq(Undef(), Nil())
	requireKind(t, err, KindMissingValue)
}

func TestBoolean(t *testing.T) {
	v, err := And(Bool(true), Bool(false))
	require.NoError(t, err)
	require.Equal(t, Bool(false), v)

	v, err = Or(Bool(true), Bool(false))
	require.NoError(t, err)
	require.Equal(t, Bool(true), v)

	v, err = Not(Bool(false))
	require.NoError(t, err)
	require.Equal(t, Bool(true), v)

	_, err = Not(Nil())
	requireKind(t, err, KindType)
	_, err = And(Int(1), Bool(true))
	requireKind(t, err, KindType)
}

func TestConversions(t *testing.T) {
	v, err := Int2Char(Int(65))
	require.NoError(t, err)
	require.Equal(t, String("A"), v)

	v, err = Int2Char(Int(0x1F600))
	require.NoError(t, err)
	require.Equal(t, String("😀"), v)

	_, err = Int2Char(Int(-1))
	requireKind(t, err, KindString)
	_, err = Int2Char(Int(0xD800))
	requireKind(t, err, KindString)
	_, err = Int2Char(Int(0x110000))
	requireKind(t, err, KindString)

	v, err = Int2Float(Int(3))
	require.NoError(t, err)
	require.Equal(t, Float(3), v)

	v, err = Float2Int(Float(-2.9))
	require.NoError(t, err)
	require.Equal(t, Int(-2), v)

	_, err = Int2Float(Nil())
	requireKind(t, err, KindMissingValue)
	_, err = Float2Int(Int(1))
	requireKind(t, err, KindType)
}

func TestStrings(t *testing.T) {
	v, err := Concat(String("ab"), String(`\099`))
	require.NoError(t, err)
	require.Equal(t, "abc", v.Text())

	v, err = Strlen(String(`a\010b`))
	require.NoError(t, err)
	require.Equal(t, Int(3), v)

	v, err = Strlen(String("žluť"))
	require.NoError(t, err)
	require.Equal(t, Int(4), v)

	v, err = GetChar(String("hello"), Int(1))
	require.NoError(t, err)
	require.Equal(t, String("e"), v)

	v, err = Stri2Int(String("hello"), Int(0))
	require.NoError(t, err)
	require.Equal(t, Int('h'), v)

	_, err = GetChar(String("hi"), Int(5))
	requireKind(t, err, KindString)
	_, err = GetChar(String("hi"), Int(-1))
	requireKind(t, err, KindString)
	_, err = GetChar(Int(1), Int(0))
	requireKind(t, err, KindType)
	_, err = Stri2Int(String("hi"), String("0"))
	requireKind(t, err, KindType)

	v, err = SetChar(String("hello"), Int(0), String("Jx"))
	require.NoError(t, err)
	require.Equal(t, String("Jello"), v)

	_, err = SetChar(String("hello"), Int(0), String(""))
	requireKind(t, err, KindString)
	_, err = SetChar(String("hello"), Int(5), String("x"))
	requireKind(t, err, KindString)
	_, err = SetChar(Int(1), Int(0), String("x"))
	requireKind(t, err, KindType)
}

func TestTypeOf(t *testing.T) {
	require.Equal(t, Nil(), TypeOf(Undef()))
	require.Equal(t, String("nil"), TypeOf(Nil()))
	require.Equal(t, String("int"), TypeOf(Int(0)))
	require.Equal(t, String("string"), TypeOf(String("")))
}

func TestErrorExitCodes(t *testing.T) {
	require.Equal(t, 53, KindType.ExitCode())
	require.Equal(t, 58, KindString.ExitCode())
	require.Equal(t, 99, KindInternal.ExitCode())
	require.Equal(t, "operand type error: boom", Errorf(KindType, "boom").Error())
}
