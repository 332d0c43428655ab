package vm

import (
	"math"
	"unicode/utf8"
)

func defined(ss ...Symb) error {
	for _, s := range ss {
		if s.IsUndef() {
			return Errorf(KindMissingValue, "read of an uninitialized value")
		}
	}
	return nil
}

func numericPair(op string, a, b Symb) error {
	if err := defined(a, b); err != nil {
		return err
	}
	if a.Type == b.Type && (a.Type == TypeInt || a.Type == TypeFloat) {
		return nil
	}
	return Errorf(KindType, "%s: incompatible operands %s and %s", op, a.Type, b.Type)
}

func Add(a, b Symb) (Symb, error) {
	if err := numericPair("ADD", a, b); err != nil {
		return Symb{}, err
	}
	if a.Type == TypeInt {
		return Int(a.Int + b.Int), nil
	}
	return Float(a.Float + b.Float), nil
}

func Sub(a, b Symb) (Symb, error) {
	if err := numericPair("SUB", a, b); err != nil {
		return Symb{}, err
	}
	if a.Type == TypeInt {
		return Int(a.Int - b.Int), nil
	}
	return Float(a.Float - b.Float), nil
}

func Mul(a, b Symb) (Symb, error) {
	if err := numericPair("MUL", a, b); err != nil {
		return Symb{}, err
	}
	if a.Type == TypeInt {
		return Int(a.Int * b.Int), nil
	}
	return Float(a.Float * b.Float), nil
}

func zeroDivisor(op string, b Symb) error {
	if (b.Type == TypeInt && b.Int == 0) || (b.Type == TypeFloat && b.Float == 0) {
		return Errorf(KindOperandValue, "%s: division by zero", op)
	}
	return nil
}

// Div divides a by b. Integers truncate toward zero.
func Div(a, b Symb) (Symb, error) {
	if err := defined(a, b); err != nil {
		return Symb{}, err
	}
	if err := zeroDivisor("DIV", b); err != nil {
		return Symb{}, err
	}
	if err := numericPair("DIV", a, b); err != nil {
		return Symb{}, err
	}
	if a.Type == TypeInt {
		return Int(a.Int / b.Int), nil
	}
	return Float(a.Float / b.Float), nil
}

// IDiv is integer division; the result is always an Int.
func IDiv(a, b Symb) (Symb, error) {
	if err := defined(a, b); err != nil {
		return Symb{}, err
	}
	if err := zeroDivisor("IDIV", b); err != nil {
		return Symb{}, err
	}
	if err := numericPair("IDIV", a, b); err != nil {
		return Symb{}, err
	}
	if a.Type == TypeInt {
		return Int(a.Int / b.Int), nil
	}
	q := math.Trunc(a.Float / b.Float)
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return Symb{}, Errorf(KindOperandValue, "IDIV: result %v is not an integer", q)
	}
	return Int(int64(q)), nil
}

// compare orders two values of the same non-nil type.
func compare(op string, a, b Symb) (int, error) {
	if err := defined(a, b); err != nil {
		return 0, err
	}
	if a.IsNil() || b.IsNil() {
		return 0, Errorf(KindType, "%s: nil is not ordered", op)
	}
	if a.Type != b.Type {
		return 0, Errorf(KindType, "%s: incompatible operands %s and %s", op, a.Type, b.Type)
	}
	switch a.Type {
	case TypeInt:
		return cmpOrdered(a.Int, b.Int), nil
	case TypeFloat:
		return cmpOrdered(a.Float, b.Float), nil
	case TypeString:
		return cmpOrdered(Deescape(a.Str), Deescape(b.Str)), nil
	case TypeBool:
		return cmpOrdered(boolRank(a.Bool), boolRank(b.Bool)), nil
	}
	return 0, Errorf(KindInternal, "%s: unorderable type %s", op, a.Type)
}

func cmpOrdered[T int64 | float64 | string | int](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func Lt(a, b Symb) (Symb, error) {
	c, err := compare("LT", a, b)
	if err != nil {
		return Symb{}, err
	}
	return Bool(c < 0), nil
}

func Gt(a, b Symb) (Symb, error) {
	c, err := compare("GT", a, b)
	if err != nil {
		return Symb{}, err
	}
	return Bool(c > 0), nil
}

// Equal implements EQ and the JUMPIFEQ family. Nil equals only nil;
// otherwise both operands must share a type.
func Equal(a, b Symb) (bool, error) {
	if err := defined(a, b); err != nil {
		return false, err
	}
	if a.IsNil() || b.IsNil() {
		return a.IsNil() && b.IsNil(), nil
	}
	if a.Type != b.Type {
		return false, Errorf(KindType, "EQ: incompatible operands %s and %s", a.Type, b.Type)
	}
	switch a.Type {
	case TypeInt:
		return a.Int == b.Int, nil
	case TypeFloat:
		return a.Float == b.Float, nil
	case TypeBool:
		return a.Bool == b.Bool, nil
	case TypeString:
		return Deescape(a.Str) == Deescape(b.Str), nil
	}
	return false, Errorf(KindInternal, "EQ: unsupported type %s", a.Type)
}

func Eq(a, b Symb) (Symb, error) {
	eq, err := Equal(a, b)
	if err != nil {
		return Symb{}, err
	}
	return Bool(eq), nil
}

func boolPair(op string, a, b Symb) error {
	if err := defined(a, b); err != nil {
		return err
	}
	if a.Type != TypeBool || b.Type != TypeBool {
		return Errorf(KindType, "%s: expected bool operands, got %s and %s", op, a.Type, b.Type)
	}
	return nil
}

func And(a, b Symb) (Symb, error) {
	if err := boolPair("AND", a, b); err != nil {
		return Symb{}, err
	}
	return Bool(a.Bool && b.Bool), nil
}

func Or(a, b Symb) (Symb, error) {
	if err := boolPair("OR", a, b); err != nil {
		return Symb{}, err
	}
	return Bool(a.Bool || b.Bool), nil
}

func Not(a Symb) (Symb, error) {
	if err := defined(a); err != nil {
		return Symb{}, err
	}
	if a.Type != TypeBool {
		return Symb{}, Errorf(KindType, "NOT: expected bool operand, got %s", a.Type)
	}
	return Bool(!a.Bool), nil
}

func Int2Char(a Symb) (Symb, error) {
	if err := defined(a); err != nil {
		return Symb{}, err
	}
	if a.Type != TypeInt {
		return Symb{}, Errorf(KindType, "INT2CHAR: expected int operand, got %s", a.Type)
	}
	if a.Int < 0 || a.Int > utf8.MaxRune || !utf8.ValidRune(rune(a.Int)) {
		return Symb{}, Errorf(KindString, "INT2CHAR: %d is not a valid code point", a.Int)
	}
	return String(Escape(string(rune(a.Int)))), nil
}

// index validates s and i as a (string, int) pair and returns the
// de-escaped runes of s.
func index(op string, s, i Symb) ([]rune, error) {
	if err := defined(s, i); err != nil {
		return nil, err
	}
	if s.Type != TypeString {
		return nil, Errorf(KindType, "%s: expected string operand, got %s", op, s.Type)
	}
	if i.Type != TypeInt {
		return nil, Errorf(KindType, "%s: expected int index, got %s", op, i.Type)
	}
	if i.Int < 0 {
		return nil, Errorf(KindString, "%s: negative index %d", op, i.Int)
	}
	runes := []rune(Deescape(s.Str))
	if i.Int >= int64(len(runes)) {
		return nil, Errorf(KindString, "%s: index %d out of range for length %d", op, i.Int, len(runes))
	}
	return runes, nil
}

func Stri2Int(s, i Symb) (Symb, error) {
	runes, err := index("STRI2INT", s, i)
	if err != nil {
		return Symb{}, err
	}
	return Int(int64(runes[i.Int])), nil
}

func GetChar(s, i Symb) (Symb, error) {
	runes, err := index("GETCHAR", s, i)
	if err != nil {
		return Symb{}, err
	}
	return String(Escape(string(runes[i.Int]))), nil
}

// SetChar replaces the character of target at i with the first character
// of repl.
func SetChar(target, i, repl Symb) (Symb, error) {
	if err := defined(target, i, repl); err != nil {
		return Symb{}, err
	}
	if target.Type != TypeString {
		return Symb{}, Errorf(KindType, "SETCHAR: target must be string, got %s", target.Type)
	}
	if i.Type != TypeInt {
		return Symb{}, Errorf(KindType, "SETCHAR: expected int index, got %s", i.Type)
	}
	if i.Int < 0 {
		return Symb{}, Errorf(KindString, "SETCHAR: negative index %d", i.Int)
	}
	if repl.Type != TypeString {
		return Symb{}, Errorf(KindType, "SETCHAR: replacement must be string, got %s", repl.Type)
	}
	runes := []rune(Deescape(target.Str))
	if i.Int >= int64(len(runes)) {
		return Symb{}, Errorf(KindString, "SETCHAR: index %d out of range for length %d", i.Int, len(runes))
	}
	r, size := utf8.DecodeRuneInString(Deescape(repl.Str))
	if size == 0 {
		return Symb{}, Errorf(KindString, "SETCHAR: empty replacement")
	}
	runes[i.Int] = r
	return String(Escape(string(runes))), nil
}

func Int2Float(a Symb) (Symb, error) {
	if err := defined(a); err != nil {
		return Symb{}, err
	}
	if a.IsNil() {
		return Symb{}, Errorf(KindMissingValue, "INT2FLOAT: cannot convert nil")
	}
	if a.Type != TypeInt {
		return Symb{}, Errorf(KindType, "INT2FLOAT: expected int operand, got %s", a.Type)
	}
	return Float(float64(a.Int)), nil
}

func Float2Int(a Symb) (Symb, error) {
	if err := defined(a); err != nil {
		return Symb{}, err
	}
	if a.IsNil() {
		return Symb{}, Errorf(KindMissingValue, "FLOAT2INT: cannot convert nil")
	}
	if a.Type != TypeFloat {
		return Symb{}, Errorf(KindType, "FLOAT2INT: expected float operand, got %s", a.Type)
	}
	if math.IsNaN(a.Float) || math.IsInf(a.Float, 0) {
		return Symb{}, Errorf(KindOperandValue, "FLOAT2INT: %v has no integer value", a.Float)
	}
	return Int(int64(a.Float)), nil
}

func Concat(a, b Symb) (Symb, error) {
	if err := defined(a, b); err != nil {
		return Symb{}, err
	}
	if a.Type != TypeString || b.Type != TypeString {
		return Symb{}, Errorf(KindType, "CONCAT: expected string operands, got %s and %s", a.Type, b.Type)
	}
	return String(a.Str + b.Str), nil
}

func Strlen(a Symb) (Symb, error) {
	if err := defined(a); err != nil {
		return Symb{}, err
	}
	if a.Type != TypeString {
		return Symb{}, Errorf(KindType, "STRLEN: expected string operand, got %s", a.Type)
	}
	return Int(int64(utf8.RuneCountInString(Deescape(a.Str)))), nil
}

// TypeOf implements TYPE: the type name as a string, or nil for an
// uninitialized value.
func TypeOf(a Symb) Symb {
	if a.IsUndef() {
		return Nil()
	}
	return String(a.Type.String())
}
