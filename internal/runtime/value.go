// Package runtime implements the LAVA evaluator and its value system.
package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"lava-lang/internal/ast"
)

// Value is the interface for all runtime values.
type Value interface {
	TypeName() string
	String() string
}

// ---- Primitive values ----

// IntVal represents an integer value.
type IntVal int64

func (v IntVal) TypeName() string { return "int" }
func (v IntVal) String() string   { return strconv.FormatInt(int64(v), 10) }

// FloatVal represents a floating-point value.
type FloatVal float64

func (v FloatVal) TypeName() string { return "float" }
func (v FloatVal) String() string   { return formatFloat(float64(v)) }

// StringVal represents a string value. Booleans, null and undecided are
// StringVals holding one of the sentinel words.
type StringVal string

func (v StringVal) TypeName() string { return "string" }
func (v StringVal) String() string   { return string(v) }

// Sentinels. LAVA has no native boolean or null type.
const (
	Slay   StringVal = "slay"
	Cap    StringVal = "cap"
	Nvm    StringVal = "nvm"
	Delulu StringVal = "delulu"
)

// Bool converts a Go bool to slay or cap.
func Bool(b bool) StringVal {
	if b {
		return Slay
	}
	return Cap
}

// IsSlay reports whether v is the true sentinel. Every other value,
// including non-empty strings and non-zero numbers, counts as false.
func IsSlay(v Value) bool {
	s, ok := v.(StringVal)
	return ok && s == Slay
}

// ---- Array value ----

// ArrayVal is a mutable sequence. Arrays are shared by reference until a
// squad declaration copies them.
type ArrayVal struct {
	Elements []Value
}

func (v *ArrayVal) TypeName() string { return "array" }
func (v *ArrayVal) String() string {
	var sb strings.Builder
	writeArray(&sb, v, map[*ArrayVal]bool{})
	return sb.String()
}

func writeArray(sb *strings.Builder, arr *ArrayVal, seen map[*ArrayVal]bool) {
	if seen[arr] {
		sb.WriteString("[...]")
		return
	}
	seen[arr] = true
	defer delete(seen, arr)

	sb.WriteByte('[')
	for i, elem := range arr.Elements {
		if i > 0 {
			sb.WriteString(", ")
		}
		switch e := elem.(type) {
		case StringVal:
			sb.WriteString(quoteString(string(e)))
		case *ArrayVal:
			writeArray(sb, e, seen)
		default:
			sb.WriteString(elem.String())
		}
	}
	sb.WriteByte(']')
}

// quoteString renders a string element inside an array: single quotes,
// unless the text holds a single quote and no double quote.
func quoteString(s string) string {
	quote := "'"
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		quote = `"`
	}
	r := strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`, quote, `\`+quote)
	return quote + r.Replace(s) + quote
}

// ---- Callable values ----

// FuncVal is a function declared with cook. It captures no environment.
type FuncVal struct {
	Name   string
	Params []string
	Body   []ast.Stmt
}

func (v *FuncVal) TypeName() string { return "function" }
func (v *FuncVal) String() string   { return fmt.Sprintf("<cook %s>", v.Name) }

// BuiltinFn is the Go signature for built-in functions.
type BuiltinFn func(args []Value) (Value, error)

// BuiltinVal represents a built-in (native) function.
type BuiltinVal struct {
	Name string
	Fn   BuiltinFn
}

func (v *BuiltinVal) TypeName() string { return "builtin" }
func (v *BuiltinVal) String() string   { return fmt.Sprintf("<builtin %s>", v.Name) }

// ---- Formatting ----

// formatFloat prints integral floats with a trailing ".0" and switches to
// exponent notation outside [1e-4, 1e16).
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ---- Conversions ----

// toNumber parses s as a decimal integer, then as a decimal float. ok is
// false when s is not numeric. Single underscores between digits are
// allowed; hexadecimal and other base prefixes are not.
func toNumber(s string) (Value, bool) {
	s, ok := stripDigitSeparators(strings.TrimSpace(s))
	if !ok || s == "" {
		return nil, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntVal(n), true
	}
	unsigned := strings.TrimLeft(s, "+-")
	if len(unsigned) > 1 && unsigned[0] == '0' && strings.ContainsAny(unsigned[1:2], "xXoObB") {
		return nil, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return FloatVal(f), true
	}
	return nil, false
}

// stripDigitSeparators removes underscores that sit between two digits and
// rejects any other underscore.
func stripDigitSeparators(s string) (string, bool) {
	if !strings.Contains(s, "_") {
		return s, true
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			sb.WriteByte(s[i])
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigitByte(s[i-1]) || !isDigitByte(s[i+1]) {
			return "", false
		}
	}
	return sb.String(), true
}

func isDigitByte(c byte) bool { return c >= '0' && c <= '9' }

func isNumber(v Value) bool {
	switch v.(type) {
	case IntVal, FloatVal:
		return true
	}
	return false
}

// ToFloat64 attempts to convert a numeric value to float64.
func ToFloat64(v Value) (float64, bool) {
	switch val := v.(type) {
	case IntVal:
		return float64(int64(val)), true
	case FloatVal:
		return float64(val), true
	default:
		return 0, false
	}
}

// deepCopy clones arrays recursively. Shared and cyclic sub-arrays keep
// their shape in the copy.
func deepCopy(v Value) Value {
	return copyWithMemo(v, map[*ArrayVal]*ArrayVal{})
}

func copyWithMemo(v Value, memo map[*ArrayVal]*ArrayVal) Value {
	arr, ok := v.(*ArrayVal)
	if !ok {
		return v
	}
	if dup, ok := memo[arr]; ok {
		return dup
	}
	dup := &ArrayVal{Elements: make([]Value, len(arr.Elements))}
	memo[arr] = dup
	for i, elem := range arr.Elements {
		dup.Elements[i] = copyWithMemo(elem, memo)
	}
	return dup
}

// ---- Comparison ----

// valuesEqual compares numbers by value across int and float, strings and
// arrays structurally, and everything else by identity.
func valuesEqual(a, b Value) bool {
	return equalWithSeen(a, b, map[[2]*ArrayVal]bool{})
}

func equalWithSeen(a, b Value, seen map[[2]*ArrayVal]bool) bool {
	if isNumber(a) && isNumber(b) {
		ai, aInt := a.(IntVal)
		bi, bInt := b.(IntVal)
		if aInt && bInt {
			return ai == bi
		}
		af, _ := ToFloat64(a)
		bf, _ := ToFloat64(b)
		return af == bf
	}

	switch av := a.(type) {
	case StringVal:
		bv, ok := b.(StringVal)
		return ok && av == bv
	case *ArrayVal:
		bv, ok := b.(*ArrayVal)
		if !ok {
			return false
		}
		if av == bv {
			return true
		}
		if len(av.Elements) != len(bv.Elements) {
			return false
		}
		key := [2]*ArrayVal{av, bv}
		if seen[key] {
			return true
		}
		seen[key] = true
		for i := range av.Elements {
			if !equalWithSeen(av.Elements[i], bv.Elements[i], seen) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// compareValues orders two numbers or two strings. ok is false for any
// other pairing.
func compareValues(a, b Value) (cmp int, ok bool) {
	if isNumber(a) && isNumber(b) {
		ai, aInt := a.(IntVal)
		bi, bInt := b.(IntVal)
		if aInt && bInt {
			return compareOrdered(ai, bi), true
		}
		af, _ := ToFloat64(a)
		bf, _ := ToFloat64(b)
		return compareOrdered(af, bf), true
	}
	as, aStr := a.(StringVal)
	bs, bStr := b.(StringVal)
	if aStr && bStr {
		return strings.Compare(string(as), string(bs)), true
	}
	return 0, false
}

func compareOrdered[T IntVal | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
