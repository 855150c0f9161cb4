package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	// KindNull is a missing value.
	KindNull Kind = iota
	// KindText is a non-numeric string.
	KindText
	// KindNumber is a decimal number.
	KindNumber
	// KindBool is a boolean produced by predicates.
	KindBool
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindText:
		return "TEXT"
	case KindNumber:
		return "NUMBER"
	case KindBool:
		return "BOOL"
	default:
		return "UNKNOWN"
	}
}

// divisionScale is the number of fractional digits kept by division and AVG.
const divisionScale = 10

// Value is a single cell or expression result.
// Numbers keep the text they were parsed from so that cell values render unchanged.
type Value struct {
	kind Kind
	text string
	num  decimal.Decimal
	b    bool
}

// Null returns the missing value.
func Null() Value {
	return Value{}
}

// Text returns a text value without numeric detection.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number returns a numeric value rendered in canonical form.
func Number(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: d, text: d.String()}
}

// Int returns a numeric value from an integer.
func Int(n int64) Value {
	return Number(decimal.NewFromInt(n))
}

// ParseCell classifies raw cell text. Text whose decimal rendering round-trips
// becomes a Number, everything else stays Text.
func ParseCell(s string) Value {
	if d, ok := parseNumeric(s); ok {
		return Value{kind: KindNumber, num: d, text: s}
	}
	return Text(s)
}

// parseNumeric reports whether s is a plain decimal literal.
func parseNumeric(s string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, false
	}
	canonical := canonicalString(d)
	if trimmed == canonical {
		return d, true
	}
	if trimLeadingZeros(trimmed) == trimLeadingZeros(canonical) {
		return d, true
	}
	return decimal.Decimal{}, false
}

// trimLeadingZeros drops the zeros after an optional minus sign.
func trimLeadingZeros(s string) string {
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		return "-" + strings.TrimLeft(rest, "0")
	}
	return strings.TrimLeft(s, "0")
}

// canonicalString renders d keeping its scale, e.g. "1.50" stays "1.50".
func canonicalString(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// Kind returns the tag of v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is missing.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// String renders v as text. Missing values render as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindText, KindNumber:
		return v.text
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// Nullable renders v as nullable text.
func (v Value) Nullable() (string, bool) {
	if v.kind == KindNull {
		return "", false
	}
	return v.String(), true
}

// Decimal returns the numeric meaning of v.
func (v Value) Decimal() (decimal.Decimal, bool) {
	if v.kind == KindNumber {
		return v.num, true
	}
	return decimal.Decimal{}, false
}

// Truthy applies boolean coercion: numbers are true when non-zero,
// text when non-empty, missing values are false.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return !v.num.IsZero()
	case KindText:
		return v.text != ""
	default:
		return false
	}
}

// Compare orders two values. Missing sorts lowest, two numbers compare
// numerically and anything else compares as text.
func Compare(a, b Value) int {
	switch {
	case a.IsNull() && b.IsNull():
		return 0
	case a.IsNull():
		return -1
	case b.IsNull():
		return 1
	}
	if ad, ok := a.Decimal(); ok {
		if bd, ok := b.Decimal(); ok {
			return ad.Cmp(bd)
		}
	}
	return strings.Compare(a.String(), b.String())
}

// OpConcat is the string concatenation operator. Missing operands concatenate as empty text.
const OpConcat = "||"

// Arithmetic applies op to two numeric values. Non-numeric operands and
// division by zero yield a missing value.
func Arithmetic(op string, a, b Value) Value {
	if op == OpConcat {
		return ParseCell(a.String() + b.String())
	}
	ad, ok := a.Decimal()
	if !ok {
		return Null()
	}
	bd, ok := b.Decimal()
	if !ok {
		return Null()
	}
	switch op {
	case "+":
		return Number(ad.Add(bd))
	case "-":
		return Number(ad.Sub(bd))
	case "*":
		return Number(ad.Mul(bd))
	case "/":
		if bd.IsZero() {
			return Null()
		}
		return Number(ad.DivRound(bd, divisionScale))
	case "%":
		if bd.IsZero() {
			return Null()
		}
		return Number(ad.Mod(bd))
	default:
		return Null()
	}
}

// Average divides sum by count with the division scale.
func Average(sum decimal.Decimal, count int64) Value {
	if count == 0 {
		return Null()
	}
	return Number(sum.DivRound(decimal.NewFromInt(count), divisionScale))
}
