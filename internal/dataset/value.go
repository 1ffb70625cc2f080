package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Kind classifies a cell value.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindString
)

// Value is a single typed cell. The zero Value is missing.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
}

// Missing returns the missing value.
func Missing() Value { return Value{} }

// Number wraps a float; NaN and infinities are stored as missing.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{Kind: KindNumber, Num: f}
}

// String wraps a string; the empty string is stored as missing.
func String(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{Kind: KindString, Str: s}
}

// Infer types a raw text cell: blank is missing, a plain float is a number, anything
// else stays text.
func Infer(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Missing()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(f)
	}
	return String(raw)
}

// IsMissing reports whether the cell has no value.
func (v Value) IsMissing() bool { return v.Kind == KindMissing }

// Float coerces the cell to a number. Text is accepted when it parses after removing
// thousands separators and currency symbols; anything else is not numeric.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindString:
		return parseFloatLoose(v.Str)
	default:
		return 0, false
	}
}

// Text renders the cell as text; missing renders as "".
func (v Value) Text() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindString:
		return v.Str
	default:
		return ""
	}
}

// JSON returns the value for row-table serialization: numbers stay numeric and
// missing becomes "".
func (v Value) JSON() any {
	if v.Kind == KindNumber {
		return v.Num
	}
	return v.Text()
}

func parseFloatLoose(s string) (float64, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, false
	}
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ',', '$', '₹', ' ':
			return -1
		default:
			return r
		}
	}, s)
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
