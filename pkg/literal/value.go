package literal

import (
	"strconv"
	"strings"
)

// Value is a parsed literal value. The concrete types below are the only
// implementations; richer expression forms are rejected by the parser.
type Value interface {
	// String renders the value in Python-style literal notation. It is meant
	// for diagnostics, not round-tripping.
	String() string
}

// String is a text literal.
type String struct{ Value string }

// Int is an integer literal.
type Int struct{ Value int64 }

// Float is a floating-point literal.
type Float struct{ Value float64 }

// Bool is True or False.
type Bool struct{ Value bool }

// None is the null literal.
type None struct{}

// List is a [...] sequence.
type List struct{ Items []Value }

// Tuple is a (...) sequence.
type Tuple struct{ Items []Value }

func (v String) String() string { return quote(v.Value) }

func (v Int) String() string { return strconv.FormatInt(v.Value, 10) }

func (v Float) String() string { return strconv.FormatFloat(v.Value, 'g', -1, 64) }

func (v Bool) String() string {
	if v.Value {
		return "True"
	}
	return "False"
}

func (None) String() string { return "None" }

func (v List) String() string {
	return "[" + joinItems(v.Items) + "]"
}

func (v Tuple) String() string {
	// Single-element tuples carry a trailing comma to stay unambiguous.
	if len(v.Items) == 1 {
		return "(" + v.Items[0].String() + ",)"
	}
	return "(" + joinItems(v.Items) + ")"
}

func joinItems(items []Value) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return strings.Join(parts, ", ")
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
