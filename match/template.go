// Package match implements the structural comparison engine used by the
// test suite to describe acceptable response shapes.
//
// A Template is one of a small closed set of variants: an exact literal, a
// typed literal (which asserts the JSON type as well as the value), a
// superset-of-object pattern (the actual object must contain at least the
// given keys, extra keys are ignored), or a sequence of element templates.
// Matching is a pure predicate that also produces a diagnostic trail naming
// the path to the first mismatch.
package match

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Template describes an acceptable shape for a JSON value.
type Template interface {
	isTemplate()
	String() string
}

type literal struct {
	value ldvalue.Value
}

type typedLiteral struct {
	kind     ldvalue.ValueType
	value    ldvalue.Value
	hasValue bool
}

type supersetOf struct {
	fields map[string]Template
}

type sequence struct {
	elems []Template
}

type anyValue struct{}

func (literal) isTemplate()      {}
func (typedLiteral) isTemplate() {}
func (supersetOf) isTemplate()   {}
func (sequence) isTemplate()     {}
func (anyValue) isTemplate()     {}

// Any matches every JSON value. Useful for asserting only that a key is
// present when the protocol allows the server to choose the value's shape.
func Any() Template { return anyValue{} }

func (anyValue) String() string { return "any value" }

// Literal matches exactly the given value, with ordinary JSON equality.
func Literal(v ldvalue.Value) Template { return literal{value: v} }

// String matches exactly the given JSON string. Because ldvalue values carry
// their JSON type, this is inherently type-strict.
func String(s string) Template {
	return typedLiteral{kind: ldvalue.StringType, value: ldvalue.String(s), hasValue: true}
}

// Number matches a JSON number with the given value. A string that happens
// to spell the same number does not match.
func Number(n float64) Template {
	return typedLiteral{kind: ldvalue.NumberType, value: ldvalue.Float64(n), hasValue: true}
}

// Int is shorthand for Number with an integer value.
func Int(n int) Template { return Number(float64(n)) }

// Bool matches a JSON boolean with the given value.
func Bool(b bool) Template {
	return typedLiteral{kind: ldvalue.BoolType, value: ldvalue.Bool(b), hasValue: true}
}

// Null matches JSON null.
func Null() Template {
	return typedLiteral{kind: ldvalue.NullType}
}

// AnyString matches any JSON string.
func AnyString() Template { return typedLiteral{kind: ldvalue.StringType} }

// AnyNumber matches any JSON number.
func AnyNumber() Template { return typedLiteral{kind: ldvalue.NumberType} }

// AnyBool matches any JSON boolean.
func AnyBool() Template { return typedLiteral{kind: ldvalue.BoolType} }

// SupersetOf matches any JSON object that contains at least the given keys,
// each matching its template. Keys not mentioned are ignored, since servers
// are free to return extra properties.
func SupersetOf(fields map[string]Template) Template {
	copied := make(map[string]Template, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return supersetOf{fields: copied}
}

// Sequence matches a JSON array of exactly len(elems) elements, each
// matching the template at the same position.
func Sequence(elems ...Template) Template {
	return sequence{elems: append([]Template(nil), elems...)}
}

func (t literal) String() string {
	return t.value.JSONString()
}

func (t typedLiteral) String() string {
	if t.hasValue {
		return fmt.Sprintf("%s %s", typeName(t.kind), t.value.JSONString())
	}
	return fmt.Sprintf("any %s", typeName(t.kind))
}

func (t supersetOf) String() string {
	keys := make([]string, 0, len(t.fields))
	for k := range t.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%q: %s", k, t.fields[k]))
	}
	return "object containing at least {" + strings.Join(parts, ", ") + "}"
}

func (t sequence) String() string {
	parts := make([]string, 0, len(t.elems))
	for _, e := range t.elems {
		parts = append(parts, e.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func typeName(t ldvalue.ValueType) string {
	switch t {
	case ldvalue.NullType:
		return "null"
	case ldvalue.BoolType:
		return "boolean"
	case ldvalue.NumberType:
		return "number"
	case ldvalue.StringType:
		return "string"
	case ldvalue.ArrayType:
		return "array"
	case ldvalue.ObjectType:
		return "object"
	}
	return "unknown"
}
