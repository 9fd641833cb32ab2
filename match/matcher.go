package match

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Result is the outcome of matching a value against a template. On failure,
// Path names the chain of object keys and array indexes leading to the first
// mismatch, and Expected/Actual describe the two sides at that point.
type Result struct {
	OK       bool
	Path     []string
	Reason   string
	Expected string
	Actual   string
}

// PathString renders the mismatch path as a dotted chain, or "(root)" when
// the mismatch is at the top level.
func (r Result) PathString() string {
	if len(r.Path) == 0 {
		return "(root)"
	}
	return strings.Join(r.Path, ".")
}

func (r Result) String() string {
	if r.OK {
		return "match"
	}
	return fmt.Sprintf("at %s: %s (expected %s, got %s)",
		r.PathString(), r.Reason, r.Expected, r.Actual)
}

// Match compares an actual JSON value against a template. It is a pure
// predicate: neither input is modified.
func Match(actual ldvalue.Value, expected Template) Result {
	return matchAt(actual, expected, nil)
}

func matchAt(actual ldvalue.Value, t Template, path []string) Result {
	switch e := t.(type) {
	case anyValue:
		// always matches
	case literal:
		if !actual.Equal(e.value) {
			return mismatch(path, "value differs", e.value.JSONString(), actual)
		}
	case typedLiteral:
		if actual.Type() != e.kind {
			return mismatch(path,
				fmt.Sprintf("JSON type is %s, want %s", typeName(actual.Type()), typeName(e.kind)),
				t.String(), actual)
		}
		if e.hasValue && !actual.Equal(e.value) {
			return mismatch(path, "value differs", e.value.JSONString(), actual)
		}
	case supersetOf:
		if actual.Type() != ldvalue.ObjectType {
			return mismatch(path,
				fmt.Sprintf("JSON type is %s, want object", typeName(actual.Type())),
				t.String(), actual)
		}
		for _, key := range sortedKeys(e.fields) {
			sub, ok := actual.TryGetByKey(key)
			if !ok {
				return mismatch(childPath(path, key), "required key is absent",
					e.fields[key].String(), ldvalue.Null())
			}
			if r := matchAt(sub, e.fields[key], childPath(path, key)); !r.OK {
				return r
			}
		}
	case sequence:
		if actual.Type() != ldvalue.ArrayType {
			return mismatch(path,
				fmt.Sprintf("JSON type is %s, want array", typeName(actual.Type())),
				t.String(), actual)
		}
		if actual.Count() != len(e.elems) {
			return mismatch(path,
				fmt.Sprintf("array has %d elements, want %d", actual.Count(), len(e.elems)),
				t.String(), actual)
		}
		for i, sub := range e.elems {
			p := childPath(path, strconv.Itoa(i))
			if r := matchAt(actual.GetByIndex(i), sub, p); !r.OK {
				return r
			}
		}
	}
	return Result{OK: true}
}

func mismatch(path []string, reason, expected string, actual ldvalue.Value) Result {
	return Result{
		Path:     path,
		Reason:   reason,
		Expected: expected,
		Actual:   actual.JSONString(),
	}
}

// childPath copies before appending so sibling branches never share storage.
func childPath(path []string, key string) []string {
	p := make([]string, len(path), len(path)+1)
	copy(p, path)
	return append(p, key)
}

func sortedKeys(m map[string]Template) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
