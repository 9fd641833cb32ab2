// Package batch implements the request/response correlation and invariant
// checking engine: pairing method calls with method responses by correlation
// id, resolving server-assigned ids for created objects, and verifying the
// set-level rules every compliant server must satisfy.
package batch

import (
	"fmt"
	"strings"
)

// ViolationKind classifies a protocol non-conformance detected in a batch.
type ViolationKind string

const (
	// KindCorrelationMismatch means a call had no matching response, a
	// response answered no call, or a correlation id was answered twice.
	KindCorrelationMismatch ViolationKind = "CorrelationMismatch"

	// KindCreationIDMismatch means the ids mentioned in created/notCreated
	// do not exactly cover the ids offered in the call's create map.
	KindCreationIDMismatch ViolationKind = "CreationIdMismatch"

	// KindUnknownProperty means strict mode found a returned property that
	// is not in the allowlist for the object's data type. Informational.
	KindUnknownProperty ViolationKind = "UnknownProperty"
)

// Violation is one detected non-conformance. Violations are accumulated and
// reported; they never abort processing of the rest of the batch.
type Violation struct {
	Kind          ViolationKind
	CorrelationID string

	// Missing and Extra carry the symmetric difference for a
	// CreationIdMismatch: ids offered but unanswered, and ids answered but
	// never offered.
	Missing []string
	Extra   []string

	// TempID and Property identify the offending property for an
	// UnknownProperty violation.
	TempID   string
	Property string

	Detail string
}

func (v Violation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", v.Kind)
	if v.CorrelationID != "" {
		fmt.Fprintf(&b, " [call %q]", v.CorrelationID)
	}
	if len(v.Missing) > 0 {
		fmt.Fprintf(&b, " missing: %s", strings.Join(v.Missing, ", "))
	}
	if len(v.Extra) > 0 {
		fmt.Fprintf(&b, " extra: %s", strings.Join(v.Extra, ", "))
	}
	if v.Property != "" {
		fmt.Fprintf(&b, " property %q on created object %q", v.Property, v.TempID)
	}
	if v.Detail != "" {
		fmt.Fprintf(&b, ": %s", v.Detail)
	}
	return b.String()
}
