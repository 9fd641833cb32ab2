package batch

import (
	"fmt"

	"github.com/jmap-tools/jmap-contract-tests/jmap"
)

// Resolution is the outcome of pairing a sent batch of calls with a received
// batch of responses by correlation id. Missing, Extra and Duplicates record
// protocol violations; they never prevent the rest of the batch from being
// inspected, since surfacing exactly these defects is the harness's job.
type Resolution struct {
	byID map[string]jmap.MethodResponse

	// Missing lists call ids that no response answered, in call order.
	Missing []string

	// Extra lists response ids that answer no call, in response order.
	Extra []string

	// Duplicates lists response ids that appeared more than once. The
	// first-seen response wins; later ones are recorded here and dropped.
	Duplicates []string
}

// Correlate pairs calls with responses by correlation id. Response order is
// irrelevant: a server may compute results in any order as long as it echoes
// the ids it was given.
func Correlate(calls []jmap.MethodCall, responses []jmap.MethodResponse) Resolution {
	r := Resolution{byID: make(map[string]jmap.MethodResponse, len(responses))}

	for _, resp := range responses {
		if _, seen := r.byID[resp.CorrelationID]; seen {
			r.Duplicates = append(r.Duplicates, resp.CorrelationID)
			continue
		}
		r.byID[resp.CorrelationID] = resp
	}

	answered := make(map[string]bool, len(calls))
	for _, call := range calls {
		answered[call.CorrelationID] = true
		if _, ok := r.byID[call.CorrelationID]; !ok {
			r.Missing = append(r.Missing, call.CorrelationID)
		}
	}
	for _, resp := range responses {
		if !answered[resp.CorrelationID] {
			answered[resp.CorrelationID] = true // report each extra id once
			r.Extra = append(r.Extra, resp.CorrelationID)
		}
	}
	return r
}

// ResponseFor returns the response answering the given correlation id.
func (r Resolution) ResponseFor(correlationID string) (jmap.MethodResponse, bool) {
	resp, ok := r.byID[correlationID]
	return resp, ok
}

// Violations renders the correlation defects as reportable violations.
func (r Resolution) Violations() []Violation {
	var out []Violation
	for _, id := range r.Missing {
		out = append(out, Violation{
			Kind:          KindCorrelationMismatch,
			CorrelationID: id,
			Detail:        "call has no matching response",
		})
	}
	for _, id := range r.Extra {
		out = append(out, Violation{
			Kind:          KindCorrelationMismatch,
			CorrelationID: id,
			Detail:        "response does not answer any call",
		})
	}
	for _, id := range r.Duplicates {
		out = append(out, Violation{
			Kind:          KindCorrelationMismatch,
			CorrelationID: id,
			Detail:        "correlation id answered more than once",
		})
	}
	return out
}

// UnresolvedCreationReferenceError is returned when a test asks for the
// server id of a creation id that was never successfully created. This is a
// test-author error distinct from server non-conformance, so it carries
// enough detail to say which of the two failure modes applies.
type UnresolvedCreationReferenceError struct {
	TempID string

	// NotCreated is non-nil when the server explicitly rejected the
	// creation; nil when the temp id simply never appeared in the response.
	NotCreated *jmap.SetError
}

func (e *UnresolvedCreationReferenceError) Error() string {
	if e.NotCreated != nil {
		return fmt.Sprintf("creation id %q was rejected by the server: %s", e.TempID, e.NotCreated)
	}
	return fmt.Sprintf("creation id %q does not appear in the response", e.TempID)
}
