package batch

import (
	"sort"

	"github.com/jmap-tools/jmap-contract-tests/jmap"
)

// CheckOptions configures the invariant checker.
type CheckOptions struct {
	// StrictProperties enables the unknown-property scan over created
	// objects. Findings are informational and never stop the scan.
	StrictProperties bool
}

// Check verifies the set-level invariants of a correlated batch and returns
// every violation found. It never stops at the first defect: the point of
// the harness is a complete report, not a fast one.
//
// The invariant for every call carrying a non-empty create map is that the
// union of the response's created and notCreated keys equals exactly the set
// of creation ids offered: no missing, no extra.
func Check(calls []jmap.MethodCall, res Resolution, opts CheckOptions) []Violation {
	var out []Violation
	for _, call := range calls {
		tempIDs := CreationIDs(call.Arguments)
		if len(tempIDs) == 0 {
			continue
		}
		resp, ok := res.ResponseFor(call.CorrelationID)
		if !ok || resp.Name == jmap.ErrorMethodName {
			// Already reported as a correlation defect, or the whole call
			// failed; there is no created map to cross-check.
			continue
		}
		outcome := ExtractCreation(resp.Arguments)
		if v, bad := creationIDMismatch(call.CorrelationID, tempIDs, outcome); bad {
			out = append(out, v)
		}
		if opts.StrictProperties {
			out = append(out, scanUnknownProperties(call, outcome)...)
		}
	}
	return out
}

func creationIDMismatch(correlationID string, offered []string, outcome CreationOutcome) (Violation, bool) {
	answered := make(map[string]bool, len(outcome.Created)+len(outcome.NotCreated))
	for id := range outcome.Created {
		answered[id] = true
	}
	for id := range outcome.NotCreated {
		answered[id] = true
	}

	v := Violation{Kind: KindCreationIDMismatch, CorrelationID: correlationID}
	offeredSet := make(map[string]bool, len(offered))
	for _, id := range offered {
		offeredSet[id] = true
		if !answered[id] {
			v.Missing = append(v.Missing, id)
		}
	}
	for id := range answered {
		if !offeredSet[id] {
			v.Extra = append(v.Extra, id)
		}
	}
	sort.Strings(v.Missing)
	sort.Strings(v.Extra)
	return v, len(v.Missing) > 0 || len(v.Extra) > 0
}

// scanUnknownProperties checks every property the server returned for each
// created object against the allowlist for the call's data type. Entries in
// notCreated are SetError shapes, not object property bags, so they are
// deliberately outside the scan.
func scanUnknownProperties(call jmap.MethodCall, outcome CreationOutcome) []Violation {
	dataType := jmap.TypeForMethod(call.Name)
	if !jmap.HasPropertyAllowlist(dataType) {
		return nil
	}
	var out []Violation
	tempIDs := make([]string, 0, len(outcome.Created))
	for id := range outcome.Created {
		tempIDs = append(tempIDs, id)
	}
	sort.Strings(tempIDs)
	for _, tempID := range tempIDs {
		props := outcome.Created[tempID].Properties
		keys := props.Keys()
		sort.Strings(keys)
		for _, key := range keys {
			if !jmap.IsKnownProperty(dataType, key) {
				out = append(out, Violation{
					Kind:          KindUnknownProperty,
					CorrelationID: call.CorrelationID,
					TempID:        tempID,
					Property:      key,
					Detail:        "not a " + dataType + " property",
				})
			}
		}
	}
	return out
}
