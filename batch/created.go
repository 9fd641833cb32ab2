package batch

import (
	"github.com/jmap-tools/jmap-contract-tests/jmap"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// CreatedResult is one entry of a /set response's created map: the
// server-assigned permanent id plus whatever properties the server computed
// on the client's behalf. Produced once per response and never mutated.
type CreatedResult struct {
	ServerID   string
	Properties ldvalue.Value
}

// CreationOutcome holds both halves of a /set response's verdict on the
// creation ids the call offered.
type CreationOutcome struct {
	Created    map[string]CreatedResult
	NotCreated map[string]jmap.SetError
}

// ExtractCreated reads the created map out of a /set response's arguments.
// Returns an empty map when the response has no created key.
func ExtractCreated(args ldvalue.Value) map[string]CreatedResult {
	out := make(map[string]CreatedResult)
	created := args.GetByKey("created")
	for _, tempID := range created.Keys() {
		props := created.GetByKey(tempID)
		out[tempID] = CreatedResult{
			ServerID:   props.GetByKey("id").StringValue(),
			Properties: props,
		}
	}
	return out
}

// ExtractNotCreated reads the notCreated map out of a /set response's
// arguments. Returns an empty map when the response has no notCreated key.
func ExtractNotCreated(args ldvalue.Value) map[string]jmap.SetError {
	out := make(map[string]jmap.SetError)
	notCreated := args.GetByKey("notCreated")
	for _, tempID := range notCreated.Keys() {
		out[tempID] = jmap.ParseSetError(notCreated.GetByKey(tempID))
	}
	return out
}

// ExtractCreation reads both created and notCreated from a /set response.
func ExtractCreation(args ldvalue.Value) CreationOutcome {
	return CreationOutcome{
		Created:    ExtractCreated(args),
		NotCreated: ExtractNotCreated(args),
	}
}

// CreatedID resolves a creation id to the permanent server id. Lookups are
// idempotent. When the temp id was not created, whether rejected or simply
// absent from the response, the error is an
// *UnresolvedCreationReferenceError, so callers must check success before
// dereferencing.
func (o CreationOutcome) CreatedID(tempID string) (string, error) {
	if result, ok := o.Created[tempID]; ok {
		return result.ServerID, nil
	}
	if setErr, ok := o.NotCreated[tempID]; ok {
		e := setErr
		return "", &UnresolvedCreationReferenceError{TempID: tempID, NotCreated: &e}
	}
	return "", &UnresolvedCreationReferenceError{TempID: tempID}
}

// CreationIDs returns the creation (temp) ids offered by a /set call's
// create map, or nil when the call creates nothing.
func CreationIDs(callArgs ldvalue.Value) []string {
	create := callArgs.GetByKey("create")
	if create.Type() != ldvalue.ObjectType {
		return nil
	}
	return create.Keys()
}
