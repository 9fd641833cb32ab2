package jmap

import (
	"encoding/json"
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Capability URNs that the harness always declares in the request envelope.
const (
	CoreCapability = "urn:ietf:params:jmap:core"
	MailCapability = "urn:ietf:params:jmap:mail"
)

// ErrorMethodName is the method name a server uses in a response when it
// could not execute the corresponding call at all.
const ErrorMethodName = "error"

// MethodCall is one logical method invocation within a request batch. On the
// wire it is the three-element array [name, arguments, correlationID].
// Immutable once sent.
type MethodCall struct {
	Name          string
	Arguments     ldvalue.Value
	CorrelationID string
}

// MethodResponse is one method result within a response batch, echoing the
// correlation id of the call it answers. Read-only.
type MethodResponse struct {
	Name          string
	Arguments     ldvalue.Value
	CorrelationID string
}

// Request is the JMAP request envelope.
type Request struct {
	Using       []string     `json:"using"`
	MethodCalls []MethodCall `json:"methodCalls"`
}

// Response is the JMAP response envelope.
type Response struct {
	MethodResponses []MethodResponse `json:"methodResponses"`
	SessionState    string           `json:"sessionState"`
}

func (c MethodCall) MarshalJSON() ([]byte, error) {
	return marshalInvocation(c.Name, c.Arguments, c.CorrelationID)
}

func (c *MethodCall) UnmarshalJSON(data []byte) error {
	return unmarshalInvocation(data, &c.Name, &c.Arguments, &c.CorrelationID)
}

func (r MethodResponse) MarshalJSON() ([]byte, error) {
	return marshalInvocation(r.Name, r.Arguments, r.CorrelationID)
}

func (r *MethodResponse) UnmarshalJSON(data []byte) error {
	return unmarshalInvocation(data, &r.Name, &r.Arguments, &r.CorrelationID)
}

func marshalInvocation(name string, args ldvalue.Value, id string) ([]byte, error) {
	if args.IsNull() {
		args = ldvalue.ObjectBuild().Build()
	}
	return json.Marshal([3]interface{}{name, args, id})
}

func unmarshalInvocation(data []byte, name *string, args *ldvalue.Value, id *string) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("invocation is not a JSON array: %w", err)
	}
	if len(parts) != 3 {
		return fmt.Errorf("invocation has %d elements, want 3", len(parts))
	}
	if err := json.Unmarshal(parts[0], name); err != nil {
		return fmt.Errorf("invocation name: %w", err)
	}
	if err := json.Unmarshal(parts[1], args); err != nil {
		return fmt.Errorf("invocation arguments: %w", err)
	}
	if err := json.Unmarshal(parts[2], id); err != nil {
		return fmt.Errorf("invocation correlation id: %w", err)
	}
	return nil
}

// SetError is the error detail a server attaches to a notCreated (or
// notUpdated/notDestroyed) entry in a /set response.
type SetError struct {
	Type        string
	Description string
	Properties  []string
}

// ParseSetError reads the SetError fields out of a decoded error object.
// Unknown or missing fields are left at their zero values.
func ParseSetError(v ldvalue.Value) SetError {
	e := SetError{
		Type:        v.GetByKey("type").StringValue(),
		Description: v.GetByKey("description").StringValue(),
	}
	props := v.GetByKey("properties")
	for i := 0; i < props.Count(); i++ {
		e.Properties = append(e.Properties, props.GetByIndex(i).StringValue())
	}
	return e
}

func (e SetError) String() string {
	if e.Description == "" {
		return e.Type
	}
	return fmt.Sprintf("%s (%s)", e.Type, e.Description)
}
