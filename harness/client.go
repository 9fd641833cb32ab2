package harness

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jmap-tools/jmap-contract-tests/batch"
	"github.com/jmap-tools/jmap-contract-tests/jmap"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Call is one method call to include in a batch. CorrelationID may be left
// empty, in which case the client assigns one that is unique within the
// batch ("0" for a single-call shorthand request).
type Call struct {
	Name          string
	Arguments     ldvalue.Value
	CorrelationID string
}

// Client issues JMAP batches for one account through a Transport, and runs
// correlation, creation-id extraction, and invariant checks on every
// exchange before handing the result to a test. One batch at a time; each
// Do call is a full blocking round trip.
type Client struct {
	transport Transport
	accountID string
	using     []string
	strict    bool
}

// NewClient creates a client for the given account. strictProperties enables
// the unknown-property scan on every batch.
func NewClient(transport Transport, accountID string, strictProperties bool) *Client {
	return &Client{
		transport: transport,
		accountID: accountID,
		using:     []string{jmap.CoreCapability, jmap.MailCapability},
		strict:    strictProperties,
	}
}

// AccountID returns the account this client issues calls against.
func (c *Client) AccountID() string { return c.accountID }

// Do sends one batch and returns the fully analyzed result. A single call is
// the shorthand form; multiple calls form a full batch. Transport failures
// are returned as an error and mean the batch produced no result at all.
func (c *Client) Do(ctx context.Context, calls ...Call) (*BatchResult, error) {
	if len(calls) == 0 {
		return nil, fmt.Errorf("batch contains no calls")
	}

	sent := c.normalize(calls)
	response, err := c.transport.SendBatch(ctx, jmap.Request{
		Using:       c.using,
		MethodCalls: sent,
	})
	if err != nil {
		return nil, err
	}

	resolution := batch.Correlate(sent, response.MethodResponses)
	violations := resolution.Violations()
	violations = append(violations, batch.Check(sent, resolution,
		batch.CheckOptions{StrictProperties: c.strict})...)

	result := &BatchResult{
		Calls:      sent,
		Response:   response,
		Resolution: resolution,
		Violations: violations,
		creation:   make(map[string]batch.CreationOutcome),
	}
	for _, call := range sent {
		if len(batch.CreationIDs(call.Arguments)) == 0 {
			continue
		}
		if resp, ok := resolution.ResponseFor(call.CorrelationID); ok {
			result.creation[call.CorrelationID] = batch.ExtractCreation(resp.Arguments)
		}
	}
	return result, nil
}

// normalize assigns missing correlation ids and injects the account id into
// any call that does not name one. Auto-assigned ids are sequential within
// the batch, skipping any the caller chose explicitly.
func (c *Client) normalize(calls []Call) []jmap.MethodCall {
	taken := make(map[string]bool, len(calls))
	for _, call := range calls {
		if call.CorrelationID != "" {
			taken[call.CorrelationID] = true
		}
	}

	out := make([]jmap.MethodCall, 0, len(calls))
	next := 0
	for _, call := range calls {
		id := call.CorrelationID
		if id == "" {
			for {
				id = strconv.Itoa(next)
				next++
				if !taken[id] {
					break
				}
			}
			taken[id] = true
		}
		out = append(out, jmap.MethodCall{
			Name:          call.Name,
			Arguments:     c.withAccountID(call.Arguments),
			CorrelationID: id,
		})
	}
	return out
}

func (c *Client) withAccountID(args ldvalue.Value) ldvalue.Value {
	if args.Type() == ldvalue.ObjectType {
		if _, ok := args.TryGetByKey("accountId"); ok {
			return args
		}
	}
	b := ldvalue.ObjectBuild()
	for _, key := range args.Keys() {
		b.Set(key, args.GetByKey(key))
	}
	b.Set("accountId", ldvalue.String(c.accountID))
	return b.Build()
}

// BatchResult is one fully analyzed exchange: the calls as actually sent
// (with final correlation ids), the decoded response, the call/response
// pairing, and every protocol violation found.
type BatchResult struct {
	Calls      []jmap.MethodCall
	Response   *jmap.Response
	Resolution batch.Resolution
	Violations []batch.Violation

	creation map[string]batch.CreationOutcome
}

// OK is true when the batch produced no protocol violations.
func (r *BatchResult) OK() bool { return len(r.Violations) == 0 }

// ResponseFor returns the response answering the given correlation id.
func (r *BatchResult) ResponseFor(correlationID string) (jmap.MethodResponse, bool) {
	return r.Resolution.ResponseFor(correlationID)
}

// Creation returns the created/notCreated outcome of the /set call with the
// given correlation id, if that call offered creation ids and was answered.
func (r *BatchResult) Creation(correlationID string) (batch.CreationOutcome, bool) {
	outcome, ok := r.creation[correlationID]
	return outcome, ok
}

// CreatedID resolves a creation id from the named call to its permanent
// server id. Repeated lookups return the same value. Failure is an
// *batch.UnresolvedCreationReferenceError.
func (r *BatchResult) CreatedID(correlationID, tempID string) (string, error) {
	outcome, ok := r.creation[correlationID]
	if !ok {
		return "", &batch.UnresolvedCreationReferenceError{TempID: tempID}
	}
	return outcome.CreatedID(tempID)
}
