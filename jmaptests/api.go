package jmaptests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmap-tools/jmap-contract-tests/framework"
	"github.com/jmap-tools/jmap-contract-tests/harness"
	"github.com/jmap-tools/jmap-contract-tests/jmap"
	"github.com/jmap-tools/jmap-contract-tests/match"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/xid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const requestTimeout = time.Second * 10

// Config wires the suite to a server under test.
type Config struct {
	// Adapter provisions accounts.
	Adapter harness.ServerAdapter

	// Transport carries JMAP batches to the server's API endpoint.
	Transport harness.Transport

	// HasCapability reports optional adapter capabilities; nil means
	// everything is supported.
	HasCapability func(string) bool

	// StrictProperties enables the unknown-property scan on every batch.
	StrictProperties bool
}

type environment struct {
	config Config
}

// T represents a test or subtest in the conformance suite.
//
// It implements the same basic functionality as Go's testing.T, but in an
// environment that is outside of the Go test runner, with extra features
// such as per-test debug logging. Those features are provided by the
// lower-level framework package.
//
// It also provides everything JMAP-specific a test needs: a lazily
// provisioned account on the server under test, a client whose every
// exchange is correlation-checked, and the RequestAndAssert entry point for
// structural response assertions. To make plain assertions, the assert and
// require packages can be used directly, passing the *T as if it were a
// *testing.T.
type T struct {
	context  *framework.Context
	env      *environment
	pristine bool
	account  *harness.AccountHandle
	client   *harness.Client
}

// Errorf is called by assertions to log a test failure. It does not cause an
// immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately
// exit. The methods in the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest with its own T. The subtest provisions its own account;
// pristine-ness is inherited from the parent.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		t1 := &T{context: c, env: t.env, pristine: t.pristine}
		action(t1)
	})
}

// Debug logs some debug output for the test. The output will be passed to
// the test logger at the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// DebugLogger returns a logger writing to this test's debug output.
func (t *T) DebugLogger() framework.Logger {
	return t.context.DebugLogger()
}

// Defer registers cleanup to run when the test ends.
func (t *T) Defer(cleanup func()) {
	t.context.Defer(cleanup)
}

// RequireCapability skips this test if the server adapter did not declare
// the specified capability.
func (t *T) RequireCapability(capability string) {
	if t.env.config.HasCapability != nil && !t.env.config.HasCapability(capability) {
		t.context.SkipWithReason(fmt.Sprintf("server adapter does not have capability %q", capability))
	}
}

// Account returns this test's account on the server under test, provisioning
// one on first use. Tests registered as pristine get a pristine account, or
// are skipped when the adapter cannot isolate one.
func (t *T) Account() *harness.AccountHandle {
	if t.account == nil {
		var account *harness.AccountHandle
		var err error
		if t.pristine {
			account, err = t.env.config.Adapter.PristineAccount()
			if errors.Is(err, harness.ErrPristineUnsupported) {
				t.context.SkipWithReason("server adapter cannot provide a pristine account")
			}
		} else {
			account, err = t.env.config.Adapter.AnyAccount()
		}
		if err != nil {
			t.Errorf("could not provision a test account: %s", err)
			t.FailNow()
		}
		t.account = account
		t.Defer(func() {
			if err := account.Close(); err != nil {
				t.Debug("error disposing of test account: %s", err)
			}
		})
		t.Debug("using account %q", account.AccountID)
	}
	return t.account
}

// Client returns the JMAP client bound to this test's account.
func (t *T) Client() *harness.Client {
	if t.client == nil {
		t.client = harness.NewClient(t.env.config.Transport, t.Account().AccountID,
			t.env.config.StrictProperties)
	}
	return t.client
}

// Send issues one batch and fails the test immediately on a transport-level
// failure, since no per-call processing is possible without a decoded batch.
// Protocol violations within a successful exchange do not fail here; use
// RequireConformant or RequestAndAssert to report them.
func (t *T) Send(calls ...harness.Call) *harness.BatchResult {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	result, err := t.Client().Do(ctx, calls...)
	if err != nil {
		t.Errorf("request failed before any response could be processed: %s", err)
		t.FailNow()
	}
	return result
}

// RequireConformant reports every protocol violation in the batch as a test
// failure, without stopping at the first.
func (t *T) RequireConformant(result *harness.BatchResult) {
	for _, v := range result.Violations {
		t.Errorf("protocol violation: %s", v)
	}
}

// Expectation pairs a method call with the template its response arguments
// must match. A nil Template checks conformance only.
type Expectation struct {
	Call     harness.Call
	Template match.Template
}

// Expect is shorthand for building an Expectation.
func Expect(call harness.Call, template match.Template) Expectation {
	return Expectation{Call: call, Template: template}
}

// RequestAndAssert sends the expectations' calls as one batch and asserts
// each response against its template. Responses are located through the
// correlation resolver, never by array position, so a compliant server may
// answer in any order. Every violation and mismatch is reported; the full
// decoded batch is attached to the debug log for diagnosis.
func (t *T) RequestAndAssert(description string, expectations ...Expectation) *harness.BatchResult {
	calls := make([]harness.Call, 0, len(expectations))
	for _, e := range expectations {
		calls = append(calls, e.Call)
	}
	result := t.Send(calls...)

	failed := false
	for _, v := range result.Violations {
		t.Errorf("%s: protocol violation: %s", description, v)
		failed = true
	}

	for i, e := range expectations {
		id := result.Calls[i].CorrelationID
		resp, ok := result.ResponseFor(id)
		if !ok {
			// Already counted among the violations; this is the per-call
			// diagnostic so the reader knows which assertion was starved.
			t.Errorf("%s: no matching response for call %q (%s)", description, id, e.Call.Name)
			failed = true
			continue
		}
		if resp.Name == jmap.ErrorMethodName {
			t.Errorf("%s: call %q failed with a method-level error: %s",
				description, id, resp.Arguments.JSONString())
			failed = true
			continue
		}
		if resp.Name != result.Calls[i].Name {
			t.Errorf("%s: call %q was answered by method %q, want %q",
				description, id, resp.Name, result.Calls[i].Name)
			failed = true
			continue
		}
		if e.Template == nil {
			continue
		}
		if r := match.Match(resp.Arguments, e.Template); !r.OK {
			t.Errorf("%s: response to call %q does not match: %s", description, id, r)
			failed = true
		}
	}
	if failed {
		t.Debug("full decoded batch:\n%s", spew.Sdump(result.Response))
	}
	return result
}

// RequireCreatedID resolves a creation id from the batch and fails the test
// immediately if it cannot be resolved.
func (t *T) RequireCreatedID(result *harness.BatchResult, correlationID, tempID string) string {
	serverID, err := result.CreatedID(correlationID, tempID)
	if err != nil {
		t.Errorf("%s", err)
		t.FailNow()
	}
	return serverID
}

// UniqueName generates a name that will not collide with leftovers from
// earlier runs on a shared account.
func UniqueName(prefix string) string {
	return prefix + "-" + xid.New().String()
}

// object builds an ldvalue object from a map, for readable test arguments.
func object(fields map[string]ldvalue.Value) ldvalue.Value {
	b := ldvalue.ObjectBuild()
	for k, v := range fields {
		b.Set(k, v)
	}
	return b.Build()
}
