package jmaptests_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jmap-tools/jmap-contract-tests/framework"
	"github.com/jmap-tools/jmap-contract-tests/harness"
	"github.com/jmap-tools/jmap-contract-tests/jmaptests"
	"github.com/jmap-tools/jmap-contract-tests/mockjmap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allowAll(framework.TestID) bool { return true }

func runSuite(server *mockjmap.Server, adapter *mockjmap.Adapter, strict bool, filter framework.Filter) framework.Results {
	config := jmaptests.Config{
		Adapter:          adapter,
		Transport:        server,
		StrictProperties: strict,
	}
	return jmaptests.RunTestSuite(jmaptests.DefaultSuite(), config, filter, nil)
}

func failureSummary(results framework.Results) string {
	s := ""
	for _, f := range results.Failures {
		s += fmt.Sprintf("%s: %v\n", f.TestID, f.Errors)
	}
	return s
}

func TestSuitePassesAgainstCompliantServer(t *testing.T) {
	server := mockjmap.NewServer()
	results := runSuite(server, &mockjmap.Adapter{Server: server}, true, allowAll)

	assert.True(t, results.OK(), "unexpected failures:\n%s", failureSummary(results))
	assert.Empty(t, results.Skipped)
	assert.NotEmpty(t, results.Tests)
}

func TestPristineTestsSkipWhenAdapterCannotIsolate(t *testing.T) {
	server := mockjmap.NewServer()
	adapter := &mockjmap.Adapter{Server: server, DisablePristine: true}
	results := runSuite(server, adapter, true, allowAll)

	assert.True(t, results.OK(), "unexpected failures:\n%s", failureSummary(results))
	require.NotEmpty(t, results.Skipped)
	for _, skipped := range results.Skipped {
		assert.Equal(t, "pristine account", skipped.TestID.Path[0])
	}
}

func TestSuiteDetectsOmittedCreationIDs(t *testing.T) {
	server := mockjmap.NewServer()
	server.SetFaults(mockjmap.Faults{OmitCreated: []string{"new"}})
	results := runSuite(server, &mockjmap.Adapter{Server: server}, false, allowAll)

	require.False(t, results.OK(), "the suite did not notice the missing created entries")
	assert.True(t, anyFailureMentions(results, "CreationIdMismatch", "creation id"),
		"failures did not mention the creation-id mismatch:\n%s", failureSummary(results))
}

func TestSuiteDetectsInventedPropertiesOnlyInStrictMode(t *testing.T) {
	server := mockjmap.NewServer()
	server.SetFaults(mockjmap.Faults{InventProperty: "xVendorFlair"})

	lenient := runSuite(server, &mockjmap.Adapter{Server: server}, false, allowAll)
	assert.True(t, lenient.OK(), "lenient run should tolerate extra properties:\n%s", failureSummary(lenient))

	strict := runSuite(server, &mockjmap.Adapter{Server: server}, true, allowAll)
	require.False(t, strict.OK(), "strict run did not flag the invented property")
	assert.True(t, anyFailureMentions(strict, "xVendorFlair"),
		"failures did not name the invented property:\n%s", failureSummary(strict))
}

func TestSuiteDetectsDroppedResponses(t *testing.T) {
	server := mockjmap.NewServer()
	server.SetFaults(mockjmap.Faults{DropResponses: []string{"create"}})
	results := runSuite(server, &mockjmap.Adapter{Server: server}, false, allowAll)

	assert.False(t, results.OK(), "the suite did not notice the withheld responses")
}

func TestFilterRestrictsWhichTestsRun(t *testing.T) {
	server := mockjmap.NewServer()
	onlyMailbox := func(id framework.TestID) bool {
		return len(id.Path) > 0 && id.Path[0] == "mailbox"
	}
	results := runSuite(server, &mockjmap.Adapter{Server: server}, true, onlyMailbox)

	assert.True(t, results.OK(), "unexpected failures:\n%s", failureSummary(results))
	require.NotEmpty(t, results.Tests)
	for _, r := range results.Tests {
		assert.Equal(t, "mailbox", r.TestID.Path[0])
	}
}

func TestPristineCapabilityIsDeclared(t *testing.T) {
	assert.Contains(t, jmaptests.AllCapabilities, harness.PristineCapability)
}

func anyFailureMentions(results framework.Results, subs ...string) bool {
	for _, f := range results.Failures {
		for _, err := range f.Errors {
			for _, sub := range subs {
				if strings.Contains(err.Error(), sub) {
					return true
				}
			}
		}
	}
	return false
}
