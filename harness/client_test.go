package harness_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmap-tools/jmap-contract-tests/batch"
	"github.com/jmap-tools/jmap-contract-tests/harness"
	"github.com/jmap-tools/jmap-contract-tests/mockjmap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func newServerAndClient(t *testing.T, strict bool) (*mockjmap.Server, *harness.Client) {
	server := mockjmap.NewServer()
	accountID := server.CreateAccount()
	return server, harness.NewClient(server, accountID, strict)
}

func createCall(correlationID, tempID, name string) harness.Call {
	return harness.Call{
		Name: "Mailbox/set",
		Arguments: ldvalue.ObjectBuild().
			Set("create", ldvalue.ObjectBuild().
				Set(tempID, ldvalue.ObjectBuild().
					Set("name", ldvalue.String(name)).Build()).
				Build()).
			Build(),
		CorrelationID: correlationID,
	}
}

func getCall(correlationID string) harness.Call {
	return harness.Call{
		Name:          "Mailbox/get",
		Arguments:     ldvalue.ObjectBuild().Set("ids", ldvalue.Null()).Build(),
		CorrelationID: correlationID,
	}
}

func TestShorthandCallGetsDefaultCorrelationID(t *testing.T) {
	_, client := newServerAndClient(t, false)

	result, err := client.Do(context.Background(), getCall(""))
	require.NoError(t, err)
	require.Len(t, result.Calls, 1)
	assert.Equal(t, "0", result.Calls[0].CorrelationID)

	_, ok := result.ResponseFor("0")
	assert.True(t, ok)
}

func TestAutoAssignedIDsSkipExplicitOnes(t *testing.T) {
	_, client := newServerAndClient(t, false)

	result, err := client.Do(context.Background(),
		getCall(""), getCall("0"), getCall(""))
	require.NoError(t, err)
	require.Len(t, result.Calls, 3)
	assert.Equal(t, "1", result.Calls[0].CorrelationID)
	assert.Equal(t, "0", result.Calls[1].CorrelationID)
	assert.Equal(t, "2", result.Calls[2].CorrelationID)
	assert.True(t, result.OK(), "unexpected violations: %v", result.Violations)
}

func TestAccountIDIsInjectedWhenAbsent(t *testing.T) {
	_, client := newServerAndClient(t, false)

	result, err := client.Do(context.Background(), getCall("g"))
	require.NoError(t, err)
	assert.Equal(t, client.AccountID(),
		result.Calls[0].Arguments.GetByKey("accountId").StringValue())

	// an explicit accountId is left alone
	explicit := harness.Call{
		Name: "Mailbox/get",
		Arguments: ldvalue.ObjectBuild().
			Set("accountId", ldvalue.String("someone-else")).
			Set("ids", ldvalue.Null()).
			Build(),
	}
	result, err = client.Do(context.Background(), explicit)
	require.NoError(t, err)
	assert.Equal(t, "someone-else",
		result.Calls[0].Arguments.GetByKey("accountId").StringValue())
}

func TestEmptyBatchIsRejected(t *testing.T) {
	_, client := newServerAndClient(t, false)
	_, err := client.Do(context.Background())
	assert.Error(t, err)
}

func TestCreatedIDResolutionAcrossRoundTrips(t *testing.T) {
	_, client := newServerAndClient(t, false)

	result, err := client.Do(context.Background(), createCall("c", "new", "Archive"))
	require.NoError(t, err)
	require.True(t, result.OK(), "unexpected violations: %v", result.Violations)

	id, err := result.CreatedID("c", "new")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// the resolved id is usable in a subsequent batch
	followUp, err := client.Do(context.Background(), harness.Call{
		Name: "Mailbox/get",
		Arguments: ldvalue.ObjectBuild().
			Set("ids", ldvalue.ArrayOf(ldvalue.String(id))).Build(),
		CorrelationID: "g",
	})
	require.NoError(t, err)
	resp, ok := followUp.ResponseFor("g")
	require.True(t, ok)
	list := resp.Arguments.GetByKey("list")
	require.Equal(t, 1, list.Count())
	assert.Equal(t, "Archive", list.GetByIndex(0).GetByKey("name").StringValue())
}

func TestCreatedIDOnCallWithoutCreation(t *testing.T) {
	_, client := newServerAndClient(t, false)
	result, err := client.Do(context.Background(), getCall("g"))
	require.NoError(t, err)

	_, err = result.CreatedID("g", "anything")
	var unresolved *batch.UnresolvedCreationReferenceError
	require.True(t, errors.As(err, &unresolved))
}

func TestOutOfOrderResponsesStillCorrelate(t *testing.T) {
	server, client := newServerAndClient(t, false)
	server.SetFaults(mockjmap.Faults{ReverseResponses: true})

	result, err := client.Do(context.Background(),
		createCall("r1", "a", "First"), createCall("r2", "b", "Second"))
	require.NoError(t, err)
	require.True(t, result.OK(), "unexpected violations: %v", result.Violations)

	// the wire order really was reversed
	assert.Equal(t, "r2", result.Response.MethodResponses[0].CorrelationID)

	r1, ok := result.ResponseFor("r1")
	require.True(t, ok)
	_, err = batch.ExtractCreation(r1.Arguments).CreatedID("a")
	assert.NoError(t, err)
	r2, ok := result.ResponseFor("r2")
	require.True(t, ok)
	_, err = batch.ExtractCreation(r2.Arguments).CreatedID("b")
	assert.NoError(t, err)
}

func TestDroppedResponseIsACorrelationViolation(t *testing.T) {
	server, client := newServerAndClient(t, false)
	server.SetFaults(mockjmap.Faults{DropResponses: []string{"r2"}})

	result, err := client.Do(context.Background(), getCall("r1"), getCall("r2"))
	require.NoError(t, err)
	require.False(t, result.OK())
	require.Len(t, result.Violations, 1)
	assert.Equal(t, batch.KindCorrelationMismatch, result.Violations[0].Kind)
	assert.Equal(t, "r2", result.Violations[0].CorrelationID)

	_, ok := result.ResponseFor("r2")
	assert.False(t, ok)
}

func TestDuplicatedResponseIsACorrelationViolation(t *testing.T) {
	server, client := newServerAndClient(t, false)
	server.SetFaults(mockjmap.Faults{DuplicateResponses: []string{"g"}})

	result, err := client.Do(context.Background(), getCall("g"))
	require.NoError(t, err)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, batch.KindCorrelationMismatch, result.Violations[0].Kind)
}

func TestOmittedCreationIDIsAnInvariantViolation(t *testing.T) {
	server, client := newServerAndClient(t, false)
	server.SetFaults(mockjmap.Faults{OmitCreated: []string{"b"}})

	result, err := client.Do(context.Background(), harness.Call{
		Name: "Mailbox/set",
		Arguments: ldvalue.ObjectBuild().
			Set("create", ldvalue.ObjectBuild().
				Set("a", ldvalue.ObjectBuild().Set("name", ldvalue.String("A")).Build()).
				Set("b", ldvalue.ObjectBuild().Set("name", ldvalue.String("B")).Build()).
				Build()).
			Build(),
		CorrelationID: "c",
	})
	require.NoError(t, err)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, batch.KindCreationIDMismatch, result.Violations[0].Kind)
	assert.Equal(t, []string{"b"}, result.Violations[0].Missing)
	assert.Empty(t, result.Violations[0].Extra)
}

func TestStrictModeFlagsInventedProperties(t *testing.T) {
	server, client := newServerAndClient(t, true)
	server.SetFaults(mockjmap.Faults{InventProperty: "xVendorFlair"})

	result, err := client.Do(context.Background(), createCall("c", "new", "Flashy"))
	require.NoError(t, err)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, batch.KindUnknownProperty, result.Violations[0].Kind)
	assert.Equal(t, "xVendorFlair", result.Violations[0].Property)

	// without strict mode the same server is not flagged
	lenient := harness.NewClient(server, server.CreateAccount(), false)
	result, err = lenient.Do(context.Background(), createCall("c", "new", "Flashy"))
	require.NoError(t, err)
	assert.True(t, result.OK())
}
