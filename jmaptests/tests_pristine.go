package jmaptests

import (
	"github.com/jmap-tools/jmap-contract-tests/harness"
	"github.com/jmap-tools/jmap-contract-tests/match"

	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// DoPristineAccountTests holds the tests that cannot tolerate pre-existing
// account data. The whole group is registered with the pristine marker, so
// it is skipped as a unit when the adapter cannot isolate an account.
func DoPristineAccountTests(t *T) {
	t.Run("a fresh account starts empty", func(t *T) {
		result := t.RequestAndAssert("list all mailboxes",
			Expect(harness.Call{
				Name:      "Mailbox/get",
				Arguments: object(map[string]ldvalue.Value{"ids": ldvalue.Null()}),
			}, match.SupersetOf(map[string]match.Template{
				"list":     match.Any(),
				"notFound": match.Sequence(),
			})))

		resp, ok := result.ResponseFor(result.Calls[0].CorrelationID)
		require.True(t, ok)
		list := resp.Arguments.GetByKey("list")
		for i := 0; i < list.Count(); i++ {
			box := list.GetByIndex(i)
			if box.GetByKey("role").IsNull() {
				t.Errorf("pristine account contains a non-role mailbox %q",
					box.GetByKey("name").StringValue())
			}
		}
	})

	t.Run("exact mailbox count is stable", func(t *T) {
		before := t.Send(harness.Call{
			Name:      "Mailbox/get",
			Arguments: object(map[string]ldvalue.Value{"ids": ldvalue.Null()}),
		})
		t.RequireConformant(before)
		resp, ok := before.ResponseFor(before.Calls[0].CorrelationID)
		require.True(t, ok)
		baseline := resp.Arguments.GetByKey("list").Count()

		box := t.CreateMailbox(map[string]ldvalue.Value{
			"name": ldvalue.String("exactly-one"),
		})
		after := t.Send(harness.Call{
			Name:      "Mailbox/get",
			Arguments: object(map[string]ldvalue.Value{"ids": ldvalue.Null()}),
		})
		t.RequireConformant(after)
		resp, ok = after.ResponseFor(after.Calls[0].CorrelationID)
		require.True(t, ok)
		require.Equal(t, baseline+1, resp.Arguments.GetByKey("list").Count(),
			"creating one mailbox must grow the listing by exactly one")
		box.Destroy(t)
	})
}
