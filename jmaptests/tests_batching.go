package jmaptests

import (
	"github.com/jmap-tools/jmap-contract-tests/harness"
	"github.com/jmap-tools/jmap-contract-tests/match"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func DoBatchingTests(t *T) {
	t.Run("every call gets exactly one response", func(t *T) {
		name1 := UniqueName("batch-a")
		name2 := UniqueName("batch-b")
		result := t.RequestAndAssert("two explicit correlation ids",
			Expect(harness.Call{
				Name: "Mailbox/set",
				Arguments: object(map[string]ldvalue.Value{
					"create": object(map[string]ldvalue.Value{
						"a": object(map[string]ldvalue.Value{"name": ldvalue.String(name1)}),
					}),
				}),
				CorrelationID: "r1",
			}, match.SupersetOf(map[string]match.Template{
				"created": match.SupersetOf(map[string]match.Template{
					"a": match.SupersetOf(map[string]match.Template{"id": match.AnyString()}),
				}),
			})),
			Expect(harness.Call{
				Name: "Mailbox/set",
				Arguments: object(map[string]ldvalue.Value{
					"create": object(map[string]ldvalue.Value{
						"b": object(map[string]ldvalue.Value{"name": ldvalue.String(name2)}),
					}),
				}),
				CorrelationID: "r2",
			}, match.SupersetOf(map[string]match.Template{
				"created": match.SupersetOf(map[string]match.Template{
					"b": match.SupersetOf(map[string]match.Template{"id": match.AnyString()}),
				}),
			})))

		id1 := t.RequireCreatedID(result, "r1", "a")
		id2 := t.RequireCreatedID(result, "r2", "b")
		assert.NotEqual(t, id1, id2, "both creations resolved to the same server id")
	})

	t.Run("set state advances and get agrees", func(t *T) {
		result := t.RequestAndAssert("create a mailbox and note the new state",
			Expect(harness.Call{
				Name: "Mailbox/set",
				Arguments: object(map[string]ldvalue.Value{
					"create": object(map[string]ldvalue.Value{
						"s": object(map[string]ldvalue.Value{"name": ldvalue.String(UniqueName("state"))}),
					}),
				}),
				CorrelationID: "set",
			}, match.SupersetOf(map[string]match.Template{
				"newState": match.AnyString(),
			})))

		setResp, ok := result.ResponseFor("set")
		require.True(t, ok)
		newState := setResp.Arguments.GetByKey("newState").StringValue()

		t.RequestAndAssert("an immediate get reports that state",
			Expect(harness.Call{
				Name:      "Mailbox/get",
				Arguments: object(map[string]ldvalue.Value{"ids": ldvalue.Null()}),
			}, match.SupersetOf(map[string]match.Template{
				"state": match.String(newState),
			})))
	})

	t.Run("resolved ids are idempotent", func(t *T) {
		result := t.RequestAndAssert("create one mailbox",
			Expect(harness.Call{
				Name: "Mailbox/set",
				Arguments: object(map[string]ldvalue.Value{
					"create": object(map[string]ldvalue.Value{
						"x": object(map[string]ldvalue.Value{"name": ldvalue.String(UniqueName("idem"))}),
					}),
				}),
				CorrelationID: "c",
			}, nil))

		first := t.RequireCreatedID(result, "c", "x")
		second := t.RequireCreatedID(result, "c", "x")
		assert.Equal(t, first, second)

		outcome, ok := result.Creation("c")
		require.True(t, ok)
		assert.Equal(t, first, outcome.Created["x"].Properties.GetByKey("id").StringValue(),
			"resolved id differs from the created object's own id property")
	})
}
