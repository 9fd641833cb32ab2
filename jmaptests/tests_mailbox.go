package jmaptests

import (
	"github.com/jmap-tools/jmap-contract-tests/harness"
	"github.com/jmap-tools/jmap-contract-tests/match"

	"github.com/stretchr/testify/assert"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func DoMailboxTests(t *T) {
	t.Run("create sets defaults", func(t *T) {
		name := UniqueName("inbox-defaults")
		result := t.RequestAndAssert("create a minimal mailbox",
			Expect(harness.Call{
				Name: "Mailbox/set",
				Arguments: object(map[string]ldvalue.Value{
					"create": object(map[string]ldvalue.Value{
						"new": object(map[string]ldvalue.Value{
							"name": ldvalue.String(name),
						}),
					}),
				}),
				CorrelationID: "c",
			}, match.SupersetOf(map[string]match.Template{
				"created": match.SupersetOf(map[string]match.Template{
					"new": match.SupersetOf(map[string]match.Template{
						"id": match.AnyString(),
					}),
				}),
			})))

		id := t.RequireCreatedID(result, "c", "new")

		t.RequestAndAssert("read the mailbox back",
			Expect(harness.Call{
				Name: "Mailbox/get",
				Arguments: object(map[string]ldvalue.Value{
					"ids": ldvalue.ArrayOf(ldvalue.String(id)),
				}),
			}, match.SupersetOf(map[string]match.Template{
				"list": match.Sequence(match.SupersetOf(map[string]match.Template{
					"id":          match.String(id),
					"name":        match.String(name),
					"sortOrder":   match.Int(0),
					"totalEmails": match.Int(0),
				})),
				"notFound": match.Sequence(),
			})))
	})

	t.Run("create honors explicit properties", func(t *T) {
		parent := t.CreateMailbox(map[string]ldvalue.Value{
			"name": ldvalue.String(UniqueName("parent")),
		})
		name := UniqueName("child")

		result := t.RequestAndAssert("create a child mailbox with a sort order",
			Expect(harness.Call{
				Name: "Mailbox/set",
				Arguments: object(map[string]ldvalue.Value{
					"create": object(map[string]ldvalue.Value{
						"new": object(map[string]ldvalue.Value{
							"name":      ldvalue.String(name),
							"parentId":  ldvalue.String(parent.ID),
							"sortOrder": ldvalue.Int(55),
						}),
					}),
				}),
				CorrelationID: "c",
			}, match.SupersetOf(map[string]match.Template{
				"created": match.SupersetOf(map[string]match.Template{
					"new": match.SupersetOf(map[string]match.Template{
						"id": match.AnyString(),
					}),
				}),
			})))

		id := t.RequireCreatedID(result, "c", "new")

		t.RequestAndAssert("read the child back",
			Expect(harness.Call{
				Name: "Mailbox/get",
				Arguments: object(map[string]ldvalue.Value{
					"ids": ldvalue.ArrayOf(ldvalue.String(id)),
				}),
			}, match.SupersetOf(map[string]match.Template{
				"list": match.Sequence(match.SupersetOf(map[string]match.Template{
					"parentId":  match.String(parent.ID),
					"sortOrder": match.Int(55),
				})),
			})))
	})

	t.Run("sortOrder is a number, not a string", func(t *T) {
		box := t.CreateMailbox(map[string]ldvalue.Value{
			"name": ldvalue.String(UniqueName("typed")),
		})
		props := box.Properties(t)
		if v, ok := props.TryGetByKey("sortOrder"); ok {
			r := match.Match(v, match.AnyNumber())
			assert.True(t, r.OK, "sortOrder has the wrong JSON type: %s", r)
		}
	})

	t.Run("rename", func(t *T) {
		box := t.CreateMailbox(map[string]ldvalue.Value{
			"name": ldvalue.String(UniqueName("before")),
		})
		newName := UniqueName("after")
		box.Update(t, map[string]ldvalue.Value{"name": ldvalue.String(newName)})
		assert.Equal(t, newName, box.Properties(t).GetByKey("name").StringValue())
	})

	t.Run("destroy", func(t *T) {
		box := t.CreateMailbox(map[string]ldvalue.Value{
			"name": ldvalue.String(UniqueName("doomed")),
		})
		box.Destroy(t)

		t.RequestAndAssert("a destroyed mailbox is notFound",
			Expect(harness.Call{
				Name: "Mailbox/get",
				Arguments: object(map[string]ldvalue.Value{
					"ids": ldvalue.ArrayOf(ldvalue.String(box.ID)),
				}),
			}, match.SupersetOf(map[string]match.Template{
				"list":     match.Sequence(),
				"notFound": match.Sequence(match.String(box.ID)),
			})))
	})

	t.Run("invalid create is rejected with a SetError", func(t *T) {
		result := t.RequestAndAssert("create a mailbox with an empty name",
			Expect(harness.Call{
				Name: "Mailbox/set",
				Arguments: object(map[string]ldvalue.Value{
					"create": object(map[string]ldvalue.Value{
						"bad": object(map[string]ldvalue.Value{
							"name": ldvalue.String(""),
						}),
					}),
				}),
				CorrelationID: "c",
			}, match.SupersetOf(map[string]match.Template{
				"notCreated": match.SupersetOf(map[string]match.Template{
					"bad": match.SupersetOf(map[string]match.Template{
						"type": match.AnyString(),
					}),
				}),
			})))

		_, err := result.CreatedID("c", "bad")
		assert.Error(t, err, "a rejected creation id must not resolve to a server id")
	})

	t.Run("creation id from one batch is usable in the next", func(t *T) {
		result := t.RequestAndAssert("create the parent",
			Expect(harness.Call{
				Name: "Mailbox/set",
				Arguments: object(map[string]ldvalue.Value{
					"create": object(map[string]ldvalue.Value{
						"p": object(map[string]ldvalue.Value{
							"name": ldvalue.String(UniqueName("chain-parent")),
						}),
					}),
				}),
				CorrelationID: "c",
			}, nil))
		parentID := t.RequireCreatedID(result, "c", "p")

		t.RequestAndAssert("create a child under the resolved id",
			Expect(harness.Call{
				Name: "Mailbox/set",
				Arguments: object(map[string]ldvalue.Value{
					"create": object(map[string]ldvalue.Value{
						"q": object(map[string]ldvalue.Value{
							"name":     ldvalue.String(UniqueName("chain-child")),
							"parentId": ldvalue.String(parentID),
						}),
					}),
				}),
				CorrelationID: "c2",
			}, match.SupersetOf(map[string]match.Template{
				"created": match.SupersetOf(map[string]match.Template{
					"q": match.SupersetOf(map[string]match.Template{
						"id": match.AnyString(),
					}),
				}),
			})))
	})
}
