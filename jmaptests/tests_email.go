package jmaptests

import (
	"github.com/jmap-tools/jmap-contract-tests/harness"
	"github.com/jmap-tools/jmap-contract-tests/match"

	"github.com/stretchr/testify/assert"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func DoEmailTests(t *T) {
	t.Run("create and read back", func(t *T) {
		box := t.CreateMailbox(map[string]ldvalue.Value{
			"name": ldvalue.String(UniqueName("mail")),
		})
		subject := UniqueName("subject")
		email := t.CreateEmail(box.ID, subject)

		t.RequestAndAssert("read the email back",
			Expect(harness.Call{
				Name: "Email/get",
				Arguments: object(map[string]ldvalue.Value{
					"ids": ldvalue.ArrayOf(ldvalue.String(email.ID)),
				}),
			}, match.SupersetOf(map[string]match.Template{
				"list": match.Sequence(match.SupersetOf(map[string]match.Template{
					"id":      match.String(email.ID),
					"subject": match.String(subject),
					"mailboxIds": match.SupersetOf(map[string]match.Template{
						box.ID: match.Bool(true),
					}),
				})),
			})))
	})

	t.Run("creating an email bumps the mailbox counts", func(t *T) {
		box := t.CreateMailbox(map[string]ldvalue.Value{
			"name": ldvalue.String(UniqueName("counted")),
		})
		t.CreateEmail(box.ID, UniqueName("counted-subject"))

		t.RequestAndAssert("mailbox shows one email",
			Expect(harness.Call{
				Name: "Mailbox/get",
				Arguments: object(map[string]ldvalue.Value{
					"ids": ldvalue.ArrayOf(ldvalue.String(box.ID)),
				}),
			}, match.SupersetOf(map[string]match.Template{
				"list": match.Sequence(match.SupersetOf(map[string]match.Template{
					"totalEmails": match.Int(1),
				})),
			})))
	})

	t.Run("keyword update invalidates the cached handle", func(t *T) {
		box := t.CreateMailbox(map[string]ldvalue.Value{
			"name": ldvalue.String(UniqueName("kw")),
		})
		email := t.CreateEmail(box.ID, UniqueName("kw-subject"))

		email.Update(t, map[string]ldvalue.Value{
			"keywords": object(map[string]ldvalue.Value{
				"$seen": ldvalue.Bool(true),
			}),
		})
		keywords := email.Properties(t).GetByKey("keywords")
		assert.True(t, keywords.GetByKey("$seen").BoolValue(),
			"keyword update was not reflected on re-read")
	})

	t.Run("destroy", func(t *T) {
		box := t.CreateMailbox(map[string]ldvalue.Value{
			"name": ldvalue.String(UniqueName("email-doom")),
		})
		email := t.CreateEmail(box.ID, UniqueName("doomed-subject"))
		email.Destroy(t)

		t.RequestAndAssert("a destroyed email is notFound",
			Expect(harness.Call{
				Name: "Email/get",
				Arguments: object(map[string]ldvalue.Value{
					"ids": ldvalue.ArrayOf(ldvalue.String(email.ID)),
				}),
			}, match.SupersetOf(map[string]match.Template{
				"list":     match.Sequence(),
				"notFound": match.Sequence(match.String(email.ID)),
			})))
	})

	t.Run("create into a bogus mailbox is rejected", func(t *T) {
		result := t.RequestAndAssert("create an email with an unknown mailbox id",
			Expect(harness.Call{
				Name: "Email/set",
				Arguments: object(map[string]ldvalue.Value{
					"create": object(map[string]ldvalue.Value{
						"bad": object(map[string]ldvalue.Value{
							"mailboxIds": object(map[string]ldvalue.Value{
								"no-such-mailbox": ldvalue.Bool(true),
							}),
							"subject": ldvalue.String(UniqueName("orphan")),
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
		assert.Error(t, err)
	})
}
