package jmaptests

import (
	"github.com/jmap-tools/jmap-contract-tests/harness"
	"github.com/jmap-tools/jmap-contract-tests/match"

	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Mailbox is a convenience handle over a mailbox created during a test: the
// permanent id plus a cache of the last-known server properties. Update and
// Destroy invalidate the cache as part of their contract; nothing else may
// touch it.
type Mailbox struct {
	ID string

	props     ldvalue.Value
	propsLive bool
	destroyed bool
}

// CreateMailbox creates a mailbox with the given properties (at minimum a
// name) and fails the test immediately if the server rejects it.
func (t *T) CreateMailbox(properties map[string]ldvalue.Value) *Mailbox {
	result := t.RequestAndAssert("create mailbox",
		Expect(harness.Call{
			Name: "Mailbox/set",
			Arguments: object(map[string]ldvalue.Value{
				"create": object(map[string]ldvalue.Value{
					"new": object(properties),
				}),
			}),
			CorrelationID: "create",
		}, match.SupersetOf(map[string]match.Template{
			"created": match.SupersetOf(map[string]match.Template{
				"new": match.SupersetOf(map[string]match.Template{
					"id": match.AnyString(),
				}),
			}),
		})))

	id := t.RequireCreatedID(result, "create", "new")
	outcome, _ := result.Creation("create")
	return &Mailbox{
		ID:        id,
		props:     outcome.Created["new"].Properties,
		propsLive: true,
	}
}

// Properties returns the mailbox's current property bag, refreshing the
// cache with a Mailbox/get when a mutation invalidated it.
func (m *Mailbox) Properties(t *T) ldvalue.Value {
	require.False(t, m.destroyed, "test bug: reading properties of a destroyed mailbox")
	if !m.propsLive {
		m.props = m.fetch(t)
		m.propsLive = true
	}
	return m.props
}

func (m *Mailbox) fetch(t *T) ldvalue.Value {
	result := t.RequestAndAssert("refresh mailbox",
		Expect(harness.Call{
			Name: "Mailbox/get",
			Arguments: object(map[string]ldvalue.Value{
				"ids": ldvalue.ArrayOf(ldvalue.String(m.ID)),
			}),
		}, match.SupersetOf(map[string]match.Template{
			"list": match.Sequence(match.SupersetOf(map[string]match.Template{
				"id": match.String(m.ID),
			})),
		})))
	resp, ok := result.ResponseFor(result.Calls[0].CorrelationID)
	require.True(t, ok, "no response to Mailbox/get")
	return resp.Arguments.GetByKey("list").GetByIndex(0)
}

// Update patches the mailbox and invalidates the property cache.
func (m *Mailbox) Update(t *T, patch map[string]ldvalue.Value) {
	t.RequestAndAssert("update mailbox",
		Expect(harness.Call{
			Name: "Mailbox/set",
			Arguments: object(map[string]ldvalue.Value{
				"update": object(map[string]ldvalue.Value{
					m.ID: object(patch),
				}),
			}),
		}, match.SupersetOf(map[string]match.Template{
			"updated": match.SupersetOf(map[string]match.Template{
				m.ID: match.Any(),
			}),
		})))
	m.propsLive = false
	m.props = ldvalue.Null()
}

// Destroy deletes the mailbox and invalidates the handle.
func (m *Mailbox) Destroy(t *T) {
	t.RequestAndAssert("destroy mailbox",
		Expect(harness.Call{
			Name: "Mailbox/set",
			Arguments: object(map[string]ldvalue.Value{
				"destroy": ldvalue.ArrayOf(ldvalue.String(m.ID)),
			}),
		}, match.SupersetOf(map[string]match.Template{
			"destroyed": match.Sequence(match.String(m.ID)),
		})))
	m.destroyed = true
	m.propsLive = false
	m.props = ldvalue.Null()
}

// Email is the analogous handle for a message created during a test.
type Email struct {
	ID string

	props     ldvalue.Value
	propsLive bool
	destroyed bool
}

// CreateEmail creates a message in the given mailbox and fails the test
// immediately if the server rejects it.
func (t *T) CreateEmail(mailboxID, subject string) *Email {
	result := t.RequestAndAssert("create email",
		Expect(harness.Call{
			Name: "Email/set",
			Arguments: object(map[string]ldvalue.Value{
				"create": object(map[string]ldvalue.Value{
					"new": object(map[string]ldvalue.Value{
						"mailboxIds": object(map[string]ldvalue.Value{
							mailboxID: ldvalue.Bool(true),
						}),
						"subject": ldvalue.String(subject),
					}),
				}),
			}),
			CorrelationID: "create",
		}, match.SupersetOf(map[string]match.Template{
			"created": match.SupersetOf(map[string]match.Template{
				"new": match.SupersetOf(map[string]match.Template{
					"id": match.AnyString(),
				}),
			}),
		})))

	id := t.RequireCreatedID(result, "create", "new")
	outcome, _ := result.Creation("create")
	return &Email{
		ID:        id,
		props:     outcome.Created["new"].Properties,
		propsLive: true,
	}
}

// Properties returns the email's current property bag, refreshing it with an
// Email/get when a mutation invalidated the cache.
func (e *Email) Properties(t *T) ldvalue.Value {
	require.False(t, e.destroyed, "test bug: reading properties of a destroyed email")
	if !e.propsLive {
		result := t.RequestAndAssert("refresh email",
			Expect(harness.Call{
				Name: "Email/get",
				Arguments: object(map[string]ldvalue.Value{
					"ids": ldvalue.ArrayOf(ldvalue.String(e.ID)),
				}),
			}, match.SupersetOf(map[string]match.Template{
				"list": match.Sequence(match.SupersetOf(map[string]match.Template{
					"id": match.String(e.ID),
				})),
			})))
		resp, ok := result.ResponseFor(result.Calls[0].CorrelationID)
		require.True(t, ok, "no response to Email/get")
		e.props = resp.Arguments.GetByKey("list").GetByIndex(0)
		e.propsLive = true
	}
	return e.props
}

// Update patches the email and invalidates the property cache.
func (e *Email) Update(t *T, patch map[string]ldvalue.Value) {
	t.RequestAndAssert("update email",
		Expect(harness.Call{
			Name: "Email/set",
			Arguments: object(map[string]ldvalue.Value{
				"update": object(map[string]ldvalue.Value{
					e.ID: object(patch),
				}),
			}),
		}, match.SupersetOf(map[string]match.Template{
			"updated": match.SupersetOf(map[string]match.Template{
				e.ID: match.Any(),
			}),
		})))
	e.propsLive = false
	e.props = ldvalue.Null()
}

// Destroy deletes the email and invalidates the handle.
func (e *Email) Destroy(t *T) {
	t.RequestAndAssert("destroy email",
		Expect(harness.Call{
			Name: "Email/set",
			Arguments: object(map[string]ldvalue.Value{
				"destroy": ldvalue.ArrayOf(ldvalue.String(e.ID)),
			}),
		}, match.SupersetOf(map[string]match.Template{
			"destroyed": match.Sequence(match.String(e.ID)),
		})))
	e.destroyed = true
	e.propsLive = false
	e.props = ldvalue.Null()
}
