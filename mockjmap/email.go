package mockjmap

import (
	"sort"
	"strconv"
	"time"

	"github.com/jmap-tools/jmap-contract-tests/jmap"

	"github.com/google/uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func (s *Server) emailSet(acct *account, call jmap.MethodCall) jmap.MethodResponse {
	oldState := strconv.Itoa(acct.state)
	created := ldvalue.ObjectBuild()
	notCreated := ldvalue.ObjectBuild()
	anyCreated, anyNotCreated := false, false

	create := call.Arguments.GetByKey("create")
	tempIDs := create.Keys()
	sort.Strings(tempIDs)
	for _, tempID := range tempIDs {
		spec := create.GetByKey(tempID)
		mailboxID := firstMailboxID(spec.GetByKey("mailboxIds"))
		if mailboxID == "" || acct.mailboxes[mailboxID] == nil {
			notCreated.Set(tempID, notCreatedError("invalidProperties",
				"mailboxIds must name one existing mailbox", "mailboxIds"))
			anyNotCreated = true
			continue
		}
		email := &emailRecord{
			id:        uuid.NewString(),
			mailboxID: mailboxID,
			subject:   spec.GetByKey("subject").StringValue(),
			keywords:  keywordSet(spec.GetByKey("keywords")),
		}
		acct.emails[email.id] = email
		acct.state++

		if s.omitted(tempID) {
			continue
		}
		result := ldvalue.ObjectBuild().
			Set("id", ldvalue.String(email.id)).
			Set("blobId", ldvalue.String(uuid.NewString())).
			Set("threadId", ldvalue.String(uuid.NewString())).
			Set("size", ldvalue.Int(len(email.subject)+512)).
			Set("receivedAt", ldvalue.String(time.Now().UTC().Format(time.RFC3339)))
		if s.faults.InventProperty != "" {
			result.Set(s.faults.InventProperty, ldvalue.Bool(true))
		}
		created.Set(tempID, result.Build())
		anyCreated = true
	}

	updated, notUpdated := s.emailUpdate(acct, call.Arguments.GetByKey("update"))
	destroyed, notDestroyed := s.emailDestroy(acct, call.Arguments.GetByKey("destroy"))

	args := ldvalue.ObjectBuild().
		Set("accountId", ldvalue.String(acct.id)).
		Set("oldState", ldvalue.String(oldState)).
		Set("newState", ldvalue.String(strconv.Itoa(acct.state)))
	if anyCreated {
		args.Set("created", created.Build())
	}
	if anyNotCreated {
		args.Set("notCreated", notCreated.Build())
	}
	if !updated.IsNull() {
		args.Set("updated", updated)
	}
	if !notUpdated.IsNull() {
		args.Set("notUpdated", notUpdated)
	}
	if !destroyed.IsNull() {
		args.Set("destroyed", destroyed)
	}
	if !notDestroyed.IsNull() {
		args.Set("notDestroyed", notDestroyed)
	}
	return jmap.MethodResponse{Name: call.Name, Arguments: args.Build(), CorrelationID: call.CorrelationID}
}

func (s *Server) emailUpdate(acct *account, update ldvalue.Value) (ldvalue.Value, ldvalue.Value) {
	if update.Count() == 0 {
		return ldvalue.Null(), ldvalue.Null()
	}
	updated := ldvalue.ObjectBuild()
	notUpdated := ldvalue.ObjectBuild()
	anyUpdated, anyNotUpdated := false, false
	for _, id := range update.Keys() {
		email := acct.emails[id]
		if email == nil {
			notUpdated.Set(id, notCreatedError("notFound", "no such email"))
			anyNotUpdated = true
			continue
		}
		patch := update.GetByKey(id)
		if v, ok := patch.TryGetByKey("keywords"); ok {
			email.keywords = keywordSet(v)
		}
		if v, ok := patch.TryGetByKey("mailboxIds"); ok {
			if boxID := firstMailboxID(v); boxID != "" && acct.mailboxes[boxID] != nil {
				email.mailboxID = boxID
			}
		}
		acct.state++
		updated.Set(id, ldvalue.Null())
		anyUpdated = true
	}
	return buildIf(updated, anyUpdated), buildIf(notUpdated, anyNotUpdated)
}

func (s *Server) emailDestroy(acct *account, destroy ldvalue.Value) (ldvalue.Value, ldvalue.Value) {
	if destroy.Count() == 0 {
		return ldvalue.Null(), ldvalue.Null()
	}
	destroyed := ldvalue.ArrayBuild()
	notDestroyed := ldvalue.ObjectBuild()
	anyDestroyed, anyNotDestroyed := false, false
	for i := 0; i < destroy.Count(); i++ {
		id := destroy.GetByIndex(i).StringValue()
		if acct.emails[id] == nil {
			notDestroyed.Set(id, notCreatedError("notFound", "no such email"))
			anyNotDestroyed = true
			continue
		}
		delete(acct.emails, id)
		acct.state++
		destroyed.Add(ldvalue.String(id))
		anyDestroyed = true
	}
	d := ldvalue.Null()
	if anyDestroyed {
		d = destroyed.Build()
	}
	return d, buildIf(notDestroyed, anyNotDestroyed)
}

func (s *Server) emailGet(acct *account, call jmap.MethodCall) jmap.MethodResponse {
	ids := call.Arguments.GetByKey("ids")
	list := ldvalue.ArrayBuild()
	notFound := ldvalue.ArrayBuild()

	for i := 0; i < ids.Count(); i++ {
		id := ids.GetByIndex(i).StringValue()
		email := acct.emails[id]
		if email == nil {
			notFound.Add(ldvalue.String(id))
			continue
		}
		keywords := ldvalue.ObjectBuild()
		for k := range email.keywords {
			keywords.Set(k, ldvalue.Bool(true))
		}
		list.Add(ldvalue.ObjectBuild().
			Set("id", ldvalue.String(email.id)).
			Set("mailboxIds", ldvalue.ObjectBuild().
				Set(email.mailboxID, ldvalue.Bool(true)).Build()).
			Set("keywords", keywords.Build()).
			Set("subject", ldvalue.String(email.subject)).
			Set("hasAttachment", ldvalue.Bool(false)).
			Build())
	}

	args := ldvalue.ObjectBuild().
		Set("accountId", ldvalue.String(acct.id)).
		Set("state", ldvalue.String(strconv.Itoa(acct.state))).
		Set("list", list.Build()).
		Set("notFound", notFound.Build()).
		Build()
	return jmap.MethodResponse{Name: call.Name, Arguments: args, CorrelationID: call.CorrelationID}
}

// firstMailboxID returns the lexically first mailbox id mapped to true in a
// JMAP mailboxIds object.
func firstMailboxID(mailboxIDs ldvalue.Value) string {
	ids := mailboxIDs.Keys()
	sort.Strings(ids)
	for _, id := range ids {
		if mailboxIDs.GetByKey(id).BoolValue() {
			return id
		}
	}
	return ""
}

func keywordSet(keywords ldvalue.Value) map[string]bool {
	out := make(map[string]bool)
	for _, k := range keywords.Keys() {
		if keywords.GetByKey(k).BoolValue() {
			out[k] = true
		}
	}
	return out
}
