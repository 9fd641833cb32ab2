package mockjmap

import (
	"sort"
	"strconv"

	"github.com/jmap-tools/jmap-contract-tests/jmap"

	"github.com/google/uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func (s *Server) mailboxSet(acct *account, call jmap.MethodCall) jmap.MethodResponse {
	oldState := strconv.Itoa(acct.state)
	created := ldvalue.ObjectBuild()
	notCreated := ldvalue.ObjectBuild()
	anyCreated, anyNotCreated := false, false

	create := call.Arguments.GetByKey("create")
	tempIDs := create.Keys()
	sort.Strings(tempIDs)
	for _, tempID := range tempIDs {
		spec := create.GetByKey(tempID)
		name := spec.GetByKey("name")
		if name.Type() != ldvalue.StringType || name.StringValue() == "" {
			notCreated.Set(tempID, notCreatedError("invalidProperties", "name must be a non-empty string", "name"))
			anyNotCreated = true
			continue
		}
		parentID := spec.GetByKey("parentId").StringValue()
		if parentID != "" && acct.mailboxes[parentID] == nil {
			notCreated.Set(tempID, notCreatedError("invalidProperties", "parentId does not exist", "parentId"))
			anyNotCreated = true
			continue
		}
		box := &mailboxRecord{
			id:        uuid.NewString(),
			name:      name.StringValue(),
			parentID:  parentID,
			role:      spec.GetByKey("role").StringValue(),
			sortOrder: spec.GetByKey("sortOrder").IntValue(),
		}
		acct.mailboxes[box.id] = box
		acct.state++

		if s.omitted(tempID) {
			continue
		}
		result := ldvalue.ObjectBuild().Set("id", ldvalue.String(box.id))
		if _, given := spec.TryGetByKey("sortOrder"); !given {
			result.Set("sortOrder", ldvalue.Int(0))
		}
		result.Set("totalEmails", ldvalue.Int(0))
		result.Set("unreadEmails", ldvalue.Int(0))
		result.Set("totalThreads", ldvalue.Int(0))
		result.Set("unreadThreads", ldvalue.Int(0))
		result.Set("isSubscribed", ldvalue.Bool(true))
		result.Set("myRights", fullRights())
		if s.faults.InventProperty != "" {
			result.Set(s.faults.InventProperty, ldvalue.Bool(true))
		}
		created.Set(tempID, result.Build())
		anyCreated = true
	}

	updated, notUpdated := s.mailboxUpdate(acct, call.Arguments.GetByKey("update"))
	destroyed, notDestroyed := s.mailboxDestroy(acct, call.Arguments.GetByKey("destroy"))

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

func (s *Server) mailboxUpdate(acct *account, update ldvalue.Value) (ldvalue.Value, ldvalue.Value) {
	if update.Count() == 0 {
		return ldvalue.Null(), ldvalue.Null()
	}
	updated := ldvalue.ObjectBuild()
	notUpdated := ldvalue.ObjectBuild()
	anyUpdated, anyNotUpdated := false, false
	for _, id := range update.Keys() {
		box := acct.mailboxes[id]
		if box == nil {
			notUpdated.Set(id, notCreatedError("notFound", "no such mailbox"))
			anyNotUpdated = true
			continue
		}
		patch := update.GetByKey(id)
		if v, ok := patch.TryGetByKey("name"); ok {
			box.name = v.StringValue()
		}
		if v, ok := patch.TryGetByKey("sortOrder"); ok {
			box.sortOrder = v.IntValue()
		}
		if v, ok := patch.TryGetByKey("parentId"); ok {
			box.parentID = v.StringValue()
		}
		acct.state++
		updated.Set(id, ldvalue.Null())
		anyUpdated = true
	}
	return buildIf(updated, anyUpdated), buildIf(notUpdated, anyNotUpdated)
}

func (s *Server) mailboxDestroy(acct *account, destroy ldvalue.Value) (ldvalue.Value, ldvalue.Value) {
	if destroy.Count() == 0 {
		return ldvalue.Null(), ldvalue.Null()
	}
	destroyed := ldvalue.ArrayBuild()
	notDestroyed := ldvalue.ObjectBuild()
	anyDestroyed, anyNotDestroyed := false, false
	for i := 0; i < destroy.Count(); i++ {
		id := destroy.GetByIndex(i).StringValue()
		if acct.mailboxes[id] == nil {
			notDestroyed.Set(id, notCreatedError("notFound", "no such mailbox"))
			anyNotDestroyed = true
			continue
		}
		delete(acct.mailboxes, id)
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

func (s *Server) mailboxGet(acct *account, call jmap.MethodCall) jmap.MethodResponse {
	ids := call.Arguments.GetByKey("ids")
	list := ldvalue.ArrayBuild()
	notFound := ldvalue.ArrayBuild()

	if ids.IsNull() {
		all := make([]string, 0, len(acct.mailboxes))
		for id := range acct.mailboxes {
			all = append(all, id)
		}
		sort.Strings(all)
		for _, id := range all {
			list.Add(s.mailboxObject(acct, acct.mailboxes[id]))
		}
	} else {
		for i := 0; i < ids.Count(); i++ {
			id := ids.GetByIndex(i).StringValue()
			if box := acct.mailboxes[id]; box != nil {
				list.Add(s.mailboxObject(acct, box))
			} else {
				notFound.Add(ldvalue.String(id))
			}
		}
	}

	args := ldvalue.ObjectBuild().
		Set("accountId", ldvalue.String(acct.id)).
		Set("state", ldvalue.String(strconv.Itoa(acct.state))).
		Set("list", list.Build()).
		Set("notFound", notFound.Build()).
		Build()
	return jmap.MethodResponse{Name: call.Name, Arguments: args, CorrelationID: call.CorrelationID}
}

func (s *Server) mailboxObject(acct *account, box *mailboxRecord) ldvalue.Value {
	total, unread := 0, 0
	for _, e := range acct.emails {
		if e.mailboxID == box.id {
			total++
			if !e.keywords["$seen"] {
				unread++
			}
		}
	}
	b := ldvalue.ObjectBuild().
		Set("id", ldvalue.String(box.id)).
		Set("name", ldvalue.String(box.name)).
		Set("sortOrder", ldvalue.Int(box.sortOrder)).
		Set("totalEmails", ldvalue.Int(total)).
		Set("unreadEmails", ldvalue.Int(unread)).
		Set("totalThreads", ldvalue.Int(total)).
		Set("unreadThreads", ldvalue.Int(unread)).
		Set("isSubscribed", ldvalue.Bool(true)).
		Set("myRights", fullRights())
	if box.parentID != "" {
		b.Set("parentId", ldvalue.String(box.parentID))
	} else {
		b.Set("parentId", ldvalue.Null())
	}
	if box.role != "" {
		b.Set("role", ldvalue.String(box.role))
	} else {
		b.Set("role", ldvalue.Null())
	}
	if s.faults.InventProperty != "" {
		b.Set(s.faults.InventProperty, ldvalue.Bool(true))
	}
	return b.Build()
}

func fullRights() ldvalue.Value {
	b := ldvalue.ObjectBuild()
	for _, right := range []string{
		"mayReadItems", "mayAddItems", "mayRemoveItems", "maySetSeen",
		"maySetKeywords", "mayCreateChild", "mayRename", "mayDelete", "maySubmit",
	} {
		b.Set(right, ldvalue.Bool(true))
	}
	return b.Build()
}

func buildIf(b ldvalue.ObjectBuilder, any bool) ldvalue.Value {
	if !any {
		return ldvalue.Null()
	}
	return b.Build()
}
