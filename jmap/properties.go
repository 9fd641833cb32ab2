package jmap

import "strings"

// knownProperties lists, per data type, every property name RFC 8621 allows
// a server to return for that type. The strict-mode batch checker flags
// anything outside this list.
var knownProperties = map[string][]string{
	"Mailbox": {
		"id", "name", "parentId", "role", "sortOrder",
		"totalEmails", "unreadEmails", "totalThreads", "unreadThreads",
		"myRights", "isSubscribed",
	},
	"Email": {
		"id", "blobId", "threadId", "mailboxIds", "keywords", "size",
		"receivedAt", "messageId", "inReplyTo", "references", "sender",
		"from", "to", "cc", "bcc", "replyTo", "subject", "sentAt",
		"bodyStructure", "bodyValues", "textBody", "htmlBody",
		"attachments", "hasAttachment", "preview",
	},
	"Thread": {
		"id", "emailIds",
	},
}

// TypeForMethod returns the data type a method operates on, e.g. "Mailbox"
// for "Mailbox/set". Returns "" for malformed names and for "error".
func TypeForMethod(method string) string {
	i := strings.Index(method, "/")
	if i <= 0 {
		return ""
	}
	return method[:i]
}

// IsKnownProperty reports whether the named property may legitimately appear
// on an object of the given data type. Types the harness has no allowlist
// for are treated as all-properties-known, so strict mode stays quiet on
// extension types rather than drowning the report in false positives.
func IsKnownProperty(dataType, property string) bool {
	props, ok := knownProperties[dataType]
	if !ok {
		return true
	}
	for _, p := range props {
		if p == property {
			return true
		}
	}
	return false
}

// HasPropertyAllowlist reports whether strict mode can meaningfully scan
// objects of the given data type.
func HasPropertyAllowlist(dataType string) bool {
	_, ok := knownProperties[dataType]
	return ok
}
