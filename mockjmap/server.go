// Package mockjmap is an in-memory JMAP mail server used to test the
// harness itself. It implements just enough of Mailbox/Email get and set
// semantics to exercise the correlation and invariant engine, plus the
// test-service provisioning protocol the ServiceAdapter speaks.
//
// The server can also be told to misbehave in specific ways (drop a
// response, duplicate one, answer out of order, omit a created entry,
// invent a property), so tests can verify that each kind of server
// non-conformance is detected and reported rather than crashing the run.
package mockjmap

import (
	"strconv"
	"sync"

	"github.com/jmap-tools/jmap-contract-tests/jmap"

	"github.com/google/uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Faults configures deliberate protocol violations. The zero value is a
// well-behaved server.
type Faults struct {
	// ReverseResponses emits method responses in reverse call order.
	// Compliant behavior per the protocol, but useful for order tests.
	ReverseResponses bool

	// DropResponses lists correlation ids whose responses are withheld.
	DropResponses []string

	// DuplicateResponses lists correlation ids whose responses are sent
	// twice.
	DuplicateResponses []string

	// OmitCreated lists creation ids to silently drop from created maps.
	OmitCreated []string

	// InventProperty, if set, adds a property of that name to every
	// created-object result.
	InventProperty string
}

// Server is the in-memory mail store plus the fault configuration.
type Server struct {
	mu           sync.Mutex
	accounts     map[string]*account
	sessionState int
	faults       Faults
}

type account struct {
	id        string
	state     int
	mailboxes map[string]*mailboxRecord
	emails    map[string]*emailRecord
}

type mailboxRecord struct {
	id        string
	name      string
	parentID  string
	role      string
	sortOrder int
}

type emailRecord struct {
	id        string
	mailboxID string
	subject   string
	keywords  map[string]bool
}

// NewServer creates an empty server.
func NewServer() *Server {
	return &Server{accounts: make(map[string]*account)}
}

// SetFaults replaces the fault configuration.
func (s *Server) SetFaults(f Faults) {
	s.mu.Lock()
	s.faults = f
	s.mu.Unlock()
}

// CreateAccount provisions a new empty account and returns its id.
func (s *Server) CreateAccount() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &account{
		id:        uuid.NewString(),
		mailboxes: make(map[string]*mailboxRecord),
		emails:    make(map[string]*emailRecord),
	}
	s.accounts[a.id] = a
	return a.id
}

// DeleteAccount removes an account and all its data.
func (s *Server) DeleteAccount(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return false
	}
	delete(s.accounts, id)
	return true
}

// Execute processes one request envelope and returns the response envelope,
// applying whatever faults are configured.
func (s *Server) Execute(request jmap.Request) *jmap.Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	var responses []jmap.MethodResponse
	for _, call := range request.MethodCalls {
		responses = append(responses, s.execute(call))
	}

	if s.faults.ReverseResponses {
		for i, j := 0, len(responses)-1; i < j; i, j = i+1, j-1 {
			responses[i], responses[j] = responses[j], responses[i]
		}
	}
	responses = s.applyDropAndDuplicate(responses)

	s.sessionState++
	return &jmap.Response{
		MethodResponses: responses,
		SessionState:    strconv.Itoa(s.sessionState),
	}
}

func (s *Server) applyDropAndDuplicate(responses []jmap.MethodResponse) []jmap.MethodResponse {
	drop := make(map[string]bool)
	for _, id := range s.faults.DropResponses {
		drop[id] = true
	}
	duplicate := make(map[string]bool)
	for _, id := range s.faults.DuplicateResponses {
		duplicate[id] = true
	}
	var out []jmap.MethodResponse
	for _, r := range responses {
		if drop[r.CorrelationID] {
			continue
		}
		out = append(out, r)
		if duplicate[r.CorrelationID] {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) execute(call jmap.MethodCall) jmap.MethodResponse {
	acct, err := s.accountFor(call.Arguments)
	if err != "" {
		return errorResponse(call, err)
	}
	switch call.Name {
	case "Mailbox/set":
		return s.mailboxSet(acct, call)
	case "Mailbox/get":
		return s.mailboxGet(acct, call)
	case "Email/set":
		return s.emailSet(acct, call)
	case "Email/get":
		return s.emailGet(acct, call)
	}
	return errorResponse(call, "unknownMethod")
}

func (s *Server) accountFor(args ldvalue.Value) (*account, string) {
	id := args.GetByKey("accountId").StringValue()
	acct, ok := s.accounts[id]
	if !ok {
		return nil, "accountNotFound"
	}
	return acct, ""
}

func errorResponse(call jmap.MethodCall, errType string) jmap.MethodResponse {
	return jmap.MethodResponse{
		Name:          jmap.ErrorMethodName,
		Arguments:     ldvalue.ObjectBuild().Set("type", ldvalue.String(errType)).Build(),
		CorrelationID: call.CorrelationID,
	}
}

func notCreatedError(errType, description string, properties ...string) ldvalue.Value {
	b := ldvalue.ObjectBuild().
		Set("type", ldvalue.String(errType)).
		Set("description", ldvalue.String(description))
	if len(properties) > 0 {
		props := ldvalue.ArrayBuild()
		for _, p := range properties {
			props.Add(ldvalue.String(p))
		}
		b.Set("properties", props.Build())
	}
	return b.Build()
}

func (s *Server) omitted(tempID string) bool {
	for _, id := range s.faults.OmitCreated {
		if id == tempID {
			return true
		}
	}
	return false
}
