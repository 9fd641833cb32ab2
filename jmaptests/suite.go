package jmaptests

import (
	"github.com/jmap-tools/jmap-contract-tests/framework"
	"github.com/jmap-tools/jmap-contract-tests/harness"
)

// AllCapabilities lists every optional adapter capability the suite may
// require, so the runner can warn up front which tests will be skipped.
var AllCapabilities = []string{
	harness.PristineCapability,
}

// TestCase is one registered top-level conformance test.
type TestCase struct {
	Name string

	// Pristine marks a test that cannot tolerate pre-existing account data.
	// When the adapter cannot provide isolation, the test is skipped as a
	// unit rather than failed.
	Pristine bool

	Run func(*T)
}

// Suite is an explicit registry of test cases, assembled once before the
// run. Tests register themselves here instead of through any process-global
// state.
type Suite struct {
	tests []TestCase
}

// Register adds a test case to the suite.
func (s *Suite) Register(name string, run func(*T)) {
	s.tests = append(s.tests, TestCase{Name: name, Run: run})
}

// RegisterPristine adds a test case that requires a pristine account.
func (s *Suite) RegisterPristine(name string, run func(*T)) {
	s.tests = append(s.tests, TestCase{Name: name, Pristine: true, Run: run})
}

// Tests returns the registered cases in registration order.
func (s *Suite) Tests() []TestCase {
	return append([]TestCase(nil), s.tests...)
}

// DefaultSuite assembles the full conformance suite.
func DefaultSuite() *Suite {
	s := &Suite{}
	s.Register("mailbox", DoMailboxTests)
	s.Register("email", DoEmailTests)
	s.Register("batching", DoBatchingTests)
	s.RegisterPristine("pristine account", DoPristineAccountTests)
	return s
}

// RunTestSuite runs every registered test against the configured server and
// returns the accumulated results.
func RunTestSuite(
	suite *Suite,
	config Config,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		env := &environment{config: config}
		for _, tc := range suite.Tests() {
			tc := tc
			root := &T{context: c, env: env}
			root.pristine = tc.Pristine
			root.Run(tc.Name, tc.Run)
		}
	})
}
