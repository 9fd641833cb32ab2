// Package framework contains the protocol-agnostic test runner used by the
// conformance suite.
//
// The general model is:
//
// 1. A test is a function receiving a Context, which works like Go's
// *testing.T (Errorf, FailNow, Run for subtests, Skip) but outside the Go
// test runner, so the harness controls filtering and reporting itself.
//
// 2. Every test is identified by the path of names from the suite root, and
// can be included or excluded by regex filters supplied on the command line.
//
// 3. Debug output produced during a test is captured and attached to its
// result, so the console logger can show it only for failed tests (or for
// all tests, when asked).
//
// Everything JMAP-specific (the wire model, the correlation engine, and the
// domain test API) is layered on top in the other packages.
package framework
