// Package jmaptests contains the JMAP conformance test suite and the
// domain-specific test API it is written against.
//
// Each test drives the server under test through a correlation-checked
// client: every batch that comes back has already been paired call-to-
// response by correlation id and checked against the protocol's set-level
// invariants before the test sees it. Structural assertions about response
// shapes are expressed as match templates, so a test states only the
// properties it cares about and tolerates whatever else a compliant server
// returns.
package jmaptests
