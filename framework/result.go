package framework

import (
	"fmt"
	"io"
	"strings"
)

// Results accumulates the outcome of a full test run.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
	Skipped  []TestResult
}

// TestResult is the outcome of a single test.
type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

// OK is true if no test failed. Skipped tests do not count as failures.
func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// TestID identifies a test as the path of names from the suite root.
type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// PrintResults writes a summary of the run to the given writer, listing each
// failed test with its errors.
func PrintResults(w io.Writer, results Results) {
	fmt.Fprintf(w, "Ran %d tests", len(results.Tests))
	if len(results.Skipped) > 0 {
		fmt.Fprintf(w, " (%d skipped)", len(results.Skipped))
	}
	if results.OK() {
		fmt.Fprintln(w, ": all passed")
		return
	}
	fmt.Fprintf(w, ": %d FAILED\n", len(results.Failures))
	for _, failure := range results.Failures {
		fmt.Fprintf(w, "\n* %s\n", failure.TestID)
		for _, err := range failure.Errors {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}
}
