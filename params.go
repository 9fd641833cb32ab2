package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/jmap-tools/jmap-contract-tests/framework"

	"github.com/alessio/shellescape"
)

// strictPropertiesEnvVar enables the unknown-property scan without a flag,
// for CI setups that configure the harness through the environment.
const strictPropertiesEnvVar = "JMAP_STRICT_PROPERTIES"

type commandParams struct {
	serviceURL       string
	filters          framework.RegexFilters
	stopServiceAtEnd bool
	strictProperties bool
	debug            bool
	debugAll         bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.serviceURL, "url", "", "test service URL")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.stopServiceAtEnd, "stop-service-at-end", false, "tell test service to exit after the test run")
	fs.BoolVar(&c.strictProperties, "strict-properties", false, "report unknown properties on returned objects")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if c.serviceURL == "" {
		fmt.Fprintln(os.Stderr, "-url is required")
		fs.Usage()
		return false
	}
	if os.Getenv(strictPropertiesEnvVar) != "" {
		c.strictProperties = true
	}
	return true
}

// rerunCommand builds a copy-pasteable command line that reruns exactly the
// given failed tests.
func (c commandParams) rerunCommand(failures []framework.TestResult) string {
	var b commandBuilder
	b.add(os.Args[0], "-url", c.serviceURL)
	if c.strictProperties {
		b.add("-strict-properties")
	}
	for _, f := range failures {
		b.add("-run", "^"+regexp.QuoteMeta(f.TestID.String())+"$")
	}
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
