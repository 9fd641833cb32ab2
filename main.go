package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jmap-tools/jmap-contract-tests/framework"
	"github.com/jmap-tools/jmap-contract-tests/harness"
	"github.com/jmap-tools/jmap-contract-tests/jmaptests"
)

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	adapter, err := harness.NewServiceAdapter(params.serviceURL, mainDebugLogger, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Test service error: %s\n", err)
		os.Exit(1)
	}

	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, params.filters,
		adapter.MissingCapabilities(jmaptests.AllCapabilities))

	config := jmaptests.Config{
		Adapter:          adapter,
		Transport:        harness.NewHTTPTransport(adapter.Info().APIURL, mainDebugLogger),
		HasCapability:    adapter.HasCapability,
		StrictProperties: params.strictProperties,
	}

	fmt.Println("Running test suite")

	testLogger := &ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := jmaptests.RunTestSuite(jmaptests.DefaultSuite(), config,
		params.filters.AsFilter, testLogger)

	if params.stopServiceAtEnd {
		if err := adapter.StopService(); err != nil {
			fmt.Fprintf(os.Stderr, "Could not stop test service: %s\n", err)
		}
	}

	fmt.Println()
	framework.PrintResults(os.Stdout, results)
	if !results.OK() {
		fmt.Println()
		fmt.Println("To run only the failed tests again:")
		fmt.Printf("  %s\n", params.rerunCommand(results.Failures))
		os.Exit(1)
	}
}
