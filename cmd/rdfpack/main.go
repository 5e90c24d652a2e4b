// ============================================================================
// rdfpack — Main Entry Point
// ============================================================================
//
// File: cmd/rdfpack/main.go
// Purpose: Application entry point and CLI initialization.
//
// Responsibilities:
//   1. Version Management - inject build info via ldflags
//   2. Panic Recovery - catch unexpected panics gracefully
//   3. CLI Setup - build and configure the Cobra command interface
//   4. Error Handling - unified command execution error handling
//
// Version Injection:
//   Variables injected at build time via -ldflags:
//   go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
//
// Usage:
//   ./rdfpack --help                  # Show help
//   ./rdfpack --version               # Show version
//   ./rdfpack prepare -- a.nt b.ttl    # Pack input files into batches
//   ./rdfpack publish                 # Submit written batches to the ledger
//   ./rdfpack status                  # Print effective configuration
//
// ============================================================================

package main

import (
	"fmt"
	"os"

	"github.com/asimov-platform/rdf-dataset-packer/internal/cli"
)

var (
	version = "1.0.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", r)
			os.Exit(1)
		}
	}()

	rootCmd := cli.BuildCLI()
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
