// =============================================================================
// Swiss QR Reader - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Swiss QR Reader CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   swissqr process       - Process all payload files in the input directory
//   swissqr validate      - Validate payload files
//   swissqr checkdigits   - Compute IBAN or reference check digits
//   swissqr serve         - Start the HTTP API
//   swissqr version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core business logic (checksums, schema, validation, payments)
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/swissqr/cmd"
)

func main() {
	cmd.Execute()
}
