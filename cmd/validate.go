// =============================================================================
// Swiss QR Reader - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks payload files
// against the QR-bill rules without producing any output files.
//
// COMMAND USAGE:
//   swissqr validate [file...]     Validate the given files
//   swissqr validate -             Validate a payload read from stdin
//
// EXIT STATUS:
//   Non-zero when at least one payload is invalid.
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/swissqr/internal/record"
	"github.com/ginjaninja78/swissqr/internal/validation"
)

// errInvalidPayloads is returned when any validated payload is rejected.
var errInvalidPayloads = errors.New("one or more payloads are invalid")

// jsonOutput prints one JSON object per payload instead of text.
var jsonOutput bool

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Validate QR-bill payload files",
	Long: `Validate reads decoded QR-bill payloads and reports, for each one, whether it
is valid. For an invalid payload the first failing field and the reason are
printed. Pass "-" or no file at all to read a single payload from stdin.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"-"}
		}

		invalid := 0
		for _, name := range args {
			text, err := readPayloadFile(cmd, name)
			if err != nil {
				return err
			}

			result := validation.Validate(record.Parse(text))
			if !result.Valid() {
				invalid++
				logger.Debug("payload rejected", "file", name, "field", result.Err.Field, "reason", result.Err.Reason)
			}
			if err := printResult(cmd.OutOrStdout(), name, result); err != nil {
				return err
			}
		}

		if invalid > 0 {
			return fmt.Errorf("%w: %d of %d", errInvalidPayloads, invalid, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON lines")
}

// readPayloadFile reads name, or stdin for "-".
func readPayloadFile(cmd *cobra.Command, name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read payload: %w", err)
	}
	return string(data), nil
}

// validationOutput is the JSON line printed with --json.
type validationOutput struct {
	File    string `json:"file"`
	Valid   bool   `json:"valid"`
	Field   string `json:"field,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
	Value   string `json:"value,omitempty"`
}

func printResult(w io.Writer, name string, result *validation.Result) error {
	if !jsonOutput {
		_, err := fmt.Fprintf(w, "%s: %s\n", name, validation.FormatResult(result))
		return err
	}

	out := validationOutput{File: name, Valid: result.Valid()}
	if result.Err != nil {
		out.Field = string(result.Err.Field)
		out.Reason = string(result.Err.Reason)
		out.Message = result.Err.Message
		out.Value = result.Err.Value
	}
	return json.NewEncoder(w).Encode(out)
}
