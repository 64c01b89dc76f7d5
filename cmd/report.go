// =============================================================================
// Swiss QR Reader - Report Command
// =============================================================================
//
// This file defines the 'report' command, which prints an XLSX batch report
// written by 'process --report' back to the terminal.
//
// COMMAND USAGE:
//   swissqr report <report.xlsx>
//
// OUTPUT:
//   VALID    bill.txt     -> 5f2c...json
//   INVALID  broken.txt   EPD MISSING
//
//   Valid: 1  Invalid: 1  Errors: 0
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/swissqr/internal/report"
)

// reportCmd represents the 'report' command.
var reportCmd = &cobra.Command{
	Use:   "report <report.xlsx>",
	Short: "Print a batch report",
	Args:  cobra.ExactArgs(1),

	// Reading a report needs no configuration.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},

	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := report.Read(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		counts := make(map[report.Status]int)
		for _, row := range rows {
			counts[row.Status]++

			switch row.Status {
			case report.StatusValid:
				fmt.Fprintf(out, "%-8s %-24s -> %s\n", row.Status, row.File, row.OutputFile)
			case report.StatusInvalid:
				fmt.Fprintf(out, "%-8s %-24s %s %s\n", row.Status, row.File, row.Field, row.Reason)
			default:
				fmt.Fprintf(out, "%-8s %-24s %s\n", row.Status, row.File, row.Message)
			}
		}

		fmt.Fprintf(out, "\nValid: %d  Invalid: %d  Errors: %d\n",
			counts[report.StatusValid], counts[report.StatusInvalid], counts[report.StatusError])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
