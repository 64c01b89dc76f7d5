// =============================================================================
// Swiss QR Reader - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the batch pipeline over
// the payload files in the input directory.
//
// COMMAND USAGE:
//   swissqr process [flags]
//
// FLAGS:
//   --dry-run          : Validate and build payments without writing or moving files
//   --file             : Process only this file instead of scanning the input directory
//   --input-dir        : Override input_dir
//   --output-dir       : Override output_dir
//   --report           : Write the XLSX batch report to this path
//   --max-concurrency  : Override max_concurrency
//
// PROCESSING PIPELINE:
//   1. Discover payload files in the input directory
//   2. For each file (concurrently):
//      a. Split the decoded text into lines
//      b. Validate the record
//      c. Build the outgoing payment
//      d. Write the payment JSON
//      e. Archive or reject the input
//   3. Write the error log, the processing summary and the XLSX report
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/swissqr/internal/converter"
	"github.com/ginjaninja78/swissqr/internal/report"
	"github.com/ginjaninja78/swissqr/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun simulates processing without writing output files.
var dryRun bool

// filePath is a single file to process instead of the input directory.
var filePath string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process QR-bill payload files and convert them to payments",
	Long: `The process command scans the input directory for decoded QR-bill payloads,
validates each one and writes an outgoing payment JSON file for every valid bill.

Processing is done concurrently. Each file is processed independently, and
errors in one file do not affect the processing of others unless
continue_on_error is false.

On successful processing:
  - The payment JSON is placed in the output directory
  - The original payload is moved to the input archive
  - A copy of the payment is placed in the output archive

On error:
  - The payload is moved to the rejected directory
  - An error log naming the failing field is created in the output directory
  - Processing continues for other files`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runProcess(ctx, cmd)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Validate and build payments without writing or moving files",
	)

	processCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Process only this file",
	)

	// Flags below override configuration keys of the same name.
	processCmd.Flags().String("input-dir", "", "Directory scanned for payload files")
	settings.BindPFlag("input_dir", processCmd.Flags().Lookup("input-dir"))

	processCmd.Flags().String("output-dir", "", "Directory receiving payment files")
	settings.BindPFlag("output_dir", processCmd.Flags().Lookup("output-dir"))

	processCmd.Flags().String("report", "", "Write the XLSX batch report to this path")
	settings.BindPFlag("report_file", processCmd.Flags().Lookup("report"))

	processCmd.Flags().Int("max-concurrency", 0, "Maximum number of files processed at once")
	settings.BindPFlag("max_concurrency", processCmd.Flags().Lookup("max-concurrency"))
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess orchestrates the batch pipeline.
func runProcess(ctx context.Context, cmd *cobra.Command) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "=== Swiss QR Reader ===")

	// =========================================================================
	// STEP 1: PREPARE DIRECTORIES AND DISCOVER INPUT FILES
	// =========================================================================

	if !dryRun {
		if err := appConfig.EnsureDirs(); err != nil {
			return err
		}
	}

	batch := converter.NewBatch(appConfig, logger)
	batch.DryRun = dryRun

	var inputFiles []string
	if filePath != "" {
		inputFiles = []string{filePath}
	} else {
		files, err := batch.Files.DiscoverInputFiles(appConfig.InputPattern)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
		inputFiles = files
	}

	if len(inputFiles) == 0 {
		fmt.Fprintln(out, "No payload files found in the input directory.")
		return nil
	}

	fmt.Fprintf(out, "Found %d file(s) to process\n", len(inputFiles))

	// =========================================================================
	// STEP 2: PROCESS FILES CONCURRENTLY
	// =========================================================================

	results, batchErr := batch.Run(ctx, inputFiles)

	var successCount, errorCount int
	for _, result := range results {
		name := filepath.Base(result.FilePath)
		if result.Success {
			successCount++
			fmt.Fprintf(out, "  ✓ %s -> %s\n", name, filepath.Base(result.OutputFile))
		} else {
			errorCount++
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
		}
	}

	// =========================================================================
	// STEP 3: WRITE LOGS AND REPORT
	// =========================================================================

	endTime := time.Now()
	if !dryRun {
		writeRunLogs(results, startTime, endTime)
	}

	if appConfig.ReportFile != "" && !dryRun {
		if err := report.Write(appConfig.ReportFile, converter.ReportRows(results)); err != nil {
			logger.Error("failed to write report", "path", appConfig.ReportFile, "error", err)
		} else {
			fmt.Fprintf(out, "Report written to %s\n", appConfig.ReportFile)
		}
	}

	// =========================================================================
	// STEP 4: PRINT SUMMARY
	// =========================================================================

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", len(inputFiles))
	fmt.Fprintf(out, "Successful:      %d\n", successCount)
	fmt.Fprintf(out, "Errors:          %d\n", errorCount)
	fmt.Fprintf(out, "Time elapsed:    %s\n", endTime.Sub(startTime))

	if errorCount > 0 && !dryRun {
		fmt.Fprintln(out, "\nErrors have been logged to the output directory.")
	}

	return batchErr
}

// writeRunLogs writes the error log and the processing summary.
func writeRunLogs(results []converter.Result, start, end time.Time) {
	if path, err := utils.WriteErrorLog(converter.ErrorEntries(results, end), appConfig.OutputDir); err != nil {
		logger.Error("failed to write error log", "error", err)
	} else if path != "" {
		logger.Info("error log written", "path", path)
	}

	summary := converter.Summarize(results, start, end)
	if path, err := utils.WriteSummaryLog(summary, appConfig.OutputDir); err != nil {
		logger.Error("failed to write summary", "error", err)
	} else {
		logger.Info("summary written", "path", path)
	}
}
