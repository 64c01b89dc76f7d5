// =============================================================================
// Swiss QR Reader - Converter Module
// =============================================================================
//
// This module contains the per-file pipeline. It takes one decoded QR payload
// file from the input directory to an outgoing payment JSON file.
//
// CONVERSION PIPELINE:
//   1. Read the payload file
//   2. Split it into lines and drop anything before "SPC"
//   3. Validate the record
//   4. Build the outgoing payment
//   5. Write the output file
//   6. Archive the processed files
//
// A file that fails validation is moved to the rejected directory so the
// next run does not pick it up again.
//
// CONCURRENCY:
//   A Converter handles exactly one file and shares no state, so any number
//   of them can run at once (see Batch).
//
// =============================================================================

package converter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/swissqr/internal/config"
	"github.com/ginjaninja78/swissqr/internal/payment"
	"github.com/ginjaninja78/swissqr/internal/record"
	"github.com/ginjaninja78/swissqr/internal/validation"
	"github.com/ginjaninja78/swissqr/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the generated payment file.
	// This is empty if processing failed or in dry-run mode.
	OutputFile string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Validation is the validator outcome, nil when the file was never read.
	Validation *validation.Result

	// Payment is the generated payment, nil on failure.
	Payment *payment.OutgoingPayment

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Lines is the number of payload lines after trimming to "SPC".
	Lines int

	// ValidationErrors is 1 when the record was rejected by the validator.
	ValidationErrors int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// ValidationError returns the validator failure behind r, if any.
func (r Result) ValidationError() *validation.ValidationError {
	var ve *validation.ValidationError
	if errors.As(r.Error, &ve) {
		return ve
	}
	return nil
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Logger is the logging interface used by the pipeline. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Converter handles the conversion of a single payload file.
type Converter struct {
	// path is the path to the input payload file.
	path string

	// mainConfig is the main application configuration.
	mainConfig *config.MainConfig

	// files moves input and output files around.
	files *utils.FileManager

	// logger receives progress and failure messages.
	logger Logger

	// dryRun validates and adapts without touching the file system.
	dryRun bool
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - path: The path to the input payload file.
//   - mainConfig: The main application configuration.
//   - files: The file manager for output, archival and rejection.
//   - logger: The pipeline logger.
//
// RETURNS:
//   - A new Converter instance.
func New(path string, mainConfig *config.MainConfig, files *utils.FileManager, logger Logger) *Converter {
	return &Converter{
		path:       path,
		mainConfig: mainConfig,
		files:      files,
		logger:     logger,
	}
}

// DryRun makes Run stop after building the payment.
func (c *Converter) DryRun(enabled bool) *Converter {
	c.dryRun = enabled
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing.
func (c *Converter) Run(ctx context.Context) (result Result) {
	startTime := time.Now()
	result = Result{FilePath: c.path}
	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	if err := ctx.Err(); err != nil {
		result.Error = fmt.Errorf("processing cancelled: %w", err)
		return result
	}

	c.logger.Info("processing file", "file", c.path)

	// =========================================================================
	// STEP 1: READ AND SPLIT
	// =========================================================================

	data, err := os.ReadFile(c.path)
	if err != nil {
		result.Error = fmt.Errorf("failed to read payload: %w", err)
		return result
	}

	raw := record.Parse(string(data))
	result.Stats.Lines = len(raw)
	if !record.LooksComplete(raw) {
		c.logger.Warn("payload looks incomplete", "file", c.path, "lines", len(raw))
	}

	// =========================================================================
	// STEP 2: VALIDATE AND ADAPT
	// =========================================================================

	p, vr, err := payment.FromPayload(raw, payment.Options{HomeCountry: c.mainConfig.HomeCountry})
	result.Validation = vr
	if err != nil {
		if !vr.Valid() {
			result.Stats.ValidationErrors = 1
			c.logger.Warn("validation failed",
				"file", c.path,
				"field", vr.Err.Field,
				"reason", vr.Err.Reason,
				"message", vr.Err.Message)
		}
		result.Error = fmt.Errorf("failed to build payment: %w", err)
		c.reject()
		return result
	}

	result.Payment = p
	c.logger.Debug("payment built", "file", c.path, "type", p.PaymentType, "fee", p.FeeType)

	if c.dryRun {
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 3: WRITE OUTPUT
	// =========================================================================

	outputPath, err := c.writeOutput(p)
	if err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}

	result.OutputFile = outputPath
	c.logger.Info("wrote output", "file", c.path, "output", outputPath)

	// =========================================================================
	// STEP 4: ARCHIVE FILES
	// =========================================================================

	if err := c.archiveFiles(outputPath); err != nil {
		// The payment exists; archival problems do not fail the file.
		c.logger.Warn("failed to archive files", "file", c.path, "error", err)
	}

	result.Success = true
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// writeOutput writes the payment as indented JSON to the output directory.
func (c *Converter) writeOutput(p *payment.OutgoingPayment) (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode payment: %w", err)
	}
	data = append(data, '\n')

	fileName := utils.GenerateOutputFileName(c.mainConfig.OutputNameFormat, c.path)
	outputPath := filepath.Join(c.files.OutputDir, fileName)

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return outputPath, nil
}

// archiveFiles moves the input to the input archive and copies the output
// to the output archive.
func (c *Converter) archiveFiles(outputPath string) error {
	if _, err := c.files.ArchiveInputFile(c.path); err != nil {
		return err
	}
	if _, err := c.files.ArchiveOutputFile(outputPath); err != nil {
		return err
	}
	return nil
}

// reject moves a failed input out of the input directory.
func (c *Converter) reject() {
	if c.dryRun {
		return
	}
	moved, err := c.files.RejectInputFile(c.path)
	if err != nil {
		c.logger.Error("failed to move rejected file", "file", c.path, "error", err)
		return
	}
	c.logger.Debug("rejected file moved", "file", c.path, "to", moved)
}
