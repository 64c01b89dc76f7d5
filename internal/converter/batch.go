package converter

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/swissqr/internal/config"
	"github.com/ginjaninja78/swissqr/internal/report"
	"github.com/ginjaninja78/swissqr/pkg/utils"
)

// Batch processes many payload files with bounded concurrency.
type Batch struct {
	Config *config.MainConfig
	Files  *utils.FileManager
	Logger Logger
	DryRun bool
}

// NewBatch creates a Batch whose file manager follows cfg.
func NewBatch(cfg *config.MainConfig, logger Logger) *Batch {
	files := utils.NewFileManager(
		cfg.InputDir,
		cfg.OutputDir,
		cfg.InputArchiveDir,
		cfg.OutputArchiveDir,
		cfg.RejectedDir,
	)
	files.UseTimestampSubdirs = cfg.ArchiveDateSubdirs

	return &Batch{
		Config: cfg,
		Files:  files,
		Logger: logger,
	}
}

// Run processes paths, at most Config.MaxConcurrency at a time. Results are
// returned in the order of paths.
//
// When Config.ContinueOnError is false the first failure cancels the files
// not yet started and is returned as the error. Files already running finish.
func (b *Batch) Run(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.Config.MaxConcurrency)

	for i, path := range paths {
		g.Go(func() error {
			results[i] = New(path, b.Config, b.Files, b.Logger).DryRun(b.DryRun).Run(gctx)
			if !results[i].Success && !b.Config.ContinueOnError {
				return fmt.Errorf("failed to process %s: %w", filepath.Base(path), results[i].Error)
			}
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

// =============================================================================
// RUN REPORTING
// =============================================================================

// Summarize builds the processing summary of a run.
func Summarize(results []Result, start, end time.Time) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{
		StartTime:  start,
		EndTime:    end,
		TotalFiles: len(results),
	}

	for _, r := range results {
		summary.ValidationErrors += r.Stats.ValidationErrors

		if !r.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    r.FilePath,
				ErrorMessage: errorMessage(r.Error),
				ErrorType:    errorType(r),
			})
			continue
		}

		summary.SuccessfulFiles++
		info := utils.ProcessedFileInfo{
			InputFile:   r.FilePath,
			OutputFile:  r.OutputFile,
			ProcessTime: r.Stats.ProcessingTime,
		}
		if r.Payment != nil {
			info.ReferenceType = string(r.Payment.PaymentType)
			info.Currency = r.Payment.CurrencyCode
			if r.Payment.Amount.Valid {
				info.Amount = r.Payment.Amount.Decimal.StringFixed(2)
			}
		}
		summary.ProcessedFiles = append(summary.ProcessedFiles, info)
	}

	return summary
}

// ErrorEntries returns one error log entry per failed file.
func ErrorEntries(results []Result, now time.Time) []utils.ErrorLogEntry {
	var entries []utils.ErrorLogEntry
	for _, r := range results {
		if r.Success {
			continue
		}

		entry := utils.ErrorLogEntry{
			Timestamp:    now,
			FileName:     filepath.Base(r.FilePath),
			ErrorType:    errorType(r),
			ErrorMessage: errorMessage(r.Error),
		}
		if ve := r.ValidationError(); ve != nil {
			entry.FieldName = string(ve.Field)
			entry.Reason = string(ve.Reason)
			entry.FieldValue = ve.Value
		}
		entries = append(entries, entry)
	}
	return entries
}

// ReportRows converts results to XLSX report rows.
func ReportRows(results []Result) []report.Row {
	rows := make([]report.Row, len(results))
	for i, r := range results {
		rows[i] = report.NewRow(r.FilePath, r.Validation, r.OutputFile, r.Error)
	}
	return rows
}

func errorType(r Result) string {
	if r.ValidationError() != nil {
		return "validation"
	}
	return "processing"
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
