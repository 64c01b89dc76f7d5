// =============================================================================
// Swiss QR Reader - XLSX Batch Report
// =============================================================================
//
// This module writes one spreadsheet per batch run listing every processed
// payload file with its validation outcome. Finance staff open the report to
// see which bills were rejected and why.
//
// REPORT STRUCTURE:
//   Sheet "Payloads", one row per file:
//
//   | File     | Status  | Field | Reason   | Message | Version | Reference | IBAN | Creditor | Amount  | Currency | Output        |
//   |----------|---------|-------|----------|---------|---------|-----------|------|----------|---------|----------|---------------|
//   | bill.txt | VALID   |       |          |         | 0200    | QRR       | CH44 | Muster AG| 1949.75 | CHF      | 5f2c...json   |
//   | bad.txt  | INVALID | EPD   | MISSING  | ...     | 0200    |           |      |          |         |          |               |
//
//   Sheet "Summary", one row per status with its count.
//
// =============================================================================

package report

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/swissqr/internal/schema"
	"github.com/ginjaninja78/swissqr/internal/validation"
)

const (
	payloadSheet = "Payloads"
	summarySheet = "Summary"
)

// Status is the outcome of one file.
type Status string

const (
	StatusValid   Status = "VALID"
	StatusInvalid Status = "INVALID"
	StatusError   Status = "ERROR"
)

// statusOrder fixes the row order of the summary sheet.
var statusOrder = []Status{StatusValid, StatusInvalid, StatusError}

// header lists the payload sheet columns, matching the Row fields in order.
var header = []string{
	"File", "Status", "Field", "Reason", "Message", "Version",
	"Reference", "IBAN", "Creditor", "Amount", "Currency", "Output",
}

// =============================================================================
// REPORT ROW
// =============================================================================

// Row is one line of the payload sheet.
type Row struct {
	File          string
	Status        Status
	Field         string
	Reason        string
	Message       string
	Version       string
	ReferenceType string
	IBAN          string
	Creditor      string
	Amount        string
	Currency      string
	OutputFile    string
}

// NewRow builds the report row for one processed file.
//
// PARAMETERS:
//   - file: The input file path.
//   - result: The validation result; nil when the file could not be read.
//   - outputFile: The generated output file, empty on failure.
//   - err: The processing error, nil on success.
func NewRow(file string, result *validation.Result, outputFile string, err error) Row {
	row := Row{File: filepath.Base(file), Status: StatusValid}
	if outputFile != "" {
		row.OutputFile = filepath.Base(outputFile)
	}

	if result != nil {
		if result.Schema != nil {
			row.Version = result.Record.Get(schema.Version)
			row.ReferenceType = result.Record.Get(schema.ReferenceType)
			row.IBAN = result.Record.Get(schema.IBAN)
			row.Creditor = result.Record.Get(schema.CreditorName)
			row.Amount = result.Record.Get(schema.Amount)
			row.Currency = result.Record.Get(schema.Currency)
		}
		if result.Err != nil {
			row.Status = StatusInvalid
			row.Field = string(result.Err.Field)
			row.Reason = string(result.Err.Reason)
			row.Message = result.Err.Message
			return row
		}
	}

	if err != nil {
		var ve *validation.ValidationError
		if errors.As(err, &ve) {
			row.Status = StatusInvalid
			row.Field = string(ve.Field)
			row.Reason = string(ve.Reason)
			row.Message = ve.Message
		} else {
			row.Status = StatusError
			row.Message = err.Error()
		}
	}

	return row
}

// values returns the row cells in header order.
func (r Row) values() []interface{} {
	return []interface{}{
		r.File, string(r.Status), r.Field, r.Reason, r.Message, r.Version,
		r.ReferenceType, r.IBAN, r.Creditor, r.Amount, r.Currency, r.OutputFile,
	}
}

// =============================================================================
// WRITING
// =============================================================================

// Write saves rows as an XLSX workbook at path.
//
// RETURNS:
//   - An error if the workbook cannot be built or saved.
func Write(path string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", payloadSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, payloadSheet, 1, toCells(header)); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetCellStyle(payloadSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	counts := make(map[Status]int)
	for i, row := range rows {
		if err := writeRow(f, payloadSheet, i+2, row.values()); err != nil {
			return err
		}
		counts[row.Status]++
	}

	if err := f.SetColWidth(payloadSheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := writeSummary(f, counts, len(rows), headerStyle); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// writeSummary adds the per-status totals sheet.
func writeSummary(f *excelize.File, counts map[Status]int, total, headerStyle int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := writeRow(f, summarySheet, 1, []interface{}{"Status", "Files"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("failed to style summary header: %w", err)
	}

	for i, status := range statusOrder {
		if err := writeRow(f, summarySheet, i+2, []interface{}{string(status), counts[status]}); err != nil {
			return err
		}
	}
	return writeRow(f, summarySheet, len(statusOrder)+2, []interface{}{"TOTAL", total})
}

// writeRow writes values starting at column A of the given 1-based row.
func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// =============================================================================
// READING
// =============================================================================

// Read loads the payload rows of a report written by Write.
func Read(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(payloadSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("report has no header row")
	}

	// GetRows trims trailing empty cells.
	result := make([]Row, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		for len(cells) < len(header) {
			cells = append(cells, "")
		}
		result = append(result, Row{
			File:          cells[0],
			Status:        Status(cells[1]),
			Field:         cells[2],
			Reason:        cells[3],
			Message:       cells[4],
			Version:       cells[5],
			ReferenceType: cells[6],
			IBAN:          cells[7],
			Creditor:      cells[8],
			Amount:        cells[9],
			Currency:      cells[10],
			OutputFile:    cells[11],
		})
	}
	return result, nil
}
