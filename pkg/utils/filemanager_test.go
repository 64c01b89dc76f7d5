package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func newTestFileManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "input"),
		filepath.Join(root, "output"),
		filepath.Join(root, "input_archive"),
		filepath.Join(root, "output_archive"),
		filepath.Join(root, "rejected"),
	)
	for _, dir := range []string{fm.InputDir, fm.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	return fm
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverInputFiles(t *testing.T) {
	fm := newTestFileManager(t)
	writeFile(t, filepath.Join(fm.InputDir, "b.txt"), "SPC")
	writeFile(t, filepath.Join(fm.InputDir, "a.txt"), "SPC")
	writeFile(t, filepath.Join(fm.InputDir, "notes.md"), "ignored")
	if err := os.Mkdir(filepath.Join(fm.InputDir, "dir.txt"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := fm.DiscoverInputFiles("")
	if err != nil {
		t.Fatalf("DiscoverInputFiles() error = %v", err)
	}

	want := []string{filepath.Join(fm.InputDir, "a.txt"), filepath.Join(fm.InputDir, "b.txt")}
	if len(files) != len(want) {
		t.Fatalf("DiscoverInputFiles() = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestArchiveAndReject(t *testing.T) {
	fm := newTestFileManager(t)

	input := filepath.Join(fm.InputDir, "bill.txt")
	output := filepath.Join(fm.OutputDir, "bill.json")
	rejected := filepath.Join(fm.InputDir, "broken.txt")
	writeFile(t, input, "SPC")
	writeFile(t, output, "{}")
	writeFile(t, rejected, "SPX")

	archived, err := fm.ArchiveInputFile(input)
	if err != nil {
		t.Fatalf("ArchiveInputFile() error = %v", err)
	}
	if FileExists(input) || !FileExists(archived) {
		t.Errorf("input not moved to %s", archived)
	}

	copied, err := fm.ArchiveOutputFile(output)
	if err != nil {
		t.Fatalf("ArchiveOutputFile() error = %v", err)
	}
	if !FileExists(output) || !FileExists(copied) {
		t.Errorf("output not copied to %s", copied)
	}

	moved, err := fm.RejectInputFile(rejected)
	if err != nil {
		t.Fatalf("RejectInputFile() error = %v", err)
	}
	if moved != filepath.Join(fm.RejectedDir, "broken.txt") || FileExists(rejected) {
		t.Errorf("RejectInputFile() = %q, rejected file still present: %v", moved, FileExists(rejected))
	}
}

func TestRejectInputFileWithoutDir(t *testing.T) {
	fm := newTestFileManager(t)
	fm.RejectedDir = ""

	path := filepath.Join(fm.InputDir, "broken.txt")
	writeFile(t, path, "SPX")

	got, err := fm.RejectInputFile(path)
	if err != nil || got != path || !FileExists(path) {
		t.Errorf("RejectInputFile() = %q, %v; want file left in place", got, err)
	}
}

func TestArchiveTimestampSubdirs(t *testing.T) {
	fm := newTestFileManager(t)
	fm.UseTimestampSubdirs = true

	input := filepath.Join(fm.InputDir, "bill.txt")
	writeFile(t, input, "SPC")

	archived, err := fm.ArchiveInputFile(input)
	if err != nil {
		t.Fatalf("ArchiveInputFile() error = %v", err)
	}

	day := time.Now().Format("2006/01/02")
	if !strings.Contains(filepath.ToSlash(archived), day) {
		t.Errorf("archived path %q lacks date %s", archived, day)
	}
}

func TestGenerateOutputFileName(t *testing.T) {
	uuidPattern := `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`

	tests := []struct {
		format string
		want   string
	}{
		{format: "{uuid}.json", want: `^` + uuidPattern + `\.json$`},
		{format: "{original}_{uuid}", want: `^bill-0042_` + uuidPattern + `\.json$`},
		{format: "{date}_{original}.json", want: `^\d{8}_bill-0042\.json$`},
		{format: "payment_{timestamp}.JSON", want: `^payment_\d{8}_\d{6}\.JSON$`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got := GenerateOutputFileName(tt.format, "input/bill-0042.txt")
			if !regexp.MustCompile(tt.want).MatchString(got) {
				t.Errorf("GenerateOutputFileName(%q) = %q, want match %s", tt.format, got, tt.want)
			}
		})
	}

	if a, b := GenerateOutputFileName("{uuid}", "x.txt"), GenerateOutputFileName("{uuid}", "x.txt"); a == b {
		t.Errorf("two generated names are equal: %s", a)
	}
}

func TestWriteLogs(t *testing.T) {
	fm := newTestFileManager(t)

	path, err := WriteErrorLog(nil, fm.OutputDir)
	if err != nil || path != "" {
		t.Fatalf("WriteErrorLog(nil) = %q, %v; want no file", path, err)
	}

	path, err = WriteErrorLog([]ErrorLogEntry{{
		Timestamp:    time.Now(),
		FileName:     "broken.txt",
		ErrorType:    "validation",
		ErrorMessage: "trailer must be \"EPD\"",
		FieldName:    "EPD",
		Reason:       "MISSING",
	}}, fm.OutputDir)
	if err != nil {
		t.Fatalf("WriteErrorLog() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	for _, want := range []string{"Total Errors: 1", "broken.txt", "Field:          EPD", "Reason:         MISSING"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("error log lacks %q:\n%s", want, data)
		}
	}

	start := time.Now()
	path, err = WriteSummaryLog(ProcessingSummary{
		StartTime:       start,
		EndTime:         start.Add(time.Second),
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		ProcessedFiles:  []ProcessedFileInfo{{InputFile: "bill.txt", OutputFile: "bill.json", ReferenceType: "QRR", Amount: "10.00", Currency: "CHF"}},
		FailedFilesList: []FailedFileInfo{{InputFile: "broken.txt", ErrorType: "validation", ErrorMessage: "bad"}},
	}, fm.OutputDir)
	if err != nil {
		t.Fatalf("WriteSummaryLog() error = %v", err)
	}
	data, _ = os.ReadFile(path)
	for _, want := range []string{"Total Files:        2", "Amount:       10.00 CHF", "File:  broken.txt"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("summary lacks %q:\n%s", want, data)
		}
	}
}
