package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMainConfigMissingFile(t *testing.T) {
	cfg, err := LoadMainConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadMainConfig() error = %v", err)
	}

	if cfg.InputDir != DefaultInputDir || cfg.OutputNameFormat != DefaultOutputNameFormat {
		t.Errorf("got %q/%q, want defaults", cfg.InputDir, cfg.OutputNameFormat)
	}
	if cfg.InputPattern != "*.txt" || cfg.MaxConcurrency != 4 || cfg.HomeCountry != "CH" {
		t.Errorf("got %q/%d/%q, want defaults", cfg.InputPattern, cfg.MaxConcurrency, cfg.HomeCountry)
	}
	if !cfg.ContinueOnError {
		t.Error("ContinueOnError = false, want true")
	}
}

func TestLoadMainConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
input_dir: /data/in
output_name_format: "{original}_{uuid}.json"
log_level: DEBUG
max_concurrency: 2
continue_on_error: false
home_country: li
archive_date_subdirs: true
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadMainConfig(path)
	if err != nil {
		t.Fatalf("LoadMainConfig() error = %v", err)
	}

	if cfg.InputDir != "/data/in" {
		t.Errorf("InputDir = %q", cfg.InputDir)
	}
	if cfg.OutputDir != DefaultOutputDir {
		t.Errorf("OutputDir = %q, want default", cfg.OutputDir)
	}
	if cfg.OutputNameFormat != "{original}_{uuid}.json" {
		t.Errorf("OutputNameFormat = %q", cfg.OutputNameFormat)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.MaxConcurrency != 2 || cfg.ContinueOnError {
		t.Errorf("MaxConcurrency/ContinueOnError = %d/%v", cfg.MaxConcurrency, cfg.ContinueOnError)
	}
	if cfg.HomeCountry != "LI" {
		t.Errorf("HomeCountry = %q, want LI", cfg.HomeCountry)
	}
	if !cfg.ArchiveDateSubdirs {
		t.Error("ArchiveDateSubdirs = false, want true")
	}
}

func TestParseMainConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "bad yaml", data: "input_dir: [unclosed"},
		{name: "negative concurrency", data: "max_concurrency: -1"},
		{name: "unknown log level", data: "log_level: verbose"},
		{name: "bad home country", data: "home_country: CHE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseMainConfig([]byte(tt.data)); err == nil {
				t.Error("ParseMainConfig() error = nil, want error")
			}
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	t.Setenv("SWISSQR_OUTPUT_DIR", "/env/out")
	t.Setenv("SWISSQR_MAX_CONCURRENCY", "8")
	t.Setenv("SWISSQR_ARCHIVE_DATE_SUBDIRS", "true")

	v := NewViper()
	v.Set("log_level", "warn")

	cfg := Default()
	if err := ApplyOverrides(cfg, v); err != nil {
		t.Fatalf("ApplyOverrides() error = %v", err)
	}

	if cfg.OutputDir != "/env/out" {
		t.Errorf("OutputDir = %q, want /env/out", cfg.OutputDir)
	}
	if cfg.MaxConcurrency != 8 {
		t.Errorf("MaxConcurrency = %d, want 8", cfg.MaxConcurrency)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.InputDir != DefaultInputDir {
		t.Errorf("InputDir = %q, want default", cfg.InputDir)
	}
	if !cfg.ArchiveDateSubdirs {
		t.Error("ArchiveDateSubdirs = false, want true")
	}

	v.Set("log_level", "loud")
	if err := ApplyOverrides(cfg, v); err == nil {
		t.Error("ApplyOverrides() error = nil, want invalid log level")
	}
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.InputDir = filepath.Join(root, "in")
	cfg.OutputDir = filepath.Join(root, "out")
	cfg.InputArchiveDir = filepath.Join(root, "archive", "in")
	cfg.OutputArchiveDir = filepath.Join(root, "archive", "out")
	cfg.RejectedDir = filepath.Join(root, "rejected")

	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs() error = %v", err)
	}

	for _, dir := range []string{cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir, cfg.RejectedDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("%s not created: %v", dir, err)
		}
	}
}
