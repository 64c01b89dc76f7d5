// =============================================================================
// Swiss QR Reader - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Settings come from three
// layers, each overriding the one before:
//   1. Built-in defaults
//   2. The YAML configuration file (config.yaml)
//   3. Command-line flags and SWISSQR_* environment variables (via viper)
//
// A missing configuration file is not an error: the defaults are used.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultInputDir         = "./input"
	DefaultOutputDir        = "./output"
	DefaultInputArchiveDir  = "./input_archive"
	DefaultOutputArchiveDir = "./output_archive"
	DefaultRejectedDir      = "./rejected"
	DefaultInputPattern     = "*.txt"
	DefaultOutputNameFormat = "{uuid}.json"
	DefaultLogLevel         = "info"
	DefaultMaxConcurrency   = 4
	DefaultHomeCountry      = "CH"
	DefaultServerAddr       = ":8080"

	// EnvPrefix prefixes every environment override, e.g. SWISSQR_LOG_LEVEL.
	EnvPrefix = "SWISSQR"
)

// validLogLevels lists the accepted log_level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for decoded QR payload files.
	InputDir string `yaml:"input_dir"`

	// OutputDir receives one outgoing payment JSON file per valid payload.
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input files after successful processing.
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives a copy of every generated output file.
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// RejectedDir receives input files that failed validation. When empty,
	// rejected files stay in InputDir.
	RejectedDir string `yaml:"rejected_dir"`

	// ArchiveDateSubdirs files archived payloads and payments under
	// YYYY/MM/DD subdirectories of the archive directories.
	ArchiveDateSubdirs bool `yaml:"archive_date_subdirs"`

	// =========================================================================
	// INPUT AND OUTPUT SETTINGS
	// =========================================================================

	// InputPattern is the glob matched against file names in InputDir.
	InputPattern string `yaml:"input_pattern"`

	// OutputNameFormat defines the output file names.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {original}  - Input file name without extension
	OutputNameFormat string `yaml:"output_name_format"`

	// ReportFile is the path of the XLSX batch report. Empty disables it.
	ReportFile string `yaml:"report_file"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile receives a copy of every log line when set.
	LogFile string `yaml:"log_file"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files processed at once.
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps the batch going after a file fails.
	ContinueOnError bool `yaml:"continue_on_error"`

	// HomeCountry is the country of the paying account. It decides whether
	// a transfer is domestic (no fee split).
	HomeCountry string `yaml:"home_country"`

	// =========================================================================
	// SERVER SETTINGS
	// =========================================================================

	// ServerAddr is the listen address of the HTTP API.
	ServerAddr string `yaml:"server_addr"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration holding only the built-in defaults.
func Default() *MainConfig {
	cfg := &MainConfig{ContinueOnError: true}
	applyMainConfigDefaults(cfg)
	return cfg
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct. When the file does not exist the
//     defaults are returned.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseMainConfig(data)
}

// ParseMainConfig parses YAML configuration data, applies defaults and
// validates the result.
func ParseMainConfig(data []byte) (*MainConfig, error) {
	config := MainConfig{ContinueOnError: true}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// ApplyOverrides copies every key set in v (flag or environment) over cfg
// and validates the result.
func ApplyOverrides(cfg *MainConfig, v *viper.Viper) error {
	stringKeys := map[string]*string{
		"input_dir":          &cfg.InputDir,
		"output_dir":         &cfg.OutputDir,
		"input_archive_dir":  &cfg.InputArchiveDir,
		"output_archive_dir": &cfg.OutputArchiveDir,
		"rejected_dir":       &cfg.RejectedDir,
		"input_pattern":      &cfg.InputPattern,
		"output_name_format": &cfg.OutputNameFormat,
		"report_file":        &cfg.ReportFile,
		"log_file":           &cfg.LogFile,
		"log_level":          &cfg.LogLevel,
		"home_country":       &cfg.HomeCountry,
		"server_addr":        &cfg.ServerAddr,
	}
	for key, dst := range stringKeys {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	if v.IsSet("max_concurrency") {
		cfg.MaxConcurrency = v.GetInt("max_concurrency")
	}
	if v.IsSet("continue_on_error") {
		cfg.ContinueOnError = v.GetBool("continue_on_error")
	}
	if v.IsSet("archive_date_subdirs") {
		cfg.ArchiveDateSubdirs = v.GetBool("archive_date_subdirs")
	}

	applyMainConfigDefaults(cfg)

	if err := validateMainConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// NewViper returns a viper instance reading SWISSQR_* environment variables.
// Callers bind their flags to it before calling ApplyOverrides.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = DefaultInputDir
	}
	if config.OutputDir == "" {
		config.OutputDir = DefaultOutputDir
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = DefaultInputArchiveDir
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = DefaultOutputArchiveDir
	}
	if config.RejectedDir == "" {
		config.RejectedDir = DefaultRejectedDir
	}
	if config.InputPattern == "" {
		config.InputPattern = DefaultInputPattern
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = DefaultOutputNameFormat
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = DefaultMaxConcurrency
	}
	if config.HomeCountry == "" {
		config.HomeCountry = DefaultHomeCountry
	}
	if config.ServerAddr == "" {
		config.ServerAddr = DefaultServerAddr
	}

	config.LogLevel = strings.ToLower(config.LogLevel)
	config.HomeCountry = strings.ToUpper(config.HomeCountry)
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}
	if !validLogLevels[config.LogLevel] {
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}
	if len(config.HomeCountry) != 2 {
		return fmt.Errorf("home_country must be a two-letter code, got %q", config.HomeCountry)
	}
	return nil
}

// EnsureDirs creates every directory the batch pipeline writes to.
func (c *MainConfig) EnsureDirs() error {
	dirs := []string{
		c.InputDir,
		c.OutputDir,
		c.InputArchiveDir,
		c.OutputArchiveDir,
		c.RejectedDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
