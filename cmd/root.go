// =============================================================================
// Swiss QR Reader - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (swissqr)
//   ├── processCmd     (swissqr process)
//   ├── validateCmd    (swissqr validate)
//   ├── checkdigitsCmd (swissqr checkdigits)
//   ├── serveCmd       (swissqr serve)
//   ├── reportCmd      (swissqr report)
//   └── versionCmd     (swissqr version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads the YAML configuration (--config, defaults when missing)
//   2. Applies flag and SWISSQR_* environment overrides through viper
//   3. Sets up the structured logger
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/swissqr/internal/config"
	"github.com/ginjaninja78/swissqr/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// settings collects flag and environment overrides.
var settings = config.NewViper()

// appConfig and logger are set up by initConfig before a subcommand runs.
var (
	appConfig *config.MainConfig
	logger    *slog.Logger
	logCloser io.Closer
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "swissqr",
	Short: "Swiss QR Reader - Validate Swiss QR-bill payloads and turn them into payments",
	Long: `Swiss QR Reader validates the text payload of Swiss QR-bills (the "SPC"
record decoded from the QR code on a payment slip) and converts valid bills
into outgoing payment records.

Key Features:
  - Full QR-bill rule set: IBAN and reference checksums, address rules, length caps
  - First-failure diagnostics naming the offending field
  - Batch processing of payload files with archival and XLSX reports
  - HTTP API for validation and payment generation

Example Usage:
  swissqr validate bill.txt             # Validate a payload file
  swissqr process                       # Process all files in the input directory
  swissqr process --config ./my.yaml    # Use a custom configuration file
  swissqr report report.xlsx            # Print a batch report
  swissqr serve --addr :9090            # Start the HTTP API`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	settings.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("log-file", "", "Append log output to this file")
	settings.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))

	rootCmd.PersistentFlags().String("home-country", "", "Country of the paying account (default CH)")
	settings.BindPFlag("home_country", rootCmd.PersistentFlags().Lookup("home-country"))
}

// initConfig loads the configuration and builds the logger.
func initConfig() error {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	if err := config.ApplyOverrides(cfg, settings); err != nil {
		return err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	l, closer, err := logging.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	appConfig = cfg
	logger = l
	logCloser = closer
	slog.SetDefault(l)

	logger.Debug("configuration loaded", "config", cfgFile, "input_dir", cfg.InputDir, "output_dir", cfg.OutputDir)
	return nil
}
