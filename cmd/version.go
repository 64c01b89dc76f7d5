// =============================================================================
// Swiss QR Reader - Version Command
// =============================================================================
//
// This file defines the 'version' command, which displays the application
// version and build information.
//
// COMMAND USAGE:
//   swissqr version
//
// OUTPUT:
//   Swiss QR Reader
//   Version:          1.0.0
//   Build Date:       2024-01-01
//   Go Version:       go1.24.0
//   Payload Versions: 0200
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/swissqr/internal/schema"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "-X 'github.com/ginjaninja78/swissqr/cmd.Version=1.0.0'"

// Version is the application version.
var Version = "1.0.0"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

// =============================================================================
// VERSION COMMAND DEFINITION
// =============================================================================

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, Go runtime version and the supported payload versions.`,

	// Printing the version needs no configuration.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},

	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Swiss QR Reader")
		fmt.Fprintf(out, "Version:          %s\n", Version)
		fmt.Fprintf(out, "Build Date:       %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version:       %s\n", runtime.Version())
		fmt.Fprintf(out, "Payload Versions: %s\n", strings.Join(schema.Versions(), ", "))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
