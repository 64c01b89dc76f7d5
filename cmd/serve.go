// =============================================================================
// Swiss QR Reader - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which starts the HTTP API.
//
// ENDPOINTS:
//   POST /api/validate     Validate a payload (text body or {"payload": "..."})
//   POST /api/payment      Build the outgoing payment, 422 when invalid
//   GET  /api/checkdigits  ?value=...&algorithm=mod97|mod10
//   GET  /healthz          Liveness probe
//
// =============================================================================

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/swissqr/internal/web"
)

// serveCmd represents the 'serve' command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve starts an HTTP API exposing payload validation, payment generation and
check digit computation. The server stops gracefully on SIGINT or SIGTERM.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.LogLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		server := web.NewServer(web.Options{
			HomeCountry: appConfig.HomeCountry,
			Logger:      logger,
		})
		return server.Run(ctx, appConfig.ServerAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")
	settings.BindPFlag("server_addr", serveCmd.Flags().Lookup("addr"))
}
