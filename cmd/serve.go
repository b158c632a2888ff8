package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/dashboard"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard feed that analyze --publish posts to",
	Long: `Serve the live indicator feed:
  GET  /health          liveness
  POST /update_data     publish a report
  POST /progress        publish {processed,total}
  GET  /api/indicators  latest report (404 until one is published)
  GET  /api/progress    latest progress
  GET  /ws              websocket stream of progress and report events`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = currentConfig().DashboardAddr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return dashboard.NewServer(logger).ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: dashboard_addr from config)")
}
