package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the event ingestion and reporting API.

Examples:
  taskpulse serve              # Listen on TASKPULSE_ADDR (default :8080)
  taskpulse serve --port 3000  # Listen on port 3000`,
	RunE: runServe,
}

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides TASKPULSE_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	addr := a.Config.Addr
	if servePort > 0 {
		addr = fmt.Sprintf(":%d", servePort)
	}
	return a.Serve(ctx, addr)
}
