package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doeshing/qrshield/internal/app"
	"github.com/doeshing/qrshield/internal/infrastructure/cli/helpers"
)

// NewServeCommand creates the serve command
func NewServeCommand(container *app.Container) *cobra.Command {
	var addr string
	var noBanner bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP scanning surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = container.Config.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !noBanner {
				helpers.PrintBanner(cmd.OutOrStdout(), "QR phishing scanner on "+addr)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s (Ctrl+C to stop)\n", addr)
			return container.HTTPServer().Serve(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&noBanner, "no-banner", false, "Skip the startup banner")
	return cmd
}
