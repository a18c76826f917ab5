package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/qrshield/internal/app"
	"github.com/doeshing/qrshield/internal/infrastructure/alert"
	"github.com/doeshing/qrshield/internal/infrastructure/cli/helpers"
)

// NewCheckCommand creates the check command
func NewCheckCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "check <url>",
		Short: "Look up a URL with the threat oracle only",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.ScanService == nil {
				return errors.New(ErrScanServiceUnavailable)
			}
			spinner := helpers.NewSpinner(cmd.ErrOrStderr(), "checking "+args[0])
			spinner.Start()
			verdict := container.ScanService.Lookup(cmd.Context(), args[0])
			spinner.Stop()

			fmt.Fprintln(cmd.OutOrStdout(), alert.Label(verdict))
			return nil
		},
	}
}
