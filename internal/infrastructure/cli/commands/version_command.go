package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/qrshield/internal/version"
)

// NewVersionCommand prints the build stamp, or just the release number with --short.
func NewVersionCommand() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Show qrshield version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{AnnotationNoContainer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), version.Version)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}
