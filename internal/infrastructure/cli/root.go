package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/qrshield/internal/app"
	"github.com/doeshing/qrshield/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose    bool
	ConfigPath string
}

// NewRootCmd wires the cobra root command. The container is built lazily so
// that version and config commands work even when the environment is broken.
func NewRootCmd(ctx context.Context, opts Options) *cobra.Command {
	container := &app.Container{}
	configPath := opts.ConfigPath
	verbose := opts.Verbose

	root := &cobra.Command{
		Use:   "qrshield",
		Short: "QRSHIELD - QR code phishing scanner",
		Long: "qrshield decodes QR codes from images, live frame feeds and an HTTP surface, " +
			"and flags payloads that match the keyword blacklist or a Safe Browsing threat list.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipContainer(cmd) {
				return nil
			}
			built, err := app.BuildContainer(cmd.Context(), app.Options{
				ConfigPath:  configPath,
				Verbose:     verbose,
				AlertOutput: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			*container = *built
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetContext(ctx)

	root.PersistentFlags().StringVar(&configPath, "config", configPath, "Config file (default ~/.qrshield/config.yaml or $QRSHIELD_CONFIG)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", verbose, "Enable debug logging")

	root.AddCommand(commands.NewScanCommand(container))
	root.AddCommand(commands.NewWatchCommand(container))
	root.AddCommand(commands.NewCheckCommand(container))
	root.AddCommand(commands.NewServeCommand(container))
	root.AddCommand(commands.NewRulesCommand(container))
	root.AddCommand(commands.NewDoctorCommand(container))
	root.AddCommand(commands.NewConfigCommand(&configPath))
	root.AddCommand(commands.NewVersionCommand())
	return root
}

// skipContainer reports whether cmd or one of its parents opts out of the container.
func skipContainer(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[commands.AnnotationNoContainer] == "true" {
			return true
		}
	}
	return false
}
