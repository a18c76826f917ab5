package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	configapp "github.com/doeshing/qrshield/internal/application/config"
	configinfra "github.com/doeshing/qrshield/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with all subcommands. It reads the file
// directly so a broken config can still be inspected and reset.
func NewConfigCommand(configPath *string) *cobra.Command {
	loader := func() *configinfra.FileLoader {
		return configinfra.NewFileLoader(*configPath)
	}

	configCmd := &cobra.Command{
		Use:         "config",
		Short:       "Inspect qrshield configuration",
		Annotations: map[string]string{AnnotationNoContainer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd.Context(), cmd.OutOrStdout(), loader())
		},
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the effective configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return showConfiguration(cmd.Context(), cmd.OutOrStdout(), loader())
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), loader().Path())
				return nil
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Validate the configuration file",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loader().Load(cmd.Context())
				if err != nil {
					return err
				}
				if err := configapp.Validate(cfg); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), MsgConfigurationValid)
				return nil
			},
		},
		newConfigInitCommand(loader),
	)

	return configCmd
}

func newConfigInitCommand(loader func() *configinfra.FileLoader) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			l := loader()
			if _, err := os.Stat(l.Path()); err == nil && !force {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (use --force to overwrite)\n", MsgConfigExists, l.Path())
				return nil
			}
			if err := l.Init(force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", MsgConfigInitialized, l.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func showConfiguration(ctx context.Context, out io.Writer, loader *configinfra.FileLoader) error {
	cfg, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	raw, err := configinfra.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "# %s\n%s", loader.Path(), raw)
	return nil
}
