package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/qrshield/internal/app"
	"github.com/doeshing/qrshield/internal/infrastructure/security"
)

// NewRulesCommand creates the rules command with list/test/init subcommands
func NewRulesCommand(container *app.Container) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the keyword blacklist",
	}

	rulesCmd.AddCommand(
		newRulesListCommand(container),
		newRulesTestCommand(container),
		newRulesInitCommand(container),
	)

	return rulesCmd
}

// newRulesListCommand prints the active keywords
func newRulesListCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List blacklist keywords",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Source: %s\n", container.Rules.Source())
			for _, keyword := range container.Rules.Keywords() {
				fmt.Fprintf(out, "  - %s\n", keyword)
			}
			return nil
		},
	}
}

// newRulesTestCommand reports which keywords a payload would trip
func newRulesTestCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "test <text>",
		Short: "Show which keywords match a payload",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			matches := container.Rules.Match(strings.Join(args, " "))
			if len(matches) == 0 {
				fmt.Fprintln(out, "No keyword matched.")
				return nil
			}
			for _, match := range matches {
				if match.Message != "" {
					fmt.Fprintf(out, "%s: %s\n", match.Keyword, match.Message)
				} else {
					fmt.Fprintln(out, match.Keyword)
				}
			}
			return nil
		},
	}
}

// newRulesInitCommand writes the built-in keywords to the rules file
func newRulesInitCommand(container *app.Container) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default blacklist to the rules file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := security.InitRules(container.Config.Classifier.RulesFile, force)
			if errors.Is(err, os.ErrExist) {
				fmt.Fprintf(cmd.OutOrStdout(), "Rules file already exists at %s (use --force to overwrite)\n", path)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default rules to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
