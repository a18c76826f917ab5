package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/qrshield/internal/app"
	"github.com/doeshing/qrshield/internal/application/session"
	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/infrastructure/cli/helpers"
)

// NewScanCommand creates the scan command
func NewScanCommand(container *app.Container) *cobra.Command {
	var exportPath, layout string

	cmd := &cobra.Command{
		Use:   "scan <image>...",
		Short: "Scan QR codes in image files",
		Long:  "Decode every QR code in the given images, classify each payload and print the session history.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if layout == "" {
				layout = container.Config.History.Layout
			}
			return runScan(cmd.Context(), cmd.OutOrStdout(), container, args, exportPath, layout)
		},
	}

	cmd.Flags().StringVarP(&exportPath, "export", "o", "", "Write the session history as CSV to this file or directory")
	cmd.Flags().StringVar(&layout, "layout", "", "CSV layout: history|capture (default from config)")
	return cmd
}

func runScan(ctx context.Context, out io.Writer, container *app.Container, paths []string, exportPath, layout string) error {
	if container.ScanService == nil {
		return errors.New(ErrScanServiceUnavailable)
	}
	sess, err := container.NewSession()
	if err != nil {
		return err
	}
	defer sess.End()

	failed := 0
	for _, path := range paths {
		fmt.Fprintln(out, path)
		if err := scanFile(ctx, out, container, sess, path); err != nil {
			fmt.Fprintf(out, "  error: %v\n", err)
			failed++
		}
	}

	records, err := sess.Snapshot()
	if err != nil {
		return err
	}
	helpers.PrintHistory(out, records, time.Now())
	if summary := helpers.SummarizeVerdicts(records); summary != "" {
		fmt.Fprintf(out, "Summary: %s\n", summary)
	}

	if exportPath != "" {
		written, err := helpers.ExportRecords(container.Exporter, exportPath, records, layout)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintf(out, "Exported %d records to %s\n", len(records), written)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images could not be scanned", failed, len(paths))
	}
	return nil
}

func scanFile(ctx context.Context, out io.Writer, container *app.Container, sess *session.Session, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	result, err := container.ScanService.ScanImage(ctx, sess, file)
	if errors.Is(err, domain.ErrDecodeEmpty) {
		fmt.Fprintf(out, "  %s\n", MsgNoCodeFound)
		return nil
	}
	if err != nil {
		return err
	}
	for _, outcome := range result.Outcomes {
		helpers.PrintOutcome(out, outcome)
	}
	return nil
}
