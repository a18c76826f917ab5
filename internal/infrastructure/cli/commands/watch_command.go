package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/qrshield/internal/app"
	"github.com/doeshing/qrshield/internal/infrastructure/cli/helpers"
	"github.com/doeshing/qrshield/internal/infrastructure/frames"
	"github.com/doeshing/qrshield/internal/ports"
)

// NewWatchCommand creates the watch command
func NewWatchCommand(container *app.Container) *cobra.Command {
	var (
		source       string
		frameTimeout time.Duration
		exportPath   string
		layout       string
		snapshot     string
		noBanner     bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Scan a live frame feed until interrupted",
		Long: "Read frames from a directory of images or an MJPEG HTTP stream, alert on every new " +
			"non-safe QR code and print the session history on exit. Stop with Ctrl+C.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var viewer ports.FrameViewer
			if snapshot != "" {
				viewer = &frames.SnapshotViewer{Path: snapshot}
			}
			feed, err := container.LiveFeed(source, frameTimeout, viewer)
			if err != nil {
				return err
			}
			if !noBanner {
				helpers.PrintBanner(out, "Live feed: "+feed.Source.Describe())
			}

			sess, err := container.NewSession()
			if err != nil {
				return err
			}
			defer sess.End()

			stats, err := feed.Run(ctx, sess)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Stopped (%s): %d frames, %d payloads, %d new, %d alerts\n",
				stats.StopReason, stats.Frames, stats.Payloads, stats.Recorded, stats.Alerts)

			records, err := sess.Snapshot()
			if err != nil {
				return err
			}
			helpers.PrintHistory(out, records, time.Now())

			if exportPath != "" {
				if layout == "" {
					layout = container.Config.History.Layout
				}
				written, err := helpers.ExportRecords(container.Exporter, exportPath, records, layout)
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				fmt.Fprintf(out, "Exported %d records to %s\n", len(records), written)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Frame directory or http(s) MJPEG stream (default from config)")
	cmd.Flags().DurationVar(&frameTimeout, "frame-timeout", 0, "Give up when no frame arrives within this duration (default from config)")
	cmd.Flags().StringVarP(&exportPath, "export", "o", "", "Write the session history as CSV on exit")
	cmd.Flags().StringVar(&layout, "layout", "", "CSV layout: history|capture (default from config)")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "Keep the latest frame as a JPEG at this path")
	cmd.Flags().BoolVar(&noBanner, "no-banner", false, "Skip the startup banner")
	return cmd
}
