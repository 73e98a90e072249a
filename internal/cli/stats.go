package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func (a *App) statsCmd() *cobra.Command {
	var from, to, tz string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show totals, streaks and the activity heatmap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			summary, err := c.Summary(cmd.Context(), tz)
			if err != nil {
				return err
			}
			heatmap, err := c.Heatmap(cmd.Context(), from, to, tz)
			if err != nil {
				return err
			}

			a.title("Focus summary")
			fmt.Fprintf(a.Out, "  Total       %s (%.1f h over %d sessions)\n",
				a.style(styleBold, formatSeconds(summary.TotalSeconds)), summary.TotalHours, summary.Sessions)
			fmt.Fprintf(a.Out, "  Active days %d, %.1f h per active day\n", summary.ActiveDays, summary.DailyAverageHours)
			fmt.Fprintf(a.Out, "  Streak      %s current, %d longest\n",
				a.style(styleBold, fmt.Sprintf("%d", summary.CurrentStreak)), summary.LongestStreak)
			if summary.LastActiveDay != "" {
				fmt.Fprintf(a.Out, "  Last active %s\n", summary.LastActiveDay)
			}
			fmt.Fprintln(a.Out)

			a.muted(fmt.Sprintf("%s to %s (%s)", heatmap.From, heatmap.To, heatmap.Timezone))
			fmt.Fprint(a.Out, renderHeatmap(heatmap.Cells, a.color()))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", `First day of the heatmap, e.g. "2025-01-01" or "3 months ago"`)
	cmd.Flags().StringVar(&to, "to", "", "Last day of the heatmap (default today)")
	cmd.Flags().StringVar(&tz, "tz", "", "IANA time zone used to bucket days")
	return cmd
}

func (a *App) exportCmd() *cobra.Command {
	var (
		out     string
		archive bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download all your tasks and trackers as JSON",
		Long: `Download a JSON snapshot of your account, or with --archive store it in the
server's object storage and print a temporary download link.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}

			if archive {
				res, err := c.Archive(cmd.Context())
				if err != nil {
					return err
				}
				a.success("Archived to " + res.Location)
				fmt.Fprintln(a.Out, res.URL)
				a.muted("link expires " + res.ExpiresAt.Local().Format("2006-01-02 15:04"))
				return nil
			}

			raw, err := c.Export(cmd.Context())
			if err != nil {
				return err
			}
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, raw, "", "  "); err != nil {
				return fmt.Errorf("failed to format export: %w", err)
			}
			pretty.WriteByte('\n')

			if out == "" || out == "-" {
				_, err := a.Out.Write(pretty.Bytes())
				return err
			}
			if err := os.WriteFile(out, pretty.Bytes(), 0o600); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			a.success("Export written to " + out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&archive, "archive", false, "Store the export in object storage")
	return cmd
}
