package cli

import (
	"fmt"

	"github.com/alexanderramin/pilotage/internal/app"
	"github.com/alexanderramin/pilotage/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newPerfCmd(a *App) *cobra.Command {
	var snapshot bool

	cmd := &cobra.Command{
		Use:   "perf",
		Short: "Show earned value indices and the two-track synchronization gap",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			now := a.now()
			out := cmd.OutOrStdout()

			if snapshot {
				res, err := a.Performance.RecordSnapshot(ctx, app.RecomputeRequest{Now: &now})
				if err != nil {
					return err
				}
				if res.Recorded {
					fmt.Fprintln(out, formatter.Dim(fmt.Sprintf("Snapshot recorded: gap %+.1f", res.Snapshot.Gap)))
				} else {
					fmt.Fprintln(out, formatter.Dim("Snapshot already taken today."))
				}
			}

			report, err := a.Performance.Analyze(ctx, app.PerformanceRequest{Now: &now})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.FormatPerformance(report))
			return nil
		},
	}

	cmd.Flags().BoolVar(&snapshot, "snapshot", false, "Record today's synchronization snapshot first")
	return cmd
}

func newAlertsCmd(a *App) *cobra.Command {
	var regenerate bool

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List open alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if regenerate {
				now := a.now()
				res, err := a.Alerts.RegenerateAlerts(ctx, app.RecomputeRequest{Now: &now})
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatAlertsResult(res))
			}

			alerts, err := a.Alerts.ListOpen(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.FormatAlerts(alerts))
			return nil
		},
	}

	cmd.Flags().BoolVar(&regenerate, "regenerate", false, "Detect alerts against the current state first")
	return cmd
}
