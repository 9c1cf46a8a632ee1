package cli

import (
	"fmt"

	"github.com/alexanderramin/pilotage/internal/cli/formatter"
	"github.com/alexanderramin/pilotage/internal/recalc"
	"github.com/spf13/cobra"
)

func newRecalcCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recalc",
		Short: "Run one full recalculation pass now",
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := func() {}
			if app.interactive() {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "recalculating…")
			}
			event, ran := app.Scheduler.Trigger(cmd.Context(), recalc.TriggerManual)
			stop()

			if !ran {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("A pass is already running; nothing done."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPass(event))
			return nil
		},
	}
}
