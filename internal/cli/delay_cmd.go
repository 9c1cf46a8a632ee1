package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/pilotage/internal/app"
	"github.com/alexanderramin/pilotage/internal/cli/formatter"
	"github.com/spf13/cobra"
)

// errNotConfirmed is returned when a delay apply is declined or cannot be
// confirmed.
var errNotConfirmed = errors.New("delay not applied: confirmation declined (use --yes outside a terminal)")

func newDelayCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delay",
		Short: "Preview or apply the downstream impact of a late action",
	}
	cmd.AddCommand(newDelayPreviewCmd(a), newDelayApplyCmd(a))
	return cmd
}

func newDelayPreviewCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <action-id>",
		Short: "Show which synchronized actions a late action would shift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.now()
			preview, err := a.Delay.PreviewDelay(cmd.Context(), app.DelayPreviewRequest{SourceActionID: args[0], Now: &now})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatDelayPreview(preview))
			return nil
		},
	}
}

func newDelayApplyCmd(a *App) *cobra.Command {
	var yes bool
	var actor string

	cmd := &cobra.Command{
		Use:   "apply <action-id>",
		Short: "Shift the planned dates of synchronized actions",
		Long: `Builds a fresh preview for the action, shows it, and asks for
confirmation before writing. Outside a terminal --yes is required.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			now := a.now()

			preview, err := a.Delay.PreviewDelay(ctx, app.DelayPreviewRequest{SourceActionID: args[0], Now: &now})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.FormatDelayPreview(preview))
			if preview.IsEmpty() {
				return nil
			}

			confirmed := yes
			if !confirmed && a.interactive() {
				ask := a.Confirm
				if ask == nil {
					ask = PromptConfirm
				}
				title := fmt.Sprintf("Shift %d actions by %d days?", len(preview.ImpactedActions), preview.RetardJours)
				if confirmed, err = ask(title); err != nil {
					return err
				}
			}
			if !confirmed {
				return errNotConfirmed
			}

			res, err := a.Delay.ApplyDelay(ctx, app.ApplyDelayRequest{
				Preview:      preview,
				Confirmation: app.Confirmation{Actor: actor, Confirmed: true},
				Now:          &now,
			})
			if res != nil {
				fmt.Fprintln(out, formatter.FormatApplyResult(res))
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Apply without prompting")
	cmd.Flags().StringVar(&actor, "actor", "", "Actor recorded in the audit log")
	return cmd
}
