package cli

import (
	"fmt"

	"github.com/alexanderramin/pilotage/internal/app"
	"github.com/alexanderramin/pilotage/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newRisksCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "risks",
		Short: "Score risks and link them to actions",
	}
	cmd.AddCommand(newRisksEvaluateCmd(a), newRisksLinkCmd(a))
	return cmd
}

func newRisksEvaluateCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Recompute every risk score from probability and impact",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.now()
			res, err := a.Risks.EvaluateAllRisks(cmd.Context(), app.RecomputeRequest{Now: &now})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRiskEvaluation(res))
			return nil
		},
	}
}

func newRisksLinkCmd(a *App) *cobra.Command {
	var persist bool

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Match open risks to the actions sharing their axis and building",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.RiskLinkRequest{Persist: a.Config.Current().Risk.PersistLinks}
			if cmd.Flags().Changed("persist") {
				req.Persist = persist
			}
			res, err := a.Risks.LinkRisksToActions(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRiskLinks(res))
			return nil
		},
	}

	cmd.Flags().BoolVar(&persist, "persist", false, "Store the computed links (overrides risk.persist_links)")
	return cmd
}
