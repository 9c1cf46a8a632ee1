package cli

import (
	"fmt"

	"github.com/alexanderramin/pilotage/internal/app"
	"github.com/alexanderramin/pilotage/internal/cli/formatter"
	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/spf13/cobra"
)

func newStatusCmd(a *App) *cobra.Command {
	var recompute bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show milestones, action statuses and axis progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if recompute {
				now := a.now()
				req := app.RecomputeRequest{Now: &now}
				if _, err := a.Status.RecomputeActions(ctx, req); err != nil {
					return err
				}
				if _, err := a.Status.RecomputeMilestones(ctx, req); err != nil {
					return err
				}
			}

			milestones, err := a.Status.ListMilestones(ctx)
			if err != nil {
				return err
			}
			actions, err := a.Status.ListActions(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStatus(milestones, actions, a.now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&recompute, "recompute", false, "Recompute action and milestone statuses first")
	return cmd
}

func newProjectCmd(a *App) *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "project <milestone-id>",
		Short: "Project a milestone date from its prerequisite actions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			milestones, err := a.Status.ListMilestones(ctx)
			if err != nil {
				return err
			}
			var m *domain.Milestone
			for _, candidate := range milestones {
				if candidate.ID == id {
					m = candidate
					break
				}
			}
			if m == nil {
				return fmt.Errorf("milestone %s: %w", id, domain.ErrNotFound)
			}

			proj, err := a.Status.ProjectMilestone(ctx, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.FormatProjection(m, proj, a.now()))

			if tree {
				actions, err := a.Status.ListActions(ctx)
				if err != nil {
					return err
				}
				byID := make(map[string]*domain.Action, len(actions))
				for _, act := range actions {
					byID[act.ID] = act
				}
				depth := a.Config.Current().MaxRecursionDepth
				fmt.Fprint(out, formatter.RenderTree(formatter.PrerequisiteTree(m, byID, depth)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&tree, "tree", false, "Also print the prerequisite tree")
	return cmd
}
