package cli

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alexanderramin/pilotage/internal/config"
	"github.com/alexanderramin/pilotage/internal/recalc"
	"github.com/alexanderramin/pilotage/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Status      service.StatusService
	Delay       service.DelayService
	Risks       service.RiskService
	Performance service.PerformanceService
	Alerts      service.AlertService
	Budget      service.BudgetService

	Scheduler *recalc.Scheduler
	Config    *config.Source
	Logger    *slog.Logger

	// MetricsAddr is where serve exposes Metrics; empty disables it.
	MetricsAddr string
	Metrics     http.Handler

	// IsInteractive reports whether stdin is a terminal a prompt can use.
	IsInteractive func() bool
	// Confirm asks a yes/no question. Only called when IsInteractive is true.
	Confirm func(title string) (bool, error)
	// Now is the clock for display; nil means time.Now.
	Now func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "pilotage" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "pilotage",
		Short: "Portfolio status derivation, delay propagation and performance",
		Long: `pilotage keeps the derived state of a project portfolio current:
action and milestone statuses, milestone projections, risk scores,
earned value and the two-track synchronization gap.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(app),
		newRecalcCmd(app),
		newStatusCmd(app),
		newProjectCmd(app),
		newDelayCmd(app),
		newRisksCmd(app),
		newPerfCmd(app),
		newAlertsCmd(app),
		newWatchCmd(app),
	)

	return root
}
