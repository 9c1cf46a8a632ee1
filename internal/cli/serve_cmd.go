package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *App) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the recalculation scheduler until interrupted",
		Long: `Runs a full recalculation pass after the configured initial delay and
then once per interval. The configuration file is reloaded on change and,
when an address is set, Prometheus metrics are served on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("metrics-addr") {
				a.MetricsAddr = metricsAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Listen address for /metrics (overrides PILOTAGE_METRICS_ADDR)")
	return cmd
}

// serve runs the scheduler, the config watcher and the optional metrics
// server until ctx is cancelled or one of them fails.
func (a *App) serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Scheduler.Start(ctx)
		<-ctx.Done()
		a.Scheduler.Stop()
		return nil
	})

	g.Go(func() error {
		return a.Config.Watch(ctx)
	})

	if a.MetricsAddr != "" && a.Metrics != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.Metrics)
		srv := &http.Server{Addr: a.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			a.logger().Info("metrics server listening", "addr", a.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	a.logger().Info("scheduler started",
		"interval", a.Config.Current().Recalc.Interval.String(),
		"initial_delay", a.Config.Current().Recalc.InitialDelay.String())
	return g.Wait()
}
