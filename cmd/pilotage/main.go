package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/pilotage/internal/cli"
	"github.com/alexanderramin/pilotage/internal/config"
	"github.com/alexanderramin/pilotage/internal/db"
	"github.com/alexanderramin/pilotage/internal/recalc"
	"github.com/alexanderramin/pilotage/internal/repository"
	"github.com/alexanderramin/pilotage/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(os.Getenv("PILOTAGE_LOG_LEVEL"))}))

	// Determine DB path: env var or default ~/.pilotage/pilotage.db
	dbPath := os.Getenv("PILOTAGE_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".pilotage", "pilotage.db")
	}

	cfg, err := config.NewSource(os.Getenv("PILOTAGE_CONFIG"), logger)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	actionRepo := repository.NewSQLiteActionRepo(database)
	milestoneRepo := repository.NewSQLiteMilestoneRepo(database)
	syncLinkRepo := repository.NewSQLiteSyncLinkRepo(database)
	riskRepo := repository.NewSQLiteRiskRepo(database)
	riskLinkRepo := repository.NewSQLiteRiskLinkRepo(database)
	budgetRepo := repository.NewSQLiteBudgetRepo(database)
	alertRepo := repository.NewSQLiteAlertRepo(database)
	snapshotRepo := repository.NewSQLiteSnapshotRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)
	observer := service.NewSlogUseCaseObserver(logger)

	// Wire services
	statusSvc := service.NewStatusService(actionRepo, milestoneRepo, uow, cfg, logger, observer)
	riskSvc := service.NewRiskService(riskRepo, riskLinkRepo, actionRepo, uow, cfg, logger, observer)
	perfSvc := service.NewPerformanceService(actionRepo, budgetRepo, snapshotRepo, cfg, observer)
	alertSvc := service.NewAlertService(actionRepo, milestoneRepo, riskRepo, alertRepo, cfg, logger, observer)
	budgetSvc := service.NewBudgetService(budgetRepo, uow, logger, observer)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	scheduler := recalc.NewScheduler(
		recalc.Steps{Budget: budgetSvc, Status: statusSvc, Alerts: alertSvc, Risks: riskSvc, Snapshot: perfSvc},
		cfg,
		recalc.WithLogger(logger),
		recalc.WithMetrics(recalc.NewMetrics(reg)),
		recalc.WithObserver(recalc.NewLogPassObserver(logger)),
	)

	app := &cli.App{
		Status:      statusSvc,
		Delay:       service.NewDelayService(actionRepo, syncLinkRepo, uow, cfg, logger, observer),
		Risks:       riskSvc,
		Performance: perfSvc,
		Alerts:      alertSvc,
		Budget:      budgetSvc,

		Scheduler: scheduler,
		Config:    cfg,
		Logger:    logger,

		MetricsAddr: os.Getenv("PILOTAGE_METRICS_ADDR"),
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),

		Confirm: cli.PromptConfirm,
	}

	// Prompts need an interactive terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
