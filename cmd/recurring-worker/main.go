// Command recurring-worker posts due salaries and recurring investment
// contributions on a schedule, for deployments that keep the API server
// from doing it in-process.
package main

import (
	"os"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentRecurring, (*config.Config).Validate)
	logger.Info("Starting recurring-worker",
		"interval", cfg.RecurringInterval,
		"backend", cfg.DataBackend)

	ctx, stop := cli.SignalContext()
	defer stop()

	backend := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := backend.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	processor := services.NewRecurringProcessor(backend.Store, services.NewNotifier(backend.Publisher))
	w := worker.NewRecurrenceWorker(processor, cfg.RecurringInterval)

	rep := w.RunOnce(ctx, "startup")
	logger.Info("Initial processing complete",
		"all_processed", rep.AllProcessed,
		"date", core.Today().String())

	if err := w.Run(ctx); err != nil {
		logger.Error("Recurring worker failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Recurring-worker shutdown complete")
}
