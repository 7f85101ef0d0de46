package worker

import (
	"context"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// RecurrenceRunner applies due salaries and recurring investments.
type RecurrenceRunner interface {
	Run(ctx context.Context, today core.Date) services.Report
}

// RecurrenceWorker runs the recurrence pass on a fixed interval. The pass is
// idempotent within a period, so running it often is harmless.
type RecurrenceWorker struct {
	processor RecurrenceRunner
	interval  time.Duration
	today     func() core.Date
}

func NewRecurrenceWorker(processor RecurrenceRunner, interval time.Duration) *RecurrenceWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RecurrenceWorker{processor: processor, interval: interval, today: core.Today}
}

// RunOnce runs a single pass and logs the report.
func (w *RecurrenceWorker) RunOnce(ctx context.Context, trigger string) services.Report {
	today := w.today()
	rep := w.processor.Run(ctx, today)

	level := slog.LevelInfo
	if rep.Salaries.Error != "" || rep.Investments.Error != "" {
		level = slog.LevelError
	}
	slog.Log(ctx, level, "Recurring processing complete",
		"trigger", trigger,
		"date", today.String(),
		"salaries_processed", rep.Salaries.Processed,
		"investments_processed", rep.Investments.Processed,
		"salary_error", rep.Salaries.Error,
		"investment_error", rep.Investments.Error)
	return rep
}

// Run processes every interval until ctx is done.
func (w *RecurrenceWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.RunOnce(ctx, "periodic")
		}
	}
}
