// Package worker holds the background jobs run by the worker binaries.
package worker

import (
	"context"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backup"
)

// BackupRunner performs one cadence-gated backup.
type BackupRunner interface {
	Run(ctx context.Context, force bool) (backup.Result, error)
}

// BackupWorker turns ledger change events into backup checks. Bursts of
// changes collapse into a single check once the ledger has been quiet for
// the debounce window.
type BackupWorker struct {
	backups  BackupRunner
	debounce time.Duration
	trigger  chan struct{}
}

func NewBackupWorker(backups BackupRunner, debounce time.Duration) *BackupWorker {
	if debounce <= 0 {
		debounce = 30 * time.Second
	}
	return &BackupWorker{
		backups:  backups,
		debounce: debounce,
		trigger:  make(chan struct{}, 1),
	}
}

// HandleLedgerChanged schedules a backup check. It never fails, so the
// message is always acked: the periodic check covers anything missed.
func (w *BackupWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	slog.DebugContext(ctx, "Ledger change received",
		"entity", msg.Entity,
		"id", msg.ID,
		"action", msg.Action)

	select {
	case w.trigger <- struct{}{}:
	default: // a check is already pending
	}
	return nil
}

// Check runs one backup attempt and logs its outcome.
func (w *BackupWorker) Check(ctx context.Context, reason string) {
	res, err := w.backups.Run(ctx, false)
	if err != nil {
		slog.ErrorContext(ctx, "Backup failed", "reason", reason, "run_id", res.RunID, "error", err)
		return
	}
	if res.Uploaded {
		slog.InfoContext(ctx, "Backup completed", "reason", reason, "run_id", res.RunID, "file", res.File.Name)
	}
}

// Run processes triggers and checks every interval until ctx is done.
func (w *BackupWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// stopped timer; armed by the first trigger of a burst
	quiet := time.NewTimer(w.debounce)
	if !quiet.Stop() {
		<-quiet.C
	}
	defer quiet.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.trigger:
			quiet.Reset(w.debounce)
		case <-quiet.C:
			w.Check(ctx, "ledger_changed")
		case <-ticker.C:
			w.Check(ctx, "periodic")
		}
	}
}
