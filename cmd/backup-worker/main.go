// Command backup-worker uploads SQLite snapshots to Google Drive. It checks
// after bursts of ledger changes and on a fixed interval; each check only
// uploads when the last backup is older than the configured frequency.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/backup"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	once := flag.Bool("once", false, "run a single backup check and exit")
	force := flag.Bool("force", false, "with -once, upload even when a recent backup exists")
	checkEvery := flag.Duration("check-interval", 6*time.Hour, "periodic backup check interval")
	debounce := flag.Duration("debounce", time.Minute, "quiet period after ledger changes before checking")
	flag.Parse()

	cfg, logger := cli.Bootstrap(log.ComponentBackup, validate)

	ctx, stop := cli.SignalContext()
	defer stop()

	backend := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := backend.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	if backend.SQLite == nil {
		logger.Error("Backups need the sqlite backend")
		os.Exit(1)
	}

	drive, err := backup.NewGoogleDrive(ctx, backup.Credentials{
		ClientFile: cfg.GoogleOAuthClientFile,
		ClientJSON: cfg.GoogleOAuthClientJSON,
		TokenFile:  cfg.GoogleOAuthTokenFile,
		TokenJSON:  cfg.GoogleOAuthTokenJSON,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Drive client", log.FieldError, err)
		os.Exit(1)
	}

	manager := backup.NewManager(drive, backend.SQLite, backup.Options{
		Folder:   cfg.BackupFolder,
		Interval: cfg.BackupInterval(),
	})

	if *once {
		res, err := manager.Run(ctx, *force)
		if err != nil {
			logger.Error("Backup failed", log.FieldError, err, "run_id", res.RunID)
			os.Exit(1)
		}
		logger.Info("Backup check done", "uploaded", res.Uploaded, "days_since", res.DaysSince)
		return
	}

	w := worker.NewBackupWorker(manager, *debounce)
	logger.Info("Starting backup-worker",
		"frequency", cfg.BackupFrequency,
		"folder", cfg.BackupFolder,
		"check_interval", *checkEvery)

	w.Check(ctx, "startup")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Run(gctx, *checkEvery) })
	if backend.AMQP != nil {
		g.Go(func() error {
			err := backend.AMQP.ConsumeLedgerChanged(gctx, w.HandleLedgerChanged)
			if err != nil && gctx.Err() == nil {
				return fmt.Errorf("consume ledger changes: %w", err)
			}
			return nil
		})
	} else {
		logger.Info("AMQP disabled, relying on periodic checks only")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Backup worker failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Backup-worker shutdown complete")
}

// validate requires backups to be enabled; the rest is the shared check.
func validate(c *config.Config) error {
	if !c.BackupEnabled {
		return fmt.Errorf("configuration validation failed:\n- BACKUP_ENABLED must be true for backup-worker")
	}
	return c.Validate()
}
