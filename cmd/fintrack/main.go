// Command fintrack serves the finance tracker API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/analytics"
	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

func main() {
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash of the given password for AUTH_PASSWORD_HASH and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg, logger := cli.Bootstrap(log.ComponentApp, (*config.Config).ValidateServer)
	logger.Info("Starting fintrack", "backend", cfg.DataBackend, "port", cfg.Port)

	ctx, stop := cli.SignalContext()
	defer stop()

	backend := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := backend.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	summaries := cache.NewLRUCache[analytics.MonthlySummary](cfg.CacheSize, cfg.CacheTTL)
	notifier := services.NewNotifier(backend.Publisher, summaries.Purge)
	ledger := services.NewLedgerService(backend.Store, notifier)
	processor := services.NewRecurringProcessor(backend.Store, notifier)
	recurrence := worker.NewRecurrenceWorker(processor, cfg.RecurringInterval)

	if cfg.RecurringOnStartup {
		recurrence.RunOnce(ctx, "startup")
	}

	var ready func(context.Context) error
	if backend.SQLite != nil {
		ready = backend.SQLite.Ping
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:      ":" + cfg.Port,
		Ledger:    ledger,
		Recurring: processor,
		Auth: auth.NewService(auth.Config{
			Username:     cfg.AuthUsername,
			PasswordHash: cfg.AuthPasswordHash,
			Secret:       cfg.JWTSecret,
			TokenTTL:     cfg.TokenTTL,
			MaxAttempts:  cfg.LoginMaxAttempts,
			Lockout:      cfg.LoginLockout,
		}),
		Summaries: summaries,
		RateLimit: cfg.RateLimit,
		Ready:     ready,
		Logger:    logger.WithComponent(log.ComponentHTTP),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error { return srv.RunMaintenance(gctx) })
	g.Go(func() error { return recurrence.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
