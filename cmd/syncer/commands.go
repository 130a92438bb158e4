package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bulletin_sync/internal/api"
	"bulletin_sync/internal/scheduler"
	"bulletin_sync/internal/service"
)

// --- serve ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the periodic incremental sync and the HTTP trigger surface",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{
			Addr: a.cfg.HTTP.Addr,
			Handler: api.NewHandler(api.Deps{
				Syncer:     a.orchestrator,
				Ledger:     a.ledger,
				Bulletins:  a.bulletins,
				Logger:     a.logger,
				RunTimeout: a.cfg.Sync.RunTimeout,
			}),
			ReadTimeout:  a.cfg.HTTP.ReadTimeout,
			WriteTimeout: a.cfg.HTTP.WriteTimeout,
			BaseContext: func(net.Listener) context.Context {
				return ctx
			},
		}

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("http server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		sched := scheduler.NewScheduler(a.orchestrator, a.cfg.Sync, a.logger)
		schedDone := make(chan error, 1)
		go func() {
			schedDone <- sched.Start(ctx)
		}()

		a.logger.Info("starting bulletin syncer",
			"interval", a.cfg.Sync.Interval,
			"incremental_bulletins", a.cfg.Sync.IncrementalBulletins,
			"publisher", a.publisher != nil,
		)

		var serveErr error
		select {
		case <-ctx.Done():
			a.logger.Info("received shutdown signal")
		case serveErr = <-errCh:
			a.logger.Error("http server error", "error", serveErr)
		}

		sched.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("http server shutdown", "error", err)
		}

		if err := <-schedDone; err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("scheduler: %w", err)
		}
		return serveErr
	},
}

// --- sync ---

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync and exit",
	Long: `Run one sync and exit.

Without --full the most recent bulletins of each stored filter are revisited.
With --full filters are re-discovered and every bulletin is walked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		full, _ := cmd.Flags().GetBool("full")

		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if a.cfg.Sync.RunTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, a.cfg.Sync.RunTimeout)
			defer cancel()
		}

		run := a.orchestrator.IncrementalSync
		if full {
			run = a.orchestrator.FullSync
		}

		stats, err := run(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d filters, %d bulletins, %d biddings, %d follow-ups, %d errors in %s\n",
			stats.RunID, stats.Filters, stats.Bulletins, stats.Biddings, stats.FollowUps, stats.Errors,
			stats.Duration.Round(time.Millisecond))
		return nil
	},
}

func init() {
	syncCmd.Flags().Bool("full", false, "walk every bulletin of every filter")
}

// --- discover-filters ---

var discoverFiltersCmd = &cobra.Command{
	Use:   "discover-filters",
	Short: "Fetch the account's filters from the upstream and store them",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		filters, err := a.orchestrator.DiscoverFilters(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, f := range filters {
			fmt.Fprintf(out, "%d\t%s\n", f.ID, f.Description)
		}
		return nil
	},
}

// --- dedupe ---

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove duplicate bidding rows and add the unique index on external_id",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		report, err := service.NewDeduper(a.biddings, a.txManager, a.logger).Run(ctx)
		if err != nil {
			return err
		}

		if err := a.biddings.EnsureUniqueIndex(ctx); err != nil {
			return fmt.Errorf("create unique index: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d duplicate groups, %d rows removed\n", report.Groups, report.RowsRemoved)
		return nil
	},
}
