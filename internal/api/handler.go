// Package api exposes the operational trigger surface over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bulletin_sync/internal/domain"
)

const (
	defaultLedgerLimit = 20
	maxLedgerLimit     = 200
)

type Syncer interface {
	Refresh(ctx context.Context) (*domain.RefreshResult, error)
	FullSync(ctx context.Context) (*domain.SyncStats, error)
	Running() bool
}

type LedgerReader interface {
	Recent(ctx context.Context, limit int) ([]domain.LedgerEntry, error)
}

type BulletinMarker interface {
	MarkViewed(ctx context.Context, id int64) error
}

type Deps struct {
	Syncer    Syncer
	Ledger    LedgerReader
	Bulletins BulletinMarker
	Logger    *slog.Logger
	// RunTimeout bounds runs triggered over HTTP.
	RunTimeout time.Duration
}

func NewHandler(deps Deps) http.Handler {
	deps.Logger = deps.Logger.With("component", "api")

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", handleHealth(deps))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/sync", func(r chi.Router) {
		r.Post("/refresh", handleRefresh(deps))
		r.Post("/full", handleFullSync(deps))
		r.Get("/ledger", handleLedger(deps))
	})
	r.Post("/bulletins/{id}/viewed", handleMarkViewed(deps))

	return r
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":       "ok",
			"sync_running": deps.Syncer.Running(),
		})
	}
}

// runContext detaches a triggered run from the request that started it, so a
// client hanging up does not cut the run short.
func runContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(r.Context())
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// handleRefresh runs an incremental sync inline and reports its counts.
func handleRefresh(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := runContext(r, deps.RunTimeout)
		defer cancel()

		result, err := deps.Syncer.Refresh(ctx)
		switch {
		case errors.Is(err, domain.ErrSyncInProgress):
			httpError(w, http.StatusConflict, "sync_in_progress", "a sync run is already in progress")
			return
		case errors.Is(err, domain.ErrUnauthorized):
			httpError(w, http.StatusBadGateway, "upstream_unauthorized", "upstream rejected credentials")
			return
		case err != nil:
			deps.Logger.Error("refresh failed", "error", err)
			httpError(w, http.StatusInternalServerError, "sync_failed", "sync failed")
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// handleFullSync starts a full sync in the background. A run that loses the
// race to another trigger is logged and dropped.
func handleFullSync(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Syncer.Running() {
			httpError(w, http.StatusConflict, "sync_in_progress", "a sync run is already in progress")
			return
		}

		ctx, cancel := runContext(r, deps.RunTimeout)
		go func() {
			defer cancel()
			if _, err := deps.Syncer.FullSync(ctx); err != nil {
				if errors.Is(err, domain.ErrSyncInProgress) {
					deps.Logger.Info("full sync not started, another run is in progress")
					return
				}
				deps.Logger.Error("full sync failed", "error", err)
			}
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
	}
}

func handleLedger(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultLedgerLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				httpError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
				return
			}
			limit = min(n, maxLedgerLimit)
		}

		entries, err := deps.Ledger.Recent(r.Context(), limit)
		if err != nil {
			deps.Logger.Error("list ledger failed", "error", err)
			httpError(w, http.StatusInternalServerError, "internal_error", "failed to list sync ledger")
			return
		}
		if entries == nil {
			entries = []domain.LedgerEntry{}
		}

		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
	}
}

func handleMarkViewed(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id < 1 {
			httpError(w, http.StatusBadRequest, "invalid_request", "invalid bulletin id")
			return
		}

		err = deps.Bulletins.MarkViewed(r.Context(), id)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			httpError(w, http.StatusNotFound, "not_found", "bulletin %d not found", id)
			return
		case err != nil:
			deps.Logger.Error("mark viewed failed", "bulletin_id", id, "error", err)
			httpError(w, http.StatusInternalServerError, "internal_error", "failed to mark bulletin viewed")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
