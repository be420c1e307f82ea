package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/ipomoney/ipopulse/internal/store"
	ipoerrors "github.com/ipomoney/ipopulse/pkg/errors"
)

// NewServeCommand creates the serve command, exposing the stored
// catalog over a read-only HTTP API.
func (a *App) NewServeCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the offering catalog over HTTP",
		Long: `Serve starts a read-only HTTP API over the offerings database.

Endpoints:
  GET /healthz                   liveness check
  GET /api/v1/offerings          all stored offerings
  GET /api/v1/offerings/{name}   one offering by exact name
  GET /api/v1/activity           recent activity log entries`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.Store()
			if err != nil {
				return err
			}

			if listen == "" {
				listen = a.config.ListenAddr
			}

			srv := &http.Server{
				Addr:              listen,
				Handler:           a.newRouter(db),
				ReadHeaderTimeout: 5 * time.Second,
			}

			// Shut down when the signal context is cancelled.
			errCh := make(chan error, 1)
			go func() {
				a.logger.Info().Str("addr", listen).Msg("HTTP server listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case <-cmd.Context().Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default :8080)")
	return cmd
}

// newRouter builds the chi router over the store.
func (a *App) newRouter(db *store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/offerings", func(w http.ResponseWriter, req *http.Request) {
			all, err := db.List(req.Context())
			if err != nil {
				a.writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, all)
		})

		r.Get("/offerings/{name}", func(w http.ResponseWriter, req *http.Request) {
			name := chi.URLParam(req, "name")
			o, err := db.Get(req.Context(), name)
			if err != nil {
				a.writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, o)
		})

		r.Get("/activity", func(w http.ResponseWriter, req *http.Request) {
			limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
			entries, err := db.Activity(req.Context(), limit)
			if err != nil {
				a.writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, entries)
		})
	})

	return r
}

// writeError maps store errors onto HTTP statuses.
func (a *App) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ipoerrors.ErrNotFound) {
		status = http.StatusNotFound
	} else {
		a.logger.Error().Err(err).Msg("Request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
