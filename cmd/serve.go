package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentbridge/enrich-cli/internal/model"
	"github.com/talentbridge/enrich-cli/internal/store"
)

var servePort int

const (
	// asyncEnrichTimeout bounds one background enrichment accepted over HTTP.
	asyncEnrichTimeout = 10 * time.Minute
	shutdownTimeout    = 10 * time.Second
)

// serveRouter builds the status API. enqueue schedules a background
// enrichment for one record id; the handler only acknowledges acceptance.
func serveRouter(st store.Store, enqueue func(id string)) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	writeErr := func(w http.ResponseWriter, status int, msg string) {
		writeJSON(w, status, map[string]string{"error": msg})
	}

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/records", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		records, err := st.ListRecords(req.Context(), store.RecordFilter{
			Status:          model.EnrichmentStatus(q.Get("status")),
			Batch:           q.Get("batch"),
			NeedsEnrichment: q.Get("needs_enrichment") == "true",
			Limit:           limit,
			Offset:          offset,
		})
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, records)
	})

	r.Get("/records/{id}", func(w http.ResponseWriter, req *http.Request) {
		rec, err := st.GetRecord(req.Context(), chi.URLParam(req, "id"))
		if eris.Is(err, store.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "record not found")
			return
		}
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})

	r.Get("/records/{id}/founders", func(w http.ResponseWriter, req *http.Request) {
		founders, err := st.ListFounders(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, founders)
	})

	r.Post("/records/{id}/enrich", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		// Enrichment runs in the background; poll the record for status.
		enqueue(id)
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "id": id})
	})

	return r
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the enrichment status server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		// In-flight background enrichments finish before the store and
		// browser are torn down.
		var wg sync.WaitGroup
		defer wg.Wait()

		enqueue := func(id string) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				// Detached from the signal context: an enrichment already
				// accepted is not cancelled by shutdown, only by its own
				// timeout.
				bctx, cancel := context.WithTimeout(context.Background(), asyncEnrichTimeout)
				defer cancel()
				result, err := env.Pipeline.RunOne(bctx, id)
				if err != nil {
					zap.L().Error("async enrichment failed", zap.String("id", id), zap.Error(err))
					return
				}
				zap.L().Info("async enrichment finished",
					zap.String("id", id), zap.String("outcome", string(result.Outcome)))
			}()
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           serveRouter(env.Store, enqueue),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
