package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-enrich/internal/model"
	"github.com/sells-group/prospect-enrich/internal/pipeline"
)

var servePort int

// searchService is the slice of the search orchestrator the handlers use.
type searchService interface {
	DomainOrOpen(ctx context.Context, domain, ask string) []model.Page
	OpenWeb(ctx context.Context, subject string, questions []string) []model.Page
}

// enrichService is the slice of the extraction pipeline the handlers use.
type enrichService interface {
	Enrich(ctx context.Context, subject, ask string, pages []model.Page) (*model.EnrichmentResponse, error)
	Magic(ctx context.Context, subject string, questions []string, pages []model.Page) (*model.MagicVariablesResponse, error)
	Unified(ctx context.Context, subject, query string) (*model.UnifiedResult, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the enrichment HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv()
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env.Searcher, env.Enricher),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(searcher searchService, enricher enrichService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/enrich", handleEnrich(searcher, enricher))
	r.Post("/magic", handleMagic(searcher, enricher))
	r.Post("/unified", handleUnified(enricher))

	return r
}

func handleEnrich(searcher searchService, enricher enrichService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			DomainOrURL string `json:"domainOrUrl"`
			Ask         string `json:"ask"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DomainOrURL == "" {
			writeError(w, http.StatusBadRequest, "domainOrUrl required")
			return
		}

		domain, err := pipeline.DeriveDomain(req.DomainOrURL)
		if err != nil {
			writeError(w, http.StatusBadRequest, "domainOrUrl required")
			return
		}

		reqID := uuid.NewString()
		zap.L().Info("enrich request",
			zap.String("request_id", reqID),
			zap.String("domain", domain),
		)

		pages := searcher.DomainOrOpen(r.Context(), domain, req.Ask)
		if len(pages) == 0 {
			writeError(w, http.StatusNotFound, "No readable pages found via web search.")
			return
		}

		ask := req.Ask
		if ask == "" {
			ask = pipeline.DefaultEnrichAsk
		}

		result, err := enricher.Enrich(r.Context(), domain, ask, pages)
		if err != nil {
			zap.L().Error("enrich request failed",
				zap.String("request_id", reqID),
				zap.String("domain", domain),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if result.SubjectCanonical == nil {
			result.SubjectCanonical = &model.SubjectCanonical{Domain: domain}
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func handleMagic(searcher searchService, enricher enrichService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Subject   string   `json:"subject"`
			Questions []string `json:"questions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Subject == "" {
			writeError(w, http.StatusBadRequest, "subject required")
			return
		}

		reqID := uuid.NewString()
		zap.L().Info("magic request",
			zap.String("request_id", reqID),
			zap.String("subject", req.Subject),
			zap.Int("questions", len(req.Questions)),
		)

		pages := searcher.OpenWeb(r.Context(), req.Subject, req.Questions)
		if len(pages) == 0 {
			writeError(w, http.StatusNotFound, "No readable pages found via web search.")
			return
		}

		result, err := enricher.Magic(r.Context(), req.Subject, req.Questions, pages)
		if err != nil {
			zap.L().Error("magic request failed",
				zap.String("request_id", reqID),
				zap.String("subject", req.Subject),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if result.Subject == nil {
			result.Subject = &model.MagicSubject{Name: req.Subject, Type: model.SubjectUnknown}
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func handleUnified(enricher enrichService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Subject string `json:"subject"`
			Query   string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Subject == "" {
			writeError(w, http.StatusBadRequest, "subject required")
			return
		}

		reqID := uuid.NewString()
		zap.L().Info("unified request",
			zap.String("request_id", reqID),
			zap.String("subject", req.Subject),
		)

		result, err := enricher.Unified(r.Context(), req.Subject, req.Query)
		if err != nil {
			if eris.Is(err, pipeline.ErrNoPages) {
				writeError(w, http.StatusNotFound, "No readable pages found via web search.")
				return
			}
			zap.L().Error("unified request failed",
				zap.String("request_id", reqID),
				zap.String("subject", req.Subject),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
