// Package server exposes the grading pipeline over HTTP: multipart upload
// endpoints, a WebSocket progress stream per client session, report download,
// and the chat assistant.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gradescan/internal/assistant"
	"gradescan/internal/config"
	"gradescan/internal/logger"
	"gradescan/internal/pipeline"
	"gradescan/internal/progress"
	"gradescan/internal/store"
)

// Server wires the HTTP surface to the pipeline and its collaborators. The
// store and assistant are optional; endpoints depending on them return 503
// when they are not configured.
type Server struct {
	cfg       *config.Config
	pipeline  *pipeline.Service
	registry  *progress.Registry
	store     *store.Store
	assistant *assistant.Assistant
	log       zerolog.Logger
}

// New creates a server. st and asst may be nil when persistence is disabled.
func New(cfg *config.Config, pipe *pipeline.Service, registry *progress.Registry, st *store.Store, asst *assistant.Assistant) *Server {
	return &Server{
		cfg:       cfg,
		pipeline:  pipe,
		registry:  registry,
		store:     st,
		assistant: asst,
		log:       logger.WithComponent("server"),
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/process-pdfs", s.handleProcessPDFs)
	r.Post("/generate-report", s.handleGenerateReport)
	r.Get("/ws/{client_id}", s.handleWebSocket)
	r.Post("/chat", s.handleChat)
	r.Get("/evaluations", s.handleListEvaluations)
	r.Get("/healthz", s.handleHealth)

	return r
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ServerAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.ServerAddr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
