package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"dishuflix/internal/api"
	"dishuflix/internal/config"
	"dishuflix/internal/metrics"
	"dishuflix/internal/session"
)

type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	httpServer *http.Server
	router     *chi.Mux
	session    *session.Orchestrator
	handler    *api.Handler
}

func New(cfg *config.Config, logger zerolog.Logger, sess *session.Orchestrator) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		session: sess,
	}

	s.router = chi.NewRouter()
	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(CORSMiddleware())
	s.router.Use(LoggingMiddleware(s.logger))
}

func (s *Server) setupRoutes() {
	s.handler = api.NewHandler(s.session, s.logger)

	s.router.Handle("/metrics", metrics.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handler.Health)
		r.Get("/session", s.handler.GetSession)

		r.Route("/onboarding", func(r chi.Router) {
			r.Post("/invite", s.handler.SubmitInvite)
			r.Put("/invite/{pos}", s.handler.EnterInviteChar)
			r.Delete("/invite/{pos}", s.handler.ClearInviteChar)
			r.Post("/name", s.handler.SubmitName)
			r.Post("/payment", s.handler.Pay)
			r.Post("/payment/result", s.handler.ReportPaymentResult)
		})

		r.Get("/browse", s.handler.Browse)

		r.Delete("/titles/details", s.handler.CloseDetails)
		r.Get("/titles/{id}", s.handler.GetTitle)
		r.Post("/titles/{id}/play", s.handler.PlayTitle)
		r.Post("/titles/{id}/list", s.handler.ToggleList)

		r.Get("/player", s.handler.GetPlayer)
		r.Put("/player/episode", s.handler.SelectEpisode)
		r.Delete("/player", s.handler.ClosePlayer)

		r.Post("/search/open", s.handler.OpenSearch)
		r.Delete("/search", s.handler.CloseSearch)
		r.Put("/search/query", s.handler.SetQuery)
		r.Get("/search", s.handler.GetSearch)
		r.Post("/search/submit", s.handler.SubmitSearch)
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.httpServer.Addr).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.session.Close()
	return err
}
