// Package server is the composition root: it builds the repositories,
// services and handlers, mounts them on a chi router and runs the HTTP
// server until it is told to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/codecraft/internal/auth"
	"github.com/sakif/codecraft/internal/config"
	"github.com/sakif/codecraft/internal/executor"
	"github.com/sakif/codecraft/internal/handler"
	"github.com/sakif/codecraft/internal/middleware"
	sqliteRepo "github.com/sakif/codecraft/internal/repository/sqlite"
	"github.com/sakif/codecraft/internal/service"
)

// Server owns the database handle and the router built on top of it.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	limiter *middleware.RateLimiter
}

// New opens the database and wires every route. gw is the execution
// gateway behind POST /api/execute.
func New(cfg *config.Config, gw executor.Gateway, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("JWT_SECRET: %w", err)
	}

	db, err := sqliteRepo.New(cfg.Server.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		limiter: middleware.NewRateLimiter(cfg.Execute.Rate, cfg.Execute.Burst),
	}

	if err := s.setupRoutes(tokens, gw); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes mounts:
//
//	GET    /healthz
//	POST   /clerk-webhook                  (only with a webhook secret)
//	POST   /api/execute                    rate limited
//	GET    /api/snippets[/{id}[/stars|/starred|/comments]]   optional auth
//	POST   /api/snippets, /{id}/star, /{id}/comments          auth
//	DELETE /api/snippets/{id}, /api/comments/{id}             auth
//	POST   /api/executions, GET /api/executions, GET /api/me  auth
func (s *Server) setupRoutes(tokens *auth.TokenService, gw executor.Gateway) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	users := service.NewUserService(s.db, s.logger)
	snippets := handler.NewSnippetHandler(service.NewSnippetService(s.db, s.db, s.db, s.db, s.logger), s.logger)
	executions := handler.NewExecutionHandler(service.NewExecutionService(s.db, s.db, s.logger), s.logger)
	me := handler.NewUserHandler(users, s.logger)
	execute := handler.NewExecuteHandler(gw, s.logger)

	s.router.Get("/healthz", s.handleHealth)

	if secret := s.config.Auth.WebhookSecret; secret != "" {
		webhook, err := handler.NewWebhookHandler(secret, users, s.logger)
		if err != nil {
			return fmt.Errorf("webhook secret: %w", err)
		}
		s.router.Post("/clerk-webhook", webhook.HandleWebhook)
	} else {
		s.logger.Warn("CLERK_WEBHOOK_SECRET not set, /clerk-webhook is disabled")
	}

	s.router.Route("/api", func(r chi.Router) {
		r.With(s.limiter.Middleware).Post("/execute", execute.HandleExecute)

		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))
			r.Get("/snippets", snippets.HandleList)
			r.Get("/snippets/{id}", snippets.HandleGet)
			r.Get("/snippets/{id}/stars", snippets.HandleStarCount)
			r.Get("/snippets/{id}/starred", snippets.HandleIsStarred)
			r.Get("/snippets/{id}/comments", snippets.HandleListComments)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Post("/snippets", snippets.HandleCreate)
			r.Delete("/snippets/{id}", snippets.HandleDelete)
			r.Post("/snippets/{id}/star", snippets.HandleStar)
			r.Post("/snippets/{id}/comments", snippets.HandleAddComment)
			r.Delete("/comments/{id}", snippets.HandleDeleteComment)
			r.Post("/executions", executions.HandleSave)
			r.Get("/executions", executions.HandleList)
			r.Get("/me", me.HandleMe)
		})
	})

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ok"))
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.limiter.StartSweeper(ctx)

	// /api/execute holds the response open for the whole gateway call, so
	// the write deadline only applies when that call is itself bounded.
	var writeTimeout time.Duration
	if gt := s.config.Gateway.Timeout(); gt > 0 {
		writeTimeout = gt + 15*time.Second
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("database", s.config.Server.DBPath),
			slog.String("gateway", s.config.Gateway.URL),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
