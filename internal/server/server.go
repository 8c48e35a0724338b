// Package server is the composition root: it opens the store, builds every
// service and handler, and mounts them on a chi router.
//
// Dependency flow:
//
//	config.Config → sqlite.DB → services → handlers → routes
//
// Only this package (and cmd/) knows about concrete types. Services see
// repository interfaces; handlers see services.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/sql-manager/internal/auth"
	"github.com/sakif/sql-manager/internal/config"
	"github.com/sakif/sql-manager/internal/executor/simulator"
	"github.com/sakif/sql-manager/internal/handler"
	"github.com/sakif/sql-manager/internal/middleware"
	sqliteRepo "github.com/sakif/sql-manager/internal/repository/sqlite"
	"github.com/sakif/sql-manager/internal/service"
)

const (
	shutdownTimeout = 30 * time.Second
	healthTimeout   = 2 * time.Second
)

// Server owns the HTTP router and the database handle behind it.
type Server struct {
	router   *chi.Mux
	config   config.Config
	logger   *slog.Logger
	db       *sqliteRepo.DB
	registry *prometheus.Registry
}

// New opens the database at cfg.DBPath, seeds demo data when cfg.SeedDemo
// is set, and wires all routes. The caller must eventually call Close, or
// Start, which closes on return.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: prometheus.NewRegistry(),
	}

	if cfg.SeedDemo {
		seeder := service.NewSeeder(db, db, db, db, auth.NewPasswordService(), logger)
		if _, err := seeder.Seed(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("seeding demo data: %w", err)
		}
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the fully wired router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes mounts middleware and routes.
//
//	GET  /healthz, /metrics            public
//	POST /api/register, /api/login     public
//	everything else under /api         bearer token required
//	/*                                 static files, when STATIC_DIR is set
//
// Metrics sits outside Logger so its timing includes log formatting, and
// Recoverer sits inside both so a panic is still logged and counted as 500.
func (s *Server) setupRoutes() error {
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(s.registry)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(metrics.Middleware)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	authService := service.NewAuthService(s.db, tokens, auth.NewPasswordService(), s.logger)
	snippetService := service.NewSnippetService(s.db, s.logger)
	catalogService := service.NewCatalogService(s.db, s.db, s.logger)
	commentService := service.NewCommentService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippetService, s.logger)
	catalogHandler := handler.NewCatalogHandler(catalogService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	executeHandler := handler.NewExecuteHandler(simulator.New(s.registry), s.logger)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens, authService, s.logger))

			r.Get("/user", authHandler.HandleUser)

			r.Get("/snippets", snippetHandler.HandleList)
			r.Post("/snippets", snippetHandler.HandleCreate)
			r.Get("/snippets/{id}", snippetHandler.HandleGet)
			r.Put("/snippets/{id}", snippetHandler.HandleUpdate)
			r.Delete("/snippets/{id}", snippetHandler.HandleDelete)

			r.Get("/snippets/{id}/comments", commentHandler.HandleList)
			r.Post("/snippets/{id}/comments", commentHandler.HandleCreate)
			r.Delete("/comments/{id}", commentHandler.HandleDelete)

			r.Get("/categories", catalogHandler.HandleListCategories)
			r.Post("/categories", catalogHandler.HandleCreateCategory)
			r.Delete("/categories/{id}", catalogHandler.HandleDeleteCategory)

			r.Get("/tags", catalogHandler.HandleListTags)
			r.Post("/tags", catalogHandler.HandleCreateTag)
			r.Delete("/tags/{id}", catalogHandler.HandleDeleteTag)

			r.Post("/execute-sql", executeHandler.HandleExecute)
		})
	})

	if s.config.StaticDir != "" {
		s.router.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status, body := http.StatusOK, "ok"
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		status, body = http.StatusServiceUnavailable, "unavailable"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"status": body})
}

// Start serves HTTP until ctx is canceled, then drains in-flight requests
// for up to 30 seconds and closes the database.
func (s *Server) Start(ctx context.Context) error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
