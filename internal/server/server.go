package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/waldear/finanzas/internal/clients/dolarapi"
	"github.com/waldear/finanzas/internal/config"
	"github.com/waldear/finanzas/internal/database"
	"github.com/waldear/finanzas/internal/httpx"
	"github.com/waldear/finanzas/internal/modules/audit"
	"github.com/waldear/finanzas/internal/modules/budgets"
	"github.com/waldear/finanzas/internal/modules/currency"
	"github.com/waldear/finanzas/internal/modules/debts"
	"github.com/waldear/finanzas/internal/modules/extraction"
	"github.com/waldear/finanzas/internal/modules/importer"
	"github.com/waldear/finanzas/internal/modules/obligations"
	"github.com/waldear/finanzas/internal/modules/recurring"
	"github.com/waldear/finanzas/internal/modules/summary"
	"github.com/waldear/finanzas/internal/modules/transactions"
)

// Config holds server configuration
type Config struct {
	Port    int
	Log     zerolog.Logger
	DB      *database.DB
	Config  *config.Config
	DevMode bool
}

// Server represents the HTTP server. All module repositories and
// services are wired here from the shared database connection.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	db     *database.DB
	cfg    *config.Config
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		db:     cfg.DB,
		cfg:    cfg.Config,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes(cfg.Log)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", httpx.SpaceHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes wires every module and mounts its routes
func (s *Server) setupRoutes(log zerolog.Logger) {
	conn := s.db.Conn()
	recorder := audit.NewSQLiteRecorder(conn, log)

	txRepo := transactions.NewRepository(conn, log)
	oblRepo := obligations.NewRepository(conn, log)
	debtRepo := debts.NewRepository(conn, log)
	budgetRepo := budgets.NewRepository(conn, log)
	recurringRepo := recurring.NewRepository(conn, log)

	rates := currency.NewService(dolarapi.NewClient(s.cfg.RateSourceURL, log), currency.Config{
		TotalTaxPercent:      s.cfg.TotalTaxPercent(),
		OfficialRateFallback: s.cfg.OfficialRateFallback,
	}, log)

	extractionHandler := extraction.NewHandler(
		extraction.NewService(rates, s.cfg.ExtractionMaxRows, log), log)
	importHandler := importer.NewHandler(
		importer.NewService(txRepo, recorder, log), log)
	txHandler := transactions.NewHandler(txRepo, recorder, log)
	oblHandler := obligations.NewHandler(oblRepo,
		obligations.NewService(oblRepo, txRepo, recorder, log), recorder, log)
	debtHandler := debts.NewHandler(debtRepo,
		debts.NewService(debtRepo, txRepo, recorder, log), recorder, log)
	budgetHandler := budgets.NewHandler(budgetRepo, recorder, log)
	recurringHandler := recurring.NewHandler(recurringRepo, recorder, log)
	summaryHandler := summary.NewHandler(
		summary.NewService(txRepo, oblRepo, debtRepo, budgetRepo, recurringRepo, log), log)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(httpx.SpaceMiddleware)

		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
		})

		r.Route("/extraction", extractionHandler.Routes)
		r.Route("/import", importHandler.Routes)
		r.Route("/transactions", txHandler.Routes)
		r.Route("/obligations", oblHandler.Routes)
		r.Route("/debts", debtHandler.Routes)
		r.Route("/budgets", budgetHandler.Routes)
		r.Route("/recurring", recurringHandler.Routes)
		r.Route("/summary", summaryHandler.Routes)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
