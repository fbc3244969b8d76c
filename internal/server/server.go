// Package server exposes the ledger services over HTTP. The desktop UI is
// a separate process talking JSON to this API.
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

	"github.com/tally-app/tally/internal/service"
)

// Config carries everything the server needs.
type Config struct {
	Port         int
	Log          zerolog.Logger
	Accounts     *service.AccountService
	Transactions *service.TransactionService
	Statements   *service.StatementService
	Planned      *service.PlannedService
	Budgets      *service.BudgetService
}

// Server is the HTTP front of the app.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger

	accounts     *service.AccountService
	transactions *service.TransactionService
	statements   *service.StatementService
	planned      *service.PlannedService
	budgets      *service.BudgetService
}

func New(cfg Config) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		log:          cfg.Log.With().Str("component", "server").Logger(),
		accounts:     cfg.Accounts,
		transactions: cfg.Transactions,
		statements:   cfg.Statements,
		planned:      cfg.Planned,
		budgets:      cfg.Budgets,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.handleListAccounts)
			r.Post("/", s.handleCreateAccount)
			r.Get("/{id}", s.handleGetAccount)
			r.Put("/{id}", s.handleUpdateAccount)
			r.Delete("/{id}", s.handleDeleteAccount)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Get("/{id}", s.handleGetTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Route("/planned", func(r chi.Router) {
			r.Get("/", s.handleListPlanned)
			r.Post("/", s.handleCreatePlanned)
			r.Get("/occurrences", s.handlePlannedWindow)
			r.Get("/{id}", s.handleGetPlanned)
			r.Put("/{id}", s.handleUpdatePlanned)
			r.Delete("/{id}", s.handleDeletePlanned)
			r.Get("/{id}/occurrences", s.handlePlannedPreview)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.handleListBudgets)
			r.Post("/", s.handleCreateBudget)
			r.Get("/{id}", s.handleGetBudget)
			r.Put("/{id}", s.handleUpdateBudget)
			r.Delete("/{id}", s.handleDeleteBudget)
			r.Get("/{id}/breakdown", s.handleBudgetBreakdown)
		})

		r.Route("/statements", func(r chi.Router) {
			r.Get("/", s.handleListStatements)
			r.Post("/generate", s.handleGenerateStatement)
			r.Post("/check", s.handleStatementCheck)
			r.Get("/{id}", s.handleGetStatement)
			r.Delete("/{id}", s.handleDeleteStatement)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/start-date", s.handleGetStartDate)
			r.Put("/start-date", s.handleSetStartDate)
		})
	})
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
