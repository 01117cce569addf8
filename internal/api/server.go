package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/diogoX451/synthctl/internal/api/dto"
	"github.com/diogoX451/synthctl/internal/core/ports"
	"github.com/diogoX451/synthctl/internal/metrics"
	"github.com/diogoX451/synthctl/internal/session"
	"github.com/diogoX451/synthctl/pkg/types"
)

const Version = "0.1.0"

// SessionSource é o que a API precisa da sessão em execução
type SessionSource interface {
	ID() types.SessionID
	Snapshot(ctx context.Context) (session.Snapshot, error)
	Submit(ctx context.Context, line string) error
}

// Server encapsula todas dependências da API
type Server struct {
	router  *chi.Mux
	session SessionSource
	repo    ports.SessionRepository
	metrics *metrics.Metrics
}

// NewServer cria server com dependências injetadas; repo pode ser nil
func NewServer(sess SessionSource, repo ports.SessionRepository, m *metrics.Metrics) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		session: sess,
		repo:    repo,
		metrics: m,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))
}

func (s *Server) setupRoutes() {
	// Health
	s.router.With(jsonContentType).Get("/health", s.handleHealth)

	// Prometheus
	if s.metrics != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}

	// API v1
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(jsonContentType)

		r.Get("/status", s.handleStatus)
		r.Get("/aliases", s.handleListAliases)
		r.Get("/aliases/{name}", s.handleGetAlias)
		r.Post("/commands", s.handleSubmitCommand)
		r.Get("/transcript", s.handleTranscript)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler: Health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.HealthResponse{
		Status:    "healthy",
		SessionID: string(s.session.ID()),
		Timestamp: time.Now(),
		Version:   Version,
	})
}

// Helper: JSON content-type
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Helper: Responder JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Helper: Responder erro
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
