package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"shopify-ai-advisor/internal/usecase"
)

// RateLimiter is the slice of the redis limiter the chat endpoint needs.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Server exposes the widget-facing chat API: one action-dispatch endpoint
// plus health and metrics.
type Server struct {
	advisor usecase.AdvisorUseCase
	limiter RateLimiter // nil = rate limiting disabled
	limit   int
	window  time.Duration
	log     *zerolog.Logger
}

func NewServer(advisor usecase.AdvisorUseCase, limiter RateLimiter, limit int, window time.Duration, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		advisor: advisor,
		limiter: limiter,
		limit:   limit,
		window:  window,
		log:     &l,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method "+req.Method+" Not Allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/chat", s.handleChat)
	return r
}
