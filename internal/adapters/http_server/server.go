package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Options struct {
	RequestTimeout time.Duration // whole-request budget, polling and paging included
	RateLimitRPS   float64       // inbound requests per second, 0 disables
}

type Server struct{ mux *chi.Mux }

func New(opt Options) *Server {
	if opt.RequestTimeout <= 0 {
		opt.RequestTimeout = 60 * time.Second
	}
	m := chi.NewRouter()

	// All middlewares go here (before any routes are added)
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(CORS)
	if opt.RateLimitRPS > 0 {
		m.Use(RateLimit(opt.RateLimitRPS))
	}
	m.Use(Metrics)
	m.Use(Logger(log.Logger))
	m.Use(Timeout(opt.RequestTimeout))

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
