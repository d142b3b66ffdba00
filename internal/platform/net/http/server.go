package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"rategrid/internal/platform/config"
	"rategrid/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server is a thin wrapper over chi + stdlib http.Server
type Server struct {
	mux *chi.Mux
	srv *stdhttp.Server
}

// NewServer reads API_PORT (default :4000) and the read/idle timeouts from cfg
func NewServer(cfg config.Conf) *Server {
	m := chi.NewRouter()
	return &Server{
		mux: m,
		srv: &stdhttp.Server{
			Addr:              cfg.MayString("API_PORT", ":4000"),
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.MayDuration("READ_TIMEOUT", 30*time.Second),
			IdleTimeout:       cfg.MayDuration("IDLE_TIMEOUT", 2*time.Minute),
		},
	}
}

// Router returns a Router facade over the internal chi mux
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Handler exposes the mux for in-process requests
func (s *Server) Handler() stdhttp.Handler { return s.mux }

func (s *Server) Addr() string { return s.srv.Addr }

// Run serves until Shutdown; a clean shutdown returns nil
func (s *Server) Run() error {
	logger.Named("http").Info().Str("addr", s.srv.Addr).Msg("http listening")
	if err := s.srv.ListenAndServe(); !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in flight requests until ctx ends
func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
