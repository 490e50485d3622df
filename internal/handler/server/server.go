package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bagdasarian/review-submit/internal/handler"
	"github.com/bagdasarian/review-submit/internal/logger"
)

type Server struct {
	handler *handler.Handler
	server  *http.Server
}

func NewServer(h *handler.Handler, addr string, readTimeout time.Duration) *Server {
	mux := http.NewServeMux()
	SetupRoutes(mux, h)

	return &Server{
		handler: h,
		server: &http.Server{
			Addr:              addr,
			Handler:           withRequestLog(mux),
			ReadHeaderTimeout: readTimeout,
		},
	}
}

func (s *Server) Start() error {
	logger.Info("server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
