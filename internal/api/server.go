// Package api exposes the chat subsystem to app surfaces over HTTP and
// websocket: request/response operations under /api, live feeds under /ws.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server manages the HTTP server lifecycle for the daemon.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	logger     *zap.Logger
}

// NewServer creates an HTTP server bound to addr and routing to the handler.
func NewServer(addr string, h *Handler, logger *zap.Logger) (*Server, error) {
	r := mux.NewRouter()
	r.HandleFunc("/api/rooms", h.CreateRoom).Methods(http.MethodPost)
	r.HandleFunc("/api/rooms/{id}/messages", h.SendMessage).Methods(http.MethodPost)
	r.HandleFunc("/api/users", h.ListUsers).Methods(http.MethodGet)
	r.HandleFunc("/ws/rooms/{id}/messages", h.MessagesFeed)
	r.HandleFunc("/ws/users/{id}/chats", h.ChatsFeed)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	return &Server{
		httpServer: &http.Server{Handler: r},
		listener:   listener,
		logger:     logger,
	}, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Start begins serving requests. Blocks until stopped.
func (s *Server) Start() error {
	s.logger.Info("http server starting", zap.String("addr", s.Addr()))
	err := s.httpServer.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop performs a graceful shutdown.
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("http server stopping")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("http server shutdown", zap.Error(err))
	}
}
