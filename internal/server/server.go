// Package server exposes the websocket subscription endpoint and a JSON
// health endpoint for external diagnostics transports.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/muskanmahajan37/joystick-drivers/internal/diag"
	"github.com/muskanmahajan37/joystick-drivers/internal/hub"
)

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	reporter    *diag.Reporter
	addr        string
	httpServer  *http.Server
}

func New(h *hub.Hub, b *hub.Broadcaster, reporter *diag.Reporter, addr string) *Server {
	return &Server{
		hub:         h,
		broadcaster: b,
		reporter:    reporter,
		addr:        addr,
	}
}

func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()

	// WebSocket subscription endpoint
	mux.HandleFunc("/ws", handleWebSocket(s.hub, s.broadcaster))

	// Health snapshot for pollers
	mux.HandleFunc("/healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	log.Printf("HTTP server listening on %s", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := s.reporter.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h); err != nil {
		log.Printf("Error writing health response: %v", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		log.Println("Shutting down HTTP server...")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
