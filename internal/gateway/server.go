package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/atomicstack/tabflip/internal/logging"
)

const (
	// MessagePath accepts a JSON Request and returns a JSON Response.
	MessagePath = "/v1/message"
	// HealthPath returns 200 while the daemon is serving.
	HealthPath = "/health"

	maxRequestBytes = 64 << 10
)

// Server exposes a Gateway over loopback HTTP.
type Server struct {
	gateway *Gateway
	http    *http.Server
}

// NewServer builds a server for addr.
func NewServer(addr string, g *Gateway) *Server {
	s := &Server{gateway: g}
	mux := http.NewServeMux()
	mux.HandleFunc(MessagePath, s.handleMessage)
	mux.HandleFunc(HealthPath, s.handleHealth)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 2 * time.Second,
	}
	return s
}

// Handler exposes the routing table, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Serve listens on l until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(l)
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown gateway: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// ListenAndServe binds the configured address and serves until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, l)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Error: fmt.Sprintf("decode request: %v", err)})
		return
	}
	resp := s.gateway.Handle(r.Context(), req)
	status := http.StatusOK
	if resp.Error != "" {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "stats": s.gateway.store.Stats()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error(fmt.Errorf("encode gateway response: %w", err))
	}
}
