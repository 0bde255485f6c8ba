package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/zeusync/pitch/internal/core/observability/log"
)

const shutdownTimeout = 5 * time.Second

// Handler serves the websocket stream on /ws plus /healthz and /snapshot.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /snapshot", s.handleSnapshot)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, struct {
		Status  string `json:"status"`
		MatchID string `json:"match_id"`
		Stats   Stats  `json:"stats"`
	}{"ok", s.source.ID(), s.GetStats()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Authorize(r); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	writeJSON(w, s.source.Snapshot())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type HTTPServer struct {
	server *http.Server
	logger log.Log
}

func NewHTTPServer(addr string, handler http.Handler, logger log.Log) *HTTPServer {
	if logger == nil {
		logger = log.NewNop()
	}
	return &HTTPServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.With(log.String("component", "http")),
	}
}

// Serve listens on the configured address until ctx is done, then shuts down
// gracefully.
func (h *HTTPServer) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.server.Addr)
	if err != nil {
		return err
	}
	return h.ServeListener(ctx, ln)
}

func (h *HTTPServer) ServeListener(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("Server listening", log.String("addr", ln.Addr().String()))
		errCh <- h.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := h.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	h.logger.Info("Server stopped")
	return nil
}
