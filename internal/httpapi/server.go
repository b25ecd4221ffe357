// Package httpapi exposes the MCP dispatcher and a health endpoint over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johncarpenter/osdu-mcp-demo/internal/logging"
	"github.com/johncarpenter/osdu-mcp-demo/internal/mcp"
	"github.com/johncarpenter/osdu-mcp-demo/internal/store"
	"github.com/johncarpenter/osdu-mcp-demo/internal/types"
)

const (
	// RequestIDHeader carries the id assigned to every request.
	RequestIDHeader = "X-Request-Id"

	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second

	statusLoaded = "Data loaded successfully."
	statusFailed = "Data failed to load."
)

// Health is the body of GET /.
type Health struct {
	Status       string             `json:"status"`
	RecordCounts types.RecordCounts `json:"record_counts"`
}

// Server serves the JSON-RPC endpoint on a TCP address.
type Server struct {
	mcp      *mcp.Server
	store    store.Store
	addr     string
	logger   *slog.Logger
	listener net.Listener
	server   *http.Server
	mu       sync.RWMutex
	running  bool
}

// NewServer creates a new HTTP server for m, reporting health from st.
func NewServer(m *mcp.Server, st store.Store, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		mcp:    m,
		store:  st,
		addr:   addr,
		logger: logger,
	}
}

// Handler returns the routed handler with request ids and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /mcp", s.handleMCP)
	mux.HandleFunc("POST /mcp/{$}", s.handleMCP)
	mux.HandleFunc("GET /{$}", s.handleHealth)
	return s.withRequestID(s.recoverer(mux))
}

// Start begins listening on the configured address.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("http server listening", "addr", listener.Addr().String())

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		logging.FromContext(r.Context(), s.logger).Error("failed to read request body", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}

	// The body must be exactly one JSON value.
	var req mcp.Request
	if err := json.Unmarshal(body, &req); err != nil {
		logging.FromContext(r.Context(), s.logger).Error("invalid JSON in request", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}

	resp := s.mcp.Handle(r.Context(), &req)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.Counts(r.Context())
	if err != nil {
		logging.FromContext(r.Context(), s.logger).Error("failed to count records", "error", err)
	}

	h := Health{Status: statusFailed, RecordCounts: counts}
	if err == nil && counts.Total() > 0 {
		h.Status = statusLoaded
	}
	writeJSON(w, http.StatusOK, h)
}

// withRequestID tags the response and the request logger with a fresh id.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set(RequestIDHeader, id)

		logger := s.logger.With("request_id", id)
		logger.Debug("http request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), logger)))
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logging.FromContext(r.Context(), s.logger).Error("panic in handler", "panic", rec)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
