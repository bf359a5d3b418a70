// Package preview implements Scribe's local preview runtime: a static file
// server over a target's output directory, an optional filesystem watcher
// that rebuilds the target on source changes, and the session lifecycle that
// composes the two.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// BindPolicy selects the preview server's listening address.
type BindPolicy string

const (
	// AccessPrivate binds to loopback only.
	AccessPrivate BindPolicy = "private"
	// AccessPublic binds to all interfaces, reachable from the local network.
	AccessPublic BindPolicy = "public"
)

// ParseBindPolicy validates an access string from flags or config.
func ParseBindPolicy(s string) (BindPolicy, error) {
	switch BindPolicy(s) {
	case AccessPrivate, AccessPublic:
		return BindPolicy(s), nil
	}
	return "", fmt.Errorf("access must be %q or %q, got %q", AccessPrivate, AccessPublic, s)
}

func (p BindPolicy) host() string {
	if p == AccessPublic {
		return ""
	}
	return "127.0.0.1"
}

// Server serves a directory of built output over HTTP. Every response
// carries no-cache headers so rebuilt content is never served stale.
type Server struct {
	dir     string
	policy  BindPolicy
	port    int
	logger  *slog.Logger
	metrics *Metrics
	history HistorySource

	mu      sync.Mutex
	httpSrv *http.Server
	ln      net.Listener
	done    chan struct{}
}

// NewServer creates a preview server for dir. Pass port 0 to let the kernel
// pick a free port (Addr reports the actual one after Start).
func NewServer(dir string, policy BindPolicy, port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{dir: dir, policy: policy, port: port, logger: logger, metrics: newMetrics()}
}

// Metrics exposes the server's counters so the rebuild path can feed them.
func (s *Server) Metrics() *Metrics { return s.metrics }

// SetHistory attaches a build-history source for the /status page.
func (s *Server) SetHistory(h HistorySource) { s.history = h }

// Start binds the listener and begins serving on a dedicated goroutine.
// Binding happens synchronously, so a successful return means the address is
// live. Go listeners set SO_REUSEADDR on Unix, so repeated start/stop cycles
// on the same port do not trip "address in use".
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.dir)))
	mux.Handle("/metrics", s.metrics.handler())
	mux.HandleFunc("/status", s.statusHandler)

	addr := fmt.Sprintf("%s:%d", s.policy.host(), s.port)
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("bind preview server on %s: %w", addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.done = make(chan struct{})
	s.httpSrv = &http.Server{
		Handler:           s.noCache(s.logging(s.counting(mux))),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Unlock()

	srv, done := s.httpSrv, s.done
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			// Server-side faults are logged here, never propagated to the
			// session (no coordinated fault teardown).
			s.logger.Error("Preview server stopped unexpectedly", "error", err)
		}
	}()
	s.logger.Debug("Preview server listening", "addr", ln.Addr().String(), "dir", s.dir)
	return nil
}

// Stop shuts the server down gracefully and waits for the serve goroutine.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.httpSrv, s.done
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	err := srv.Shutdown(ctx)
	<-done
	return err
}

// Addr returns the bound address, valid after Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// URL returns a browsable URL for the running server.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	port := s.ln.Addr().(*net.TCPAddr).Port
	return fmt.Sprintf("http://localhost:%d", port)
}

// noCache stamps every response with headers that defeat client caching.
func (s *Server) noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) counting(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metrics.requestsTotal.Inc()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start))
	})
}

// responseWriter captures status codes for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
