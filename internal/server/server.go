// Package server runs the HTTP listener that fronts the webhook handler.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"fraudnotifier/internal/config"
	"fraudnotifier/internal/metrics"

	"github.com/google/uuid"
)

// Server owns the HTTP listener for webhook deliveries.
type Server struct {
	addr   string
	logger *slog.Logger
	server *http.Server
}

// Config configures the HTTP server.
type Config struct {
	Server  config.ServerConfig
	Metrics config.MetricsConfig
	Webhook http.Handler
	Logger  *slog.Logger
}

// New builds the server and registers its routes.
func New(cfg Config) *Server {
	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	readTimeout := time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}

	return &Server{
		addr:   addr,
		logger: cfg.Logger,
		server: &http.Server{
			Addr:              addr,
			Handler:           Routes(cfg),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       readTimeout,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Routes returns the full handler tree, wrapped in request logging.
func Routes(cfg Config) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(cfg.Server.Path, cfg.Webhook)
	mux.HandleFunc("GET /healthz", healthz)
	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Endpoint, metrics.Handler())
	}
	return loggingMiddleware(cfg.Logger, mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("webhook server starting", "addr", s.addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("webhook server: %w", err)
	}
}

func healthz(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(map[string]string{"status": "ok"})
}

// statusRecorder captures the response code for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		rw.Header().Set("X-Request-Id", requestID)

		rec := &statusRecorder{ResponseWriter: rw, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		logger.Info("http request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
