// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	handler "github.com/meanrev/pairscan/internal/api/handler/api"
	"github.com/meanrev/pairscan/internal/api/job"
	"github.com/meanrev/pairscan/internal/api/middleware"
	"github.com/meanrev/pairscan/internal/app"
	"github.com/meanrev/pairscan/internal/metrics"
)

// Server exposes the scan and backtest operations over HTTP.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	APIKey      string
	JobTTL      time.Duration
	MaxJobs     int
	MetricsPath string
}

// NewServer creates a new HTTP server wired to the application.
// metricsReg may be nil, in which case no metrics endpoint is mounted.
func NewServer(cfg Config, a *app.App, metricsReg *metrics.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	jobStore := job.NewStore(cfg.MaxJobs, cfg.JobTTL)

	scans := handler.NewScanHandler(jobStore, a, a.Config().Symbols, metricsReg)
	backtests := handler.NewBacktestHandler(a, a.Config().Backtest)
	jobs := handler.NewJobsHandler(jobStore)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/scan", methodOnly(http.MethodPost, scans.Create))
	mux.HandleFunc("/api/backtest", methodOnly(http.MethodPost, backtests.Run))
	mux.HandleFunc("/api/jobs", methodOnly(http.MethodGet, jobs.List))
	mux.HandleFunc("/api/jobs/", methodOnly(http.MethodGet, jobs.Get))
	mux.HandleFunc("/api/health", handleHealth)

	if a.Snapshots() != nil {
		snapshots := handler.NewSnapshotsHandler(a.Snapshots())
		mux.HandleFunc("/api/snapshots", methodOnly(http.MethodGet, snapshots.List))
	}

	var root http.Handler = mux
	root = middleware.APIKeyAuth(cfg.APIKey)(root)
	if metricsReg != nil {
		root = metrics.HTTPMiddleware(metricsReg)(root)
	}
	root = metrics.LoggingMiddleware(logger)(root)

	// The metrics endpoint bypasses auth and request accounting.
	if metricsReg != nil {
		outer := http.NewServeMux()
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		outer.Handle(path, promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{}))
		outer.Handle("/", root)
		root = outer
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      root,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the root HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func methodOnly(method string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
