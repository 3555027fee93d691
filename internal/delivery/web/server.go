// Package web serves the dashboard as server-rendered HTML.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/CAFxX/httpcompression"
	"github.com/NasaVasa/eventdash/internal/usecase"
	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	server *http.Server
	logger *zap.Logger
}

// NewRouter builds the full handler tree: metrics and liveness outside the
// session, every dashboard route inside it, all of it compressed.
func NewRouter(handlers *Handlers, sessions *Sessions, gatherer prometheus.Gatherer, logger *zap.Logger) (http.Handler, error) {
	compress, err := httpcompression.DefaultAdapter()
	if err != nil {
		return nil, errors.Wrap(err, "init compression")
	}

	r := mux.NewRouter()
	r.Use(requestLogger(logger))
	r.Path("/metrics").Handler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.Path("/healthz").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	dashboard := r.PathPrefix("/").Subrouter()
	dashboard.Use(sessions.Middleware)
	handlers.Mount(dashboard)

	return compress(r), nil
}

func NewServer(addr string, pool *usecase.WorkspacePool, auditor *usecase.Auditor, cookieKey []byte, secureCookie bool, gatherer prometheus.Gatherer, logger *zap.Logger) (*Server, error) {
	handlers, err := NewHandlers(pool, auditor, logger)
	if err != nil {
		return nil, err
	}
	router, err := NewRouter(handlers, NewSessions(cookieKey, secureCookie, logger), gatherer, logger)
	if err != nil {
		return nil, err
	}
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}, nil
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server starting", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- errors.Wrap(err, "listen")
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("web server shutting down")
	return s.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("http request complete",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
