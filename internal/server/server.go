// Package server exposes an HMM over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/happyhackingspace/hmm"
	"github.com/happyhackingspace/hmm/internal/config"
)

const shutdownTimeout = 5 * time.Second

// Server serves forward and Viterbi inference for one model.
type Server struct {
	model    *hmm.Model
	cfg      config.Config
	metrics  *Metrics
	registry *prometheus.Registry
	engine   *gin.Engine
}

// New builds the HTTP routes for m.
func New(m *hmm.Model, cfg config.Config) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		model:    m,
		cfg:      cfg,
		metrics:  NewMetrics(registry),
		registry: registry,
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery(), requestLogger())

	s.engine.GET("/health", s.handleHealth)
	s.engine.GET(cfg.MetricsPath, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	v1 := s.engine.Group("/v1")
	v1.GET("/model", s.handleModel)
	v1.POST("/forward", s.handleForward)
	v1.POST("/viterbi", s.handleViterbi)
	v1.POST("/batch", s.handleBatch)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Listening", "addr", s.cfg.Listen, "metrics", s.cfg.MetricsPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
