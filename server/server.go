// Package server exposes the statistics API over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devlastu/pingstat/config"
	"github.com/devlastu/pingstat/core/stats"
	"github.com/devlastu/pingstat/ingest"
)

// Server serves the statistics API.
type Server struct {
	cfg    *config.Config
	agg    *stats.Aggregator
	loader *ingest.Loader
	log    *zap.Logger
	engine *gin.Engine
}

// New creates a Server with all routes registered.
func New(cfg *config.Config, agg *stats.Aggregator, loader *ingest.Loader, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(requestLogger(log), gin.Recovery())

	s := &Server{
		cfg:    cfg,
		agg:    agg,
		loader: loader,
		log:    log,
		engine: engine,
	}

	engine.GET("/user_stats", s.handleUserStats)
	engine.GET("/game_stats", s.handleGameStats)
	engine.POST("/initialize", s.handleInitialize)
	engine.GET("/healthz", s.handleHealthz)

	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.log.Info("server stopped")
		return nil
	}
}

// requestLogger logs one structured line per request.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
