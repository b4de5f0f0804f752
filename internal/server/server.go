// Package server exposes screening over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/hh-screener/internal/batch"
	"github.com/spigell/hh-screener/internal/ingestion"
)

const (
	defaultAddr        = ":8080"
	maxRequestBodySize = 10 << 20
	shutdownTimeout    = 10 * time.Second
)

// Screener runs one screening request.
type Screener interface {
	Screen(ctx context.Context, req *ingestion.ScreenRequest) (*batch.Result, error)
}

type Config struct {
	Addr    string
	Version string
	// TrustedProxies may set the client address through forwarding headers.
	// Without any, the connection address identifies the client.
	TrustedProxies []string
	RateLimit      RateLimit
	// Limiter overrides the per-client limiter built from RateLimit.
	Limiter Limiter
}

type Server struct {
	cfg      Config
	screener Screener
	limiter  Limiter
	logger   *zap.Logger
	engine   *gin.Engine
}

func New(cfg Config, screener Screener, logger *zap.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{cfg: cfg, screener: screener, limiter: cfg.Limiter, logger: logger}
	if s.limiter == nil && cfg.RateLimit.Requests > 0 {
		s.limiter = NewClientLimiter(cfg.RateLimit)
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(s.cfg.TrustedProxies); err != nil {
		s.logger.Warn("ignoring trusted proxies", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/health", s.health)

	api := r.Group("/api/v1")
	if s.limiter != nil {
		api.Use(s.rateLimit())
	}
	api.POST("/screen", s.screen)

	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
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

	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.cfg.Version})
}

func (s *Server) screen(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodySize)
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read request body"})
		return
	}

	req, err := ingestion.ParseScreenRequest(body)
	if err != nil {
		s.badRequest(c, err)
		return
	}

	result, err := s.screener.Screen(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, batch.ErrEmptyPool) {
			s.badRequest(c, err)
			return
		}
		s.logger.Error("screening request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "screening failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) badRequest(c *gin.Context, err error) {
	var ve *ingestion.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "validation failed",
			"document": ve.Document,
			"details":  ve.Errors,
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(started)),
		)
	}
}
