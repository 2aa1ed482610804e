// Package server exposes assistant sessions over HTTP: a session is created,
// a PDF is uploaded into it and questions are asked against that document.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/valpere/legalease/internal/assistant"
	"github.com/valpere/legalease/internal/config"
	"github.com/valpere/legalease/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// ExtractFunc turns a stored upload into plain text.
type ExtractFunc func(path string) (string, error)

type Server struct {
	cfg      config.ServerConfig
	sessions *assistant.Manager
	extract  ExtractFunc
	logger   *zap.Logger
	e        *echo.Echo
}

func New(cfg config.ServerConfig, sessions *assistant.Manager, extract ExtractFunc, logger *zap.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		extract:  extract,
		logger:   logging.OrNop(logger),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	if cfg.MaxUploadMB > 0 {
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.MaxUploadMB)))
	}
	e.HTTPErrorHandler = s.handleError

	e.GET("/", s.index)
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/session")
	api.POST("", s.createSession)
	api.DELETE("/:id", s.deleteSession)
	api.POST("/:id/document", s.uploadDocument)
	api.POST("/:id/ask", s.ask)
	api.POST("/:id/reset", s.reset)
	api.GET("/:id/conversation", s.conversation)

	s.e = e
	return s
}

// ServeHTTP lets the server be mounted or tested without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

// Run listens on the configured address until ctx is cancelled, expiring
// idle sessions in the background.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("address", s.cfg.Address))
		if err := s.e.Start(s.cfg.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if s.cfg.SessionTTL > 0 {
		go s.expireLoop(ctx)
	}

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) expireLoop(ctx context.Context) {
	interval := s.cfg.SessionTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.expireIdle()
		}
	}
}

// expireIdle drops sessions idle for longer than the TTL together with
// their uploads.
func (s *Server) expireIdle() {
	ids := s.sessions.Expire(s.cfg.SessionTTL)
	for _, id := range ids {
		s.removeUploads(id)
	}
	if len(ids) > 0 {
		s.logger.Info("expired idle sessions", zap.Int("count", len(ids)))
	}
}

func (s *Server) removeUploads(sessionID string) {
	if err := os.RemoveAll(filepath.Join(s.cfg.UploadDir, sessionID)); err != nil {
		s.logger.Warn("remove uploads", zap.String("session", sessionID), zap.Error(err))
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := ""
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	// Internal failures are logged in full; clients only get the status text.
	if code >= http.StatusInternalServerError || msg == "" {
		msg = http.StatusText(code)
	}

	req := c.Request()
	fields := []zap.Field{
		zap.Int("status", code),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("remote", c.RealIP()),
		zap.Error(err),
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Debug("request rejected", fields...)
	}

	if !c.Response().Committed {
		_ = c.JSON(code, map[string]any{"error": msg})
	}
}
