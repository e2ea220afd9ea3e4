// Package server implements the greeting service deployed as the blue or green environment.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const ShutdownTimeout = 10 * time.Second

// Config is the runtime configuration of a greeting service.
type Config struct {
	Name     string
	Version  string
	Greeting string
	Listen   string
	Page     Page
	Checks   []Check
}

type Server struct {
	logger *zap.Logger
	cfg    Config
	echo   *echo.Echo
	page   []byte
}

func New(logger *zap.Logger, cfg Config) (*Server, error) {
	page, err := renderPage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	s := &Server{
		logger: logger,
		cfg:    cfg,
		echo:   e,
		page:   page,
	}

	e.GET("/", s.home)
	e.GET("/health", s.health)

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.cfg.Listen)
	}()

	s.logger.Info("service started",
		zap.String("listen", s.cfg.Listen),
		zap.String("service", s.cfg.Name),
		zap.String("version", s.cfg.Version),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve on %s: %w", s.cfg.Listen, err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down service")

	// ctx is already cancelled here
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}

	return nil
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				logger.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Debug("request", fields...)
			return nil
		},
	})
}
