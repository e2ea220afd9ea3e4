package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Service string `json:"service"`
}

type UnhealthyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func (s *Server) home(c echo.Context) error {
	if s.cfg.Page.Format == PageFormatHTML {
		return c.HTMLBlob(http.StatusOK, s.page)
	}
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, s.page)
}

func (s *Server) health(c echo.Context) error {
	if err := runChecks(c.Request().Context(), s.cfg.Checks); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, UnhealthyStatus{
			Status: "unhealthy",
			Error:  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, HealthStatus{
		Status:  "healthy",
		Version: s.cfg.Version,
		Service: s.cfg.Name,
	})
}
