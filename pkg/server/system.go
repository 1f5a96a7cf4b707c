package server

import (
	"net/http"

	"vpstest/pkg/models"
	"vpstest/pkg/sysinfo"

	"github.com/labstack/echo/v4"
)

const (
	statusHealthy = "healthy"
	rootMessage   = "VPS Test Application Running Successfully!"
)

// getRoot handles GET / with a fresh snapshot of the host.
func (s *Server) getRoot(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, models.RootResponse{
		Message:     rootMessage,
		Status:      statusHealthy,
		Environment: s.opts.Environment,
		System:      sysinfo.Snapshot(s.provider),
	})
}

// getHealth handles GET /health. Uptime is the process uptime.
func (s *Server) getHealth(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, models.HealthStatus{
		Status:    statusHealthy,
		Timestamp: models.FormatTimestamp(s.provider.Now()),
		Uptime:    s.provider.ProcessUptime(),
	})
}
