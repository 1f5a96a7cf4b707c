package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"vpstest/pkg/distro"
	"vpstest/pkg/log"
	"vpstest/pkg/models"

	"github.com/labstack/echo/v4"
)

// getDistroInfo handles GET /distro-info. An unreadable os-release file is
// reported through the distro sentinel; only failures while building the
// response produce a 500.
func (s *Server) getDistroInfo(ctx echo.Context) error {
	body, err := s.collectDistroInfo()
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID(ctx)).Msg("Failed to collect distro information")
		return ctx.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to get distro info",
			Message: err.Error(),
		})
	}

	return ctx.JSONBlob(http.StatusOK, body)
}

func (s *Server) collectDistroInfo() (body []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("distro info: %v", r)
		}
	}()

	result := distro.Read(s.opts.OSReleasePath)
	if !result.Parsed() {
		log.Debug().Err(result.Reason).Str("path", result.Path).Msg("os-release unavailable")
	}

	return json.Marshal(models.DistroResponse{
		Distro:   result,
		Kernel:   s.provider.KernelRelease(),
		Hostname: s.provider.Hostname(),
	})
}
